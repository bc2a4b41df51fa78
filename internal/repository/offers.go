package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fftopup/internal/models"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) FindActive(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListActive orders passes by price, cheapest first.
func (r *OfferRepository) ListActive(ctx context.Context) ([]models.Offer, error) {
	var list []models.Offer
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("price asc").Find(&list).Error
	return list, err
}
