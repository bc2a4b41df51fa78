// Package repository implements the order, offer and profile stores on gorm.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fftopup/internal/models"
	"github.com/example/fftopup/internal/orders"
)

// OrderRepository stores diamond orders in orders and pass purchases in
// offer_orders.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) CreateOfferOrder(ctx context.Context, order *models.OfferOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) FindOfferOrder(ctx context.Context, id uuid.UUID) (*models.OfferOrder, error) {
	var order models.OfferOrder
	if err := r.db.WithContext(ctx).Preload("Offer").First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context) ([]models.Order, error) {
	var list []models.Order
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&list).Error
	return list, err
}

func (r *OrderRepository) ListOfferOrders(ctx context.Context) ([]models.OfferOrder, error) {
	var list []models.OfferOrder
	err := r.db.WithContext(ctx).Preload("Offer").Order("created_at desc").Find(&list).Error
	return list, err
}

func (r *OrderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Order
	err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *OrderRepository) ListOfferOrdersByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.OfferOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OfferOrder{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.OfferOrder
	err := query.Preload("Offer").Order("created_at desc").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// UpdateStatus writes only status and updated_at.
func (r *OrderRepository) UpdateStatus(ctx context.Context, kind orders.Kind, id uuid.UUID, status orders.Status) error {
	model, err := modelFor(kind)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		Updates(statusColumns(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TransitionStatus moves the row from status from to status to in a single
// conditional UPDATE. When the row exists but no longer holds from, the
// result wraps orders.ErrIllegalTransition.
func (r *OrderRepository) TransitionStatus(ctx context.Context, kind orders.Kind, id uuid.UUID, from, to orders.Status) error {
	model, err := modelFor(kind)
	if err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	result := db.Model(model).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(statusColumns(to))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return fmt.Errorf("%w: %s order %s is no longer %s", orders.ErrIllegalTransition, kind, id, from)
}

func modelFor(kind orders.Kind) (any, error) {
	switch kind {
	case orders.KindDiamond:
		return &models.Order{}, nil
	case orders.KindOffer:
		return &models.OfferOrder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", orders.ErrUnknownKind, kind)
	}
}

func statusColumns(status orders.Status) map[string]any {
	return map[string]any{
		"status":     string(status),
		"updated_at": time.Now(),
	}
}
