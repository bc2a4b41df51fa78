package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order kinds, used to pick the backing table.
const (
	KindDiamond = "diamond"
	KindOffer   = "offer"
)

// Order is a diamond top-up. PackagePrice and PackageDiamonds freeze the
// customer's agreed terms and are never updated after insert.
type Order struct {
	BaseModel
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	UID             string          `gorm:"size:20;not null" json:"uid"`
	IGN             string          `gorm:"size:20;not null" json:"ign"`
	PackagePrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"package_price"`
	PackageDiamonds int             `gorm:"not null" json:"package_diamonds"`
	PaymentMethod   string          `gorm:"size:16;not null" json:"payment_method"`
	TransactionID   *string         `json:"transaction_id,omitempty"`
	PaymentProofURL string          `gorm:"not null" json:"payment_proof_url"`
	Notes           *string         `gorm:"size:500" json:"notes,omitempty"`
	Status          string          `gorm:"size:16;index;not null;default:pending" json:"status"`
}

// TableName pins the table name used by the storefront.
func (Order) TableName() string { return "orders" }

// OfferOrder is a subscription-pass purchase.
type OfferOrder struct {
	BaseModel
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	OfferID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"offer_id"`
	Offer           *Offer          `json:"offers,omitempty"`
	OfferName       string          `json:"offer_name"`
	OfferPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"offer_price"`
	UID             string          `gorm:"size:20;not null" json:"uid"`
	IGN             string          `gorm:"size:20;not null" json:"ign"`
	PaymentMethod   string          `gorm:"size:16;not null" json:"payment_method"`
	TransactionID   *string         `json:"transaction_id,omitempty"`
	PaymentProofURL string          `gorm:"not null" json:"payment_proof_url"`
	Notes           *string         `gorm:"size:500" json:"notes,omitempty"`
	Status          string          `gorm:"size:16;index;not null;default:pending" json:"status"`
}

// TableName pins the table name used by the storefront.
func (OfferOrder) TableName() string { return "offer_orders" }
