package models

import "github.com/shopspring/decimal"

// Offer is a subscription pass in the catalog. Only active offers are sold.
type Offer struct {
	BaseModel
	Slug          string          `gorm:"uniqueIndex" json:"slug"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	OriginalPrice decimal.Decimal `gorm:"type:numeric(12,2)" json:"original_price"`
	Duration      string          `json:"duration"`
	Features      []string        `gorm:"serializer:json;type:text" json:"features"`
	Badge         string          `json:"badge"`
	Popular       bool            `json:"popular"`
	Active        bool            `gorm:"index" json:"active"`
}

// Savings is the discount shown against the original price, zero when there is none.
func (o Offer) Savings() decimal.Decimal {
	if o.OriginalPrice.GreaterThan(o.Price) {
		return o.OriginalPrice.Sub(o.Price)
	}
	return decimal.Zero
}
