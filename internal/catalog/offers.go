package catalog

import "github.com/shopspring/decimal"

// OfferSeed describes a pass inserted on first start.
type OfferSeed struct {
	Slug          string
	Name          string
	Price         decimal.Decimal
	OriginalPrice decimal.Decimal
	Duration      string
	Features      []string
	Badge         string
	Popular       bool
}

// DefaultOffers are the passes the storefront launched with.
func DefaultOffers() []OfferSeed {
	return []OfferSeed{
		{
			Slug:          "weekly-lite",
			Name:          "Weekly Lite",
			Price:         decimal.NewFromInt(80),
			OriginalPrice: decimal.NewFromInt(100),
			Duration:      "7 Days",
			Features: []string{
				"Access to exclusive events",
				"Daily login rewards",
				"Special character skins",
				"Priority matchmaking",
			},
			Badge: "Save 20%",
		},
		{
			Slug:          "weekly",
			Name:          "Weekly Pass",
			Price:         decimal.NewFromInt(220),
			OriginalPrice: decimal.NewFromInt(280),
			Duration:      "7 Days",
			Features: []string{
				"All Weekly Lite benefits",
				"Premium character unlocks",
				"Weapon skin collection",
				"Double XP boost",
				"Exclusive emotes",
			},
			Badge:   "Most Popular",
			Popular: true,
		},
		{
			Slug:          "monthly",
			Name:          "Monthly Pass",
			Price:         decimal.NewFromInt(1050),
			OriginalPrice: decimal.NewFromInt(1400),
			Duration:      "30 Days",
			Features: []string{
				"All Weekly benefits",
				"Elite character collection",
				"Premium weapon skins",
				"Unlimited revival cards",
				"VIP customer support",
				"Monthly exclusive rewards",
			},
			Badge: "Best Value",
		},
	}
}
