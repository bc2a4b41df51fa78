// Package catalog holds the storefront data that ships with the binary:
// diamond packages, payment destinations and the support contact. Changing
// any of it requires a rebuild.
package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StoreName      = "FF TopUp Nepal"
	SupportContact = "9827868024"

	// EstimatedProcessingTime is what customers are told after submitting.
	EstimatedProcessingTime = 5 * time.Minute

	DiamondOrderConfirmation = "Your order has been submitted successfully! We will process it within 5 minutes."
	OfferOrderConfirmation   = "Your pass will be activated within 5 minutes."
)

// Payment method names accepted on the purchase form.
const (
	PaymentESewa  = "eSewa"
	PaymentKhalti = "Khalti"
	PaymentIMEPay = "IME Pay"
)

// ErrUnknownPackage is returned when no package has the requested price.
var ErrUnknownPackage = errors.New("unknown diamond package")

// DiamondPackage is one purchasable bundle of diamonds, priced in NPR.
type DiamondPackage struct {
	Price    int64 `json:"price"`
	Diamonds int   `json:"diamonds"`
	Popular  bool  `json:"popular"`
}

// PriceDecimal returns the package price as a decimal amount.
func (p DiamondPackage) PriceDecimal() decimal.Decimal {
	return decimal.NewFromInt(p.Price)
}

// PaymentDestination is the wallet a customer pays into before uploading proof.
type PaymentDestination struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

var diamondPackages = []DiamondPackage{
	{Price: 100, Diamonds: 115},
	{Price: 200, Diamonds: 240},
	{Price: 300, Diamonds: 355},
	{Price: 410, Diamonds: 480, Popular: true},
	{Price: 520, Diamonds: 610},
	{Price: 600, Diamonds: 725},
	{Price: 710, Diamonds: 850},
	{Price: 820, Diamonds: 965},
	{Price: 910, Diamonds: 1090},
	{Price: 1130, Diamonds: 1240, Popular: true},
	{Price: 1260, Diamonds: 1480},
	{Price: 1400, Diamonds: 1595},
	{Price: 1500, Diamonds: 1720},
	{Price: 1750, Diamonds: 1965},
	{Price: 1830, Diamonds: 2090},
	{Price: 2200, Diamonds: 2530, Popular: true},
	{Price: 4500, Diamonds: 5060},
	{Price: 9000, Diamonds: 10120},
	{Price: 18000, Diamonds: 20240},
}

var paymentDestinations = []PaymentDestination{
	{Name: PaymentESewa, Number: "982-7868024"},
	{Name: PaymentKhalti, Number: "982-7633530"},
	{Name: PaymentIMEPay, Number: "9817615513"},
}

// DiamondPackages returns a copy of the package list in display order.
func DiamondPackages() []DiamondPackage {
	out := make([]DiamondPackage, len(diamondPackages))
	copy(out, diamondPackages)
	return out
}

// PackageByPrice finds the package sold at price. Prices are unique.
func PackageByPrice(price int64) (DiamondPackage, error) {
	for _, p := range diamondPackages {
		if p.Price == price {
			return p, nil
		}
	}
	return DiamondPackage{}, ErrUnknownPackage
}

// PaymentDestinations returns a copy of the wallet list.
func PaymentDestinations() []PaymentDestination {
	out := make([]PaymentDestination, len(paymentDestinations))
	copy(out, paymentDestinations)
	return out
}

// PaymentMethods lists the accepted payment method names.
func PaymentMethods() []string {
	return []string{PaymentESewa, PaymentKhalti, PaymentIMEPay}
}
