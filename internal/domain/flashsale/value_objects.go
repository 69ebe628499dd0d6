package flashsale

import (
	"strings"

	"github.com/shopspring/decimal"
)

const maxNameLength = 200

type Name struct {
	value string
}

func NewName(s string) (Name, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || len([]rune(trimmed)) > maxNameLength {
		return Name{}, ErrInvalidName
	}
	return Name{value: trimmed}, nil
}

func (n Name) String() string {
	return n.value
}

// Pricing holds the sale price next to the regular price, both rounded to cents.
type Pricing struct {
	flash    decimal.Decimal
	original decimal.Decimal
}

func NewPricing(flash, original decimal.Decimal) (Pricing, error) {
	flash = flash.Round(2)
	original = original.Round(2)
	if flash.IsNegative() || flash.GreaterThan(original) {
		return Pricing{}, ErrInvalidPrice
	}
	return Pricing{flash: flash, original: original}, nil
}

func (p Pricing) Flash() decimal.Decimal    { return p.flash }
func (p Pricing) Original() decimal.Decimal { return p.original }

// DiscountPercent is the saving relative to the original price, e.g. 25.00.
func (p Pricing) DiscountPercent() decimal.Decimal {
	if p.original.IsZero() {
		return decimal.Zero
	}
	return p.original.Sub(p.flash).Div(p.original).Mul(decimal.NewFromInt(100)).Round(2)
}
