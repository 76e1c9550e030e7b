// Package offer implements promotional discount strategies evaluated against
// the full list of basket items.
package offer

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/acme-basket/internal/domain/money"
	"github.com/xenking/acme-basket/internal/domain/product"
)

// Offer is a discount strategy. Implementations hold no basket state and must
// not modify items.
type Offer interface {
	// Name is a short human-readable description of the promotion.
	Name() string
	// IsApplicable reports whether Discount would be non-zero for items.
	IsApplicable(items []product.Product) bool
	// Discount returns the total amount this offer takes off, or zero.
	Discount(items []product.Product) money.Money
}

// DiscountType enumerates the declarative offer kinds FromRule understands.
type DiscountType string

const (
	// DiscountSecondHalfPrice takes 50% off every second matching item.
	DiscountSecondHalfPrice DiscountType = "second_half_price"
	// DiscountPercentage takes a percentage off every matching item.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed takes a fixed amount off every matching item, capped at
	// the item price.
	DiscountFixed DiscountType = "fixed"
)

// ErrUnsupportedType is returned by FromRule for an unknown DiscountType.
var ErrUnsupportedType = errors.New("unsupported discount type")

// Rule is the declarative form of an offer, as read from configuration.
type Rule struct {
	Type        DiscountType
	ProductCode string
	// Value is the percentage for DiscountPercentage and the amount for
	// DiscountFixed. It is ignored by DiscountSecondHalfPrice.
	Value       decimal.Decimal
	Description string
}

// FromRule builds the Offer described by rule.
func FromRule(rule Rule) (Offer, error) {
	if rule.ProductCode == "" {
		return nil, errors.Errorf("%s offer: product code is required", rule.Type)
	}

	switch rule.Type {
	case DiscountSecondHalfPrice:
		o := NewSecondHalfPrice(rule.ProductCode)
		if rule.Description != "" {
			o.description = rule.Description
		}
		return o, nil
	case DiscountPercentage:
		if !rule.Value.IsPositive() || rule.Value.GreaterThan(hundred) {
			return nil, errors.Errorf("percentage offer for %s: value %s out of range (0, 100]", rule.ProductCode, rule.Value)
		}
		return &PercentageOff{Code: rule.ProductCode, Percent: rule.Value, Description: rule.Description}, nil
	case DiscountFixed:
		if !rule.Value.IsPositive() {
			return nil, errors.Errorf("fixed offer for %s: value %s must be positive", rule.ProductCode, rule.Value)
		}
		return &FixedOff{Code: rule.ProductCode, Amount: money.FromDecimal(rule.Value), Description: rule.Description}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "%q", rule.Type)
	}
}

// Total sums the discounts of every offer. Each offer sees the full item list
// independently of the others.
func Total(offers []Offer, items []product.Product) money.Money {
	total := money.Zero
	for _, o := range offers {
		total = total.Add(o.Discount(items))
	}
	return total
}

// Applicable returns the offers that discount the given items.
func Applicable(offers []Offer, items []product.Product) []Offer {
	var out []Offer
	for _, o := range offers {
		if o.IsApplicable(items) {
			out = append(out, o)
		}
	}
	return out
}
