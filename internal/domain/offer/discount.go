package offer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/acme-basket/internal/domain/money"
	"github.com/xenking/acme-basket/internal/domain/product"
)

var hundred = decimal.NewFromInt(100)

var (
	_ Offer = (*SecondHalfPrice)(nil)
	_ Offer = (*PercentageOff)(nil)
	_ Offer = (*FixedOff)(nil)
)

// SecondHalfPrice is "buy one, get the second half price" for one product
// code. Every second matching item, in the order added, is 50% off.
type SecondHalfPrice struct {
	Code        string
	description string
}

// NewSecondHalfPrice creates the offer for the given product code.
func NewSecondHalfPrice(code string) *SecondHalfPrice {
	return &SecondHalfPrice{
		Code:        code,
		description: fmt.Sprintf("%s: buy one, get the second half price", code),
	}
}

func (o *SecondHalfPrice) Name() string {
	if o.description == "" {
		return fmt.Sprintf("%s: buy one, get the second half price", o.Code)
	}
	return o.description
}

// IsApplicable requires at least two matching items.
func (o *SecondHalfPrice) IsApplicable(items []product.Product) bool {
	return len(matching(items, o.Code)) >= 2
}

// Discount is half the unit price for every complete pair: 2 and 3 matching
// items discount one, 4 and 5 discount two.
func (o *SecondHalfPrice) Discount(items []product.Product) money.Money {
	matched := matching(items, o.Code)
	if len(matched) < 2 {
		return money.Zero
	}

	pairs := len(matched) / 2
	return matched[0].Price.Half().Mul(pairs)
}

// PercentageOff takes Percent percent off every item matching Code.
type PercentageOff struct {
	Code        string
	Percent     decimal.Decimal
	Description string
}

func (o *PercentageOff) Name() string {
	if o.Description != "" {
		return o.Description
	}
	return fmt.Sprintf("%s: %s%% off", o.Code, o.Percent)
}

func (o *PercentageOff) IsApplicable(items []product.Product) bool {
	return o.Percent.IsPositive() && len(matching(items, o.Code)) > 0
}

func (o *PercentageOff) Discount(items []product.Product) money.Money {
	if !o.IsApplicable(items) {
		return money.Zero
	}
	return sumPrices(matching(items, o.Code)).Percent(o.Percent)
}

// FixedOff takes Amount off every item matching Code. The discount never
// exceeds what the matching items cost.
type FixedOff struct {
	Code        string
	Amount      money.Money
	Description string
}

func (o *FixedOff) Name() string {
	if o.Description != "" {
		return o.Description
	}
	return fmt.Sprintf("%s: $%s off each", o.Code, o.Amount.StringFixed(2))
}

func (o *FixedOff) IsApplicable(items []product.Product) bool {
	return !o.Amount.IsNegative() && !o.Amount.IsZero() && len(matching(items, o.Code)) > 0
}

func (o *FixedOff) Discount(items []product.Product) money.Money {
	if !o.IsApplicable(items) {
		return money.Zero
	}
	matched := matching(items, o.Code)
	return money.Min(o.Amount.Mul(len(matched)), sumPrices(matched))
}

// matching returns the items with the given code, preserving their order.
func matching(items []product.Product, code string) []product.Product {
	var out []product.Product
	for _, item := range items {
		if item.Code == code {
			out = append(out, item)
		}
	}
	return out
}

// sumPrices returns the exact sum of the item prices.
func sumPrices(items []product.Product) money.Money {
	sum := money.Zero
	for _, item := range items {
		sum = sum.Add(item.Price)
	}
	return sum
}
