// Package basket prices a sequence of scanned product codes against a
// catalogue, a set of offers and a delivery policy.
package basket

import (
	"fmt"

	"github.com/xenking/acme-basket/internal/domain/money"
	"github.com/xenking/acme-basket/internal/domain/offer"
	"github.com/xenking/acme-basket/internal/domain/product"
)

// Catalogue resolves product codes.
type Catalogue interface {
	Find(code string) (product.Product, bool)
}

// DeliveryPolicy returns the delivery charge for an after-discount amount.
type DeliveryPolicy interface {
	Cost(amount money.Money) money.Money
}

// ProductNotFoundError indicates a scanned code is not in the catalogue.
type ProductNotFoundError struct {
	Code string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with code '%s' not found in catalogue", e.Code)
}

func (e *ProductNotFoundError) Unwrap() error {
	return product.ErrNotFound
}

// NegativeAmountError indicates the configured offers discount more than the
// basket is worth.
type NegativeAmountError struct {
	Subtotal money.Money
	Discount money.Money
}

func (e *NegativeAmountError) Error() string {
	return fmt.Sprintf("discount %s exceeds subtotal %s", e.Discount, e.Subtotal)
}

// Quote is the breakdown behind a basket total. Every amount except Total is
// exact; Total is rounded down to whole cents.
type Quote struct {
	Items         []product.Product
	Subtotal      money.Money
	Discount      money.Money
	AfterDiscount money.Money
	Delivery      money.Money
	Total         money.Money
	Offers        []offer.Offer
}

// Basket accumulates items. It is not safe for concurrent use, but any number
// of baskets may share the same catalogue, policy and offers.
type Basket struct {
	catalogue Catalogue
	delivery  DeliveryPolicy
	offers    []offer.Offer
	items     []product.Product
}

// New creates an empty basket.
func New(catalogue Catalogue, delivery DeliveryPolicy, offers []offer.Offer) *Basket {
	return &Basket{
		catalogue: catalogue,
		delivery:  delivery,
		offers:    offers,
	}
}

// Add appends the product with the given code. On an unknown code the basket
// is left unchanged and a *ProductNotFoundError is returned.
func (b *Basket) Add(code string) error {
	p, ok := b.catalogue.Find(code)
	if !ok {
		return &ProductNotFoundError{Code: code}
	}
	b.items = append(b.items, p)
	return nil
}

// Items returns a copy of the added products in insertion order.
func (b *Basket) Items() []product.Product {
	out := make([]product.Product, len(b.items))
	copy(out, b.items)
	return out
}

// Subtotal is the exact sum of item prices.
func (b *Basket) Subtotal() money.Money {
	subtotal := money.Zero
	for _, p := range b.items {
		subtotal = subtotal.Add(p.Price)
	}
	return subtotal
}

// Quote runs the pricing pipeline: subtotal, offer discounts, delivery on the
// discounted amount, then a single round-down to two places.
func (b *Basket) Quote() (*Quote, error) {
	items := b.Items()

	subtotal := b.Subtotal()
	discount := offer.Total(b.offers, items)

	afterDiscount := subtotal.Sub(discount)
	if afterDiscount.IsNegative() {
		return nil, &NegativeAmountError{Subtotal: subtotal, Discount: discount}
	}

	delivery := b.delivery.Cost(afterDiscount)

	return &Quote{
		Items:         items,
		Subtotal:      subtotal,
		Discount:      discount,
		AfterDiscount: afterDiscount,
		Delivery:      delivery,
		Total:         afterDiscount.Add(delivery).RoundDown(2),
		Offers:        offer.Applicable(b.offers, items),
	}, nil
}

// Total returns the amount payable, rounded down to whole cents. It does not
// change the basket and returns the same value on repeated calls.
func (b *Basket) Total() (money.Money, error) {
	q, err := b.Quote()
	if err != nil {
		return money.Zero, err
	}
	return q.Total, nil
}
