// Package catalogue provides the read-only code to product lookup table used
// when scanning items into a basket.
package catalogue

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/acme-basket/internal/domain/product"
)

// Catalogue is an immutable product lookup. It is safe for concurrent reads.
//
// Product codes are expected to be unique. When they are not, Find returns
// the last product registered with the code, while All keeps every entry in
// construction order.
type Catalogue struct {
	products []product.Product
	byCode   map[string]product.Product
}

// New builds a catalogue from the given products. The slice is copied, so
// later changes to it do not affect the catalogue.
func New(products []product.Product) *Catalogue {
	c := &Catalogue{
		products: make([]product.Product, len(products)),
		byCode:   make(map[string]product.Product, len(products)),
	}
	copy(c.products, products)
	for _, p := range c.products {
		c.byCode[p.Code] = p
	}
	return c
}

// Load builds a catalogue from every product the repository lists.
func Load(ctx context.Context, repo product.Repository) (*Catalogue, error) {
	products, err := repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return New(products), nil
}

// Find looks up a product by its exact, case-sensitive code.
func (c *Catalogue) Find(code string) (product.Product, bool) {
	p, ok := c.byCode[code]
	return p, ok
}

// All returns a copy of every product in construction order.
func (c *Catalogue) All() []product.Product {
	out := make([]product.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of catalogue entries.
func (c *Catalogue) Len() int {
	return len(c.products)
}
