package product

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/acme-basket/internal/domain/money"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is an immutable catalogue entry. Two products are equal when code,
// name and price all match.
type Product struct {
	Code  string
	Name  string
	Price money.Money
}

// New creates a Product from a decimal price literal.
func New(code, name, price string) (Product, error) {
	p, err := money.Parse(price)
	if err != nil {
		return Product{}, errors.Wrapf(err, "product %s price", code)
	}
	return Product{Code: code, Name: name, Price: p}, nil
}

// Equal reports structural equality.
func (p Product) Equal(o Product) bool {
	return p.Code == o.Code && p.Name == o.Name && p.Price.Equal(o.Price)
}

func (p Product) String() string {
	return fmt.Sprintf("%s (%s): $%s", p.Name, p.Code, p.Price.StringFixed(2))
}

// Repository defines read operations for an external product source.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)
}
