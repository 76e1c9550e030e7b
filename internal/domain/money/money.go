// Package money provides an exact decimal monetary amount.
//
// Money never rounds on its own. Callers decide where the single rounding
// step happens via RoundDown.
package money

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Money is an immutable exact decimal amount.
// The zero value is a valid zero amount.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// Parse creates Money from a decimal literal such as "32.95".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errors.Wrapf(err, "parse amount %q", s)
	}
	return Money{d: d}, nil
}

// MustParse is like Parse but panics on malformed input. Use it for literals.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal wraps an existing decimal value.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

// NewFromInt creates Money for a whole amount.
func NewFromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

// Sum adds all amounts together. Sum of nothing is Zero.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, m := range amounts {
		total = total.Add(m)
	}
	return total
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

// Mul multiplies the amount by a whole count.
func (m Money) Mul(n int) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(int64(n)))}
}

// Half divides the amount by two without losing precision: 32.95 becomes 16.475.
func (m Money) Half() Money {
	// Dividing by two always terminates, so DivRound with one extra place is exact.
	return Money{d: m.d.DivRound(two, -m.d.Exponent()+1)}
}

// Percent returns p percent of the amount, unrounded.
func (m Money) Percent(p decimal.Decimal) Money {
	return Money{d: m.d.Mul(p).Div(decimal.NewFromInt(100))}
}

func (m Money) GreaterThanOrEqual(o Money) bool {
	return m.d.GreaterThanOrEqual(o.d)
}

func (m Money) LessThan(o Money) bool {
	return m.d.LessThan(o.d)
}

// Equal reports numeric equality, so 57.9 equals 57.90.
func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// Min returns the smaller of two amounts.
func Min(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// RoundDown truncates toward zero at the given number of decimal places.
// 98.275 becomes 98.27 at two places; it is never rounded up.
func (m Money) RoundDown(places int32) Money {
	return Money{d: m.d.Truncate(places)}
}

// String returns the exact decimal representation.
func (m Money) String() string {
	return m.d.String()
}

// StringFixed formats the amount with a fixed number of places for display.
func (m Money) StringFixed(places int32) string {
	return m.d.StringFixed(places)
}
