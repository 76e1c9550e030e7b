package offer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/acme-basket/internal/domain/money"
	"github.com/xenking/acme-basket/internal/domain/product"
)

func TestFromRule(t *testing.T) {
	tests := []struct {
		name        string
		rule        Rule
		items       []product.Product
		wantName    string
		wantAmount  money.Money
		wantErr     error
		wantErrText string
	}{
		{
			name:       "second half price",
			rule:       Rule{Type: DiscountSecondHalfPrice, ProductCode: "R01"},
			items:      repeat(redWidget, 2),
			wantName:   "R01: buy one, get the second half price",
			wantAmount: m("16.475"),
		},
		{
			name:       "second half price with description",
			rule:       Rule{Type: DiscountSecondHalfPrice, ProductCode: "R01", Description: "Red pairs"},
			items:      repeat(redWidget, 4),
			wantName:   "Red pairs",
			wantAmount: m("32.95"),
		},
		{
			name:       "percentage",
			rule:       Rule{Type: DiscountPercentage, ProductCode: "G01", Value: decimal.NewFromInt(20)},
			items:      []product.Product{greenWidget},
			wantName:   "G01: 20% off",
			wantAmount: m("4.99"),
		},
		{
			name:       "fixed",
			rule:       Rule{Type: DiscountFixed, ProductCode: "B01", Value: decimal.RequireFromString("0.95")},
			items:      []product.Product{blueWidget},
			wantName:   "B01: $0.95 off each",
			wantAmount: m("0.95"),
		},
		{
			name:    "unknown type",
			rule:    Rule{Type: DiscountType("bogus"), ProductCode: "R01"},
			wantErr: ErrUnsupportedType,
		},
		{
			name:        "missing product code",
			rule:        Rule{Type: DiscountSecondHalfPrice},
			wantErrText: "product code is required",
		},
		{
			name:        "percentage above 100",
			rule:        Rule{Type: DiscountPercentage, ProductCode: "G01", Value: decimal.NewFromInt(150)},
			wantErrText: "out of range",
		},
		{
			name:        "percentage of zero",
			rule:        Rule{Type: DiscountPercentage, ProductCode: "G01"},
			wantErrText: "out of range",
		},
		{
			name:        "negative fixed amount",
			rule:        Rule{Type: DiscountFixed, ProductCode: "B01", Value: decimal.NewFromInt(-1)},
			wantErrText: "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromRule(tt.rule)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			if tt.wantErrText != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrText)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name())
			amount := got.Discount(tt.items)
			assert.True(t, tt.wantAmount.Equal(amount), "expected amount %s, got %s", tt.wantAmount, amount)
		})
	}
}

func TestTotal(t *testing.T) {
	offers := []Offer{
		NewSecondHalfPrice("R01"),
		&FixedOff{Code: "B01", Amount: m("1.00")},
	}
	items := []product.Product{blueWidget, blueWidget, redWidget, redWidget, redWidget}

	got := Total(offers, items)
	assert.True(t, m("18.475").Equal(got), "got %s", got)

	assert.True(t, Total(nil, items).IsZero())
	assert.True(t, Total(offers, nil).IsZero())
}

func TestApplicable(t *testing.T) {
	red := NewSecondHalfPrice("R01")
	green := NewSecondHalfPrice("G01")

	got := Applicable([]Offer{red, green}, repeat(redWidget, 2))
	require.Len(t, got, 1)
	assert.Same(t, red, got[0])

	assert.Empty(t, Applicable([]Offer{red, green}, nil))
}
