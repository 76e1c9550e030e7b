package basket

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/acme-basket/internal/domain/catalogue"
	"github.com/xenking/acme-basket/internal/domain/delivery"
	"github.com/xenking/acme-basket/internal/domain/money"
	"github.com/xenking/acme-basket/internal/domain/offer"
	"github.com/xenking/acme-basket/internal/domain/product"
)

// --- Helpers ---

func m(v string) money.Money {
	return money.MustParse(v)
}

func acmeCatalogue() *catalogue.Catalogue {
	return catalogue.New([]product.Product{
		{Code: "R01", Name: "Red Widget", Price: m("32.95")},
		{Code: "G01", Name: "Green Widget", Price: m("24.95")},
		{Code: "B01", Name: "Blue Widget", Price: m("7.95")},
	})
}

func newAcmeBasket() *Basket {
	return New(acmeCatalogue(), delivery.DefaultPolicy(), []offer.Offer{offer.NewSecondHalfPrice("R01")})
}

func addAll(t *testing.T, b *Basket, codes ...string) {
	t.Helper()
	for _, code := range codes {
		require.NoError(t, b.Add(code))
	}
}

type fixedDiscount struct {
	amount money.Money
}

func (f fixedDiscount) Name() string { return "fixed" }

func (f fixedDiscount) IsApplicable(_ []product.Product) bool { return true }

func (f fixedDiscount) Discount(_ []product.Product) money.Money { return f.amount }

type recordingPolicy struct {
	seen []money.Money
	cost money.Money
}

func (p *recordingPolicy) Cost(amount money.Money) money.Money {
	p.seen = append(p.seen, amount)
	return p.cost
}

// --- Tests ---

func TestTotal(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
		want  string
	}{
		{name: "blue and green", codes: []string{"B01", "G01"}, want: "37.85"},
		{name: "two reds", codes: []string{"R01", "R01"}, want: "54.37"},
		{name: "red and green", codes: []string{"R01", "G01"}, want: "60.85"},
		{name: "two blues three reds", codes: []string{"B01", "B01", "R01", "R01", "R01"}, want: "98.27"},
		{name: "empty basket pays delivery", codes: nil, want: "4.95"},
		{name: "single red", codes: []string{"R01"}, want: "37.90"},
		{name: "four reds", codes: []string{"R01", "R01", "R01", "R01"}, want: "98.85"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newAcmeBasket()
			addAll(t, b, tt.codes...)

			got, err := b.Total()
			require.NoError(t, err)
			assert.True(t, m(tt.want).Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestTotal_OrderIndependent(t *testing.T) {
	a := newAcmeBasket()
	addAll(t, a, "R01", "B01", "R01", "B01", "R01")

	b := newAcmeBasket()
	addAll(t, b, "B01", "B01", "R01", "R01", "R01")

	ta, err := a.Total()
	require.NoError(t, err)
	tb, err := b.Total()
	require.NoError(t, err)
	assert.True(t, ta.Equal(tb))
}

func TestTotal_Idempotent(t *testing.T) {
	b := newAcmeBasket()
	addAll(t, b, "R01", "R01")

	first, err := b.Total()
	require.NoError(t, err)
	second, err := b.Total()
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Len(t, b.Items(), 2)
}

func TestAdd_UnknownCode(t *testing.T) {
	b := newAcmeBasket()
	addAll(t, b, "B01")

	err := b.Add("X99")
	require.Error(t, err)

	var notFound *ProductNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "X99", notFound.Code)
	assert.ErrorIs(t, err, product.ErrNotFound)
	assert.Equal(t, "product with code 'X99' not found in catalogue", err.Error())

	items := b.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "B01", items[0].Code)
}

func TestAdd_CaseSensitive(t *testing.T) {
	b := newAcmeBasket()
	require.Error(t, b.Add("r01"))
	assert.Empty(t, b.Items())
}

func TestItems_ReturnsCopy(t *testing.T) {
	b := newAcmeBasket()
	addAll(t, b, "R01", "G01")

	items := b.Items()
	items[0] = product.Product{Code: "B01", Price: m("7.95")}

	again := b.Items()
	assert.Equal(t, "R01", again[0].Code)
	assert.Equal(t, "G01", again[1].Code)
}

func TestSubtotal(t *testing.T) {
	b := newAcmeBasket()
	assert.True(t, b.Subtotal().IsZero())

	addAll(t, b, "B01", "B01", "R01", "R01", "R01")
	assert.True(t, m("114.75").Equal(b.Subtotal()))
}

func TestQuote_Breakdown(t *testing.T) {
	b := newAcmeBasket()
	addAll(t, b, "B01", "B01", "R01", "R01", "R01")

	q, err := b.Quote()
	require.NoError(t, err)

	assert.True(t, m("114.75").Equal(q.Subtotal))
	assert.True(t, m("16.475").Equal(q.Discount))
	assert.True(t, m("98.275").Equal(q.AfterDiscount))
	assert.True(t, q.Delivery.IsZero())
	assert.True(t, m("98.27").Equal(q.Total))
	require.Len(t, q.Offers, 1)
	assert.Equal(t, "R01: buy one, get the second half price", q.Offers[0].Name())
	assert.Len(t, q.Items, 5)
}

func TestQuote_DeliveryUsesDiscountedAmount(t *testing.T) {
	policy := &recordingPolicy{cost: m("1")}
	b := New(acmeCatalogue(), policy, []offer.Offer{offer.NewSecondHalfPrice("R01")})
	addAll(t, b, "R01", "R01")

	total, err := b.Total()
	require.NoError(t, err)

	require.Len(t, policy.seen, 1)
	assert.True(t, m("49.425").Equal(policy.seen[0]), "delivery saw %s", policy.seen[0])
	assert.True(t, m("50.42").Equal(total))
}

func TestTotal_NegativeAfterDiscount(t *testing.T) {
	b := New(acmeCatalogue(), delivery.DefaultPolicy(), []offer.Offer{fixedDiscount{amount: m("10")}})
	addAll(t, b, "B01")

	_, err := b.Total()
	require.Error(t, err)

	var negative *NegativeAmountError
	require.True(t, errors.As(err, &negative))
	assert.True(t, m("7.95").Equal(negative.Subtotal))
	assert.True(t, m("10").Equal(negative.Discount))
}

func TestTotal_OffersSumIndependently(t *testing.T) {
	offers := []offer.Offer{
		offer.NewSecondHalfPrice("R01"),
		fixedDiscount{amount: m("1.005")},
	}
	b := New(acmeCatalogue(), delivery.DefaultPolicy(), offers)
	addAll(t, b, "R01", "R01")

	// 65.90 - 16.475 - 1.005 = 48.42, under 50 so 4.95 delivery.
	got, err := b.Total()
	require.NoError(t, err)
	assert.True(t, m("53.37").Equal(got), "got %s", got)
}
