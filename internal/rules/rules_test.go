package rules

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/acme-basket/internal/domain/basket"
	"github.com/xenking/acme-basket/internal/domain/money"
	"github.com/xenking/acme-basket/internal/domain/offer"
)

func price(t *testing.T, s *Set, codes ...string) money.Money {
	t.Helper()
	b := basket.New(s.Catalogue, s.Delivery, s.Offers)
	for _, code := range codes {
		require.NoError(t, b.Add(code))
	}
	total, err := b.Total()
	require.NoError(t, err)
	return total
}

func TestDefault(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 3, s.Catalogue.Len())
	red, ok := s.Catalogue.Find("R01")
	require.True(t, ok)
	assert.Equal(t, "Red Widget", red.Name)
	assert.Equal(t, "32.95", red.Price.String())

	require.Len(t, s.Delivery.Tiers(), 2)
	assert.Equal(t, "4.95", s.Delivery.Fallback().String())

	require.Len(t, s.Offers, 1)
	assert.IsType(t, &offer.SecondHalfPrice{}, s.Offers[0])
}

func TestDefault_ExampleBaskets(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name  string
		codes []string
		want  string
	}{
		{name: "B01 G01", codes: []string{"B01", "G01"}, want: "37.85"},
		{name: "R01 R01", codes: []string{"R01", "R01"}, want: "54.37"},
		{name: "R01 G01", codes: []string{"R01", "G01"}, want: "60.85"},
		{name: "B01 B01 R01 R01 R01", codes: []string{"B01", "B01", "R01", "R01", "R01"}, want: "98.27"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := price(t, s, tt.codes...)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Catalogue.Len())
}

func TestLoad_File(t *testing.T) {
	s, err := Load("testdata/summer.yaml")
	require.NoError(t, err)

	require.Len(t, s.Offers, 3)
	assert.Equal(t, "Green week", s.Offers[1].Name())

	// 24.95 - 2.495 + 5 = 27.455
	assert.Equal(t, "27.45", price(t, s, "G01").StringFixed(2))
	// 7.95 * 2 - 1.90 + 5 = 19.00
	assert.Equal(t, "19.00", price(t, s, "B01", "B01").StringFixed(2))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read rules file")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
		wantIs  error
	}{
		{
			name:    "malformed yaml",
			doc:     "catalogue: [",
			wantErr: "decode yaml",
		},
		{
			name:    "empty catalogue",
			doc:     "delivery: {fallback: \"4.95\"}",
			wantErr: "catalogue is empty",
		},
		{
			name:    "bad price",
			doc:     "catalogue: [{code: R01, name: Red, price: abc}]\ndelivery: {fallback: \"4.95\"}",
			wantErr: "catalogue entry 0",
		},
		{
			name:    "missing code",
			doc:     "catalogue: [{name: Red, price: \"1\"}]\ndelivery: {fallback: \"4.95\"}",
			wantErr: "code is required",
		},
		{
			name:    "negative price",
			doc:     "catalogue: [{code: R01, name: Red, price: \"-1\"}]\ndelivery: {fallback: \"4.95\"}",
			wantErr: "negative price",
		},
		{
			name:    "missing fallback",
			doc:     "catalogue: [{code: R01, name: Red, price: \"1\"}]",
			wantErr: "fallback",
		},
		{
			name:    "bad tier",
			doc:     "catalogue: [{code: R01, name: Red, price: \"1\"}]\ndelivery: {fallback: \"4.95\", tiers: [{threshold: x, cost: \"0\"}]}",
			wantErr: "tier 0 threshold",
		},
		{
			name:    "offer for unknown product",
			doc:     "catalogue: [{code: R01, name: Red, price: \"1\"}]\ndelivery: {fallback: \"4.95\"}\noffers: [{type: second_half_price, product: X99}]",
			wantErr: "not in the catalogue",
		},
		{
			name:   "unknown offer type",
			doc:    "catalogue: [{code: R01, name: Red, price: \"1\"}]\ndelivery: {fallback: \"4.95\"}\noffers: [{type: bogo, product: R01}]",
			wantIs: offer.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs), "expected %v in chain, got %v", tt.wantIs, err)
			}
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
