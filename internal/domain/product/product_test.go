package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/acme-basket/internal/domain/money"
)

func TestNew(t *testing.T) {
	p, err := New("R01", "Red Widget", "32.95")
	require.NoError(t, err)

	assert.Equal(t, "R01", p.Code)
	assert.Equal(t, "Red Widget", p.Name)
	assert.True(t, money.MustParse("32.95").Equal(p.Price))
}

func TestNew_InvalidPrice(t *testing.T) {
	_, err := New("R01", "Red Widget", "thirty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product R01 price")
}

func TestEqual(t *testing.T) {
	base := Product{Code: "R01", Name: "Red Widget", Price: money.MustParse("32.95")}

	tests := []struct {
		name  string
		other Product
		want  bool
	}{
		{
			name:  "identical fields",
			other: Product{Code: "R01", Name: "Red Widget", Price: money.MustParse("32.95")},
			want:  true,
		},
		{
			name:  "same price with trailing zero",
			other: Product{Code: "R01", Name: "Red Widget", Price: money.MustParse("32.950")},
			want:  true,
		},
		{
			name:  "different code",
			other: Product{Code: "G01", Name: "Red Widget", Price: money.MustParse("32.95")},
		},
		{
			name:  "different name",
			other: Product{Code: "R01", Name: "Green Widget", Price: money.MustParse("32.95")},
		},
		{
			name:  "different price",
			other: Product{Code: "R01", Name: "Red Widget", Price: money.MustParse("24.95")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
			assert.Equal(t, tt.want, tt.other.Equal(base))
		})
	}
}

func TestString(t *testing.T) {
	p := Product{Code: "B01", Name: "Blue Widget", Price: money.MustParse("7.95")}
	assert.Equal(t, "Blue Widget (B01): $7.95", p.String())
}
