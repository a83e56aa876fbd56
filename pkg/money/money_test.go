package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/currency"

	"github.com/dmitrymomot/storefront/pkg/money"
)

func TestUSD_Format(t *testing.T) {
	t.Parallel()

	f := money.USD()
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{39.98, "$39.98"},
		{12.99 * 3, "$38.97"},
		{4.5, "$4.50"},
		{1234.5, "$1,234.50"},
		{-3.2, "-$3.20"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Format(tt.amount), "amount %v", tt.amount)
	}
	assert.Equal(t, currency.USD, f.Unit())
}

func TestRound(t *testing.T) {
	t.Parallel()

	f := money.USD()
	assert.InDelta(t, 4.0, f.Round(3.998), 1e-9)
	assert.InDelta(t, 43.98, f.Round(39.98*1.1), 1e-9)
	assert.InDelta(t, 3.6, f.Round(3.598), 1e-9)
}
