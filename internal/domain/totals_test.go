package domain_test

import (
	"testing"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/currency"
)

func TestComputeTotals(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		name  string
		lines []domain.PricedLine
		want  domain.Totals
	}{
		{
			name: "two lines",
			lines: []domain.PricedLine{
				{Price: d("100"), Quantity: 2},
				{Price: d("50"), Quantity: 1},
			},
			want: domain.Totals{Subtotal: d("250"), Taxes: d("5"), ShippingFee: d("99"), Total: d("354")},
		},
		{
			name:  "fractional prices are not rounded",
			lines: []domain.PricedLine{{Price: d("10.333"), Quantity: 3}},
			want:  domain.Totals{Subtotal: d("30.999"), Taxes: d("0.61998"), ShippingFee: d("99"), Total: d("130.61898")},
		},
		{
			name: "empty cart is free",
			want: domain.Totals{Subtotal: decimal.Zero, Taxes: decimal.Zero, ShippingFee: decimal.Zero, Total: decimal.Zero},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ComputeTotals(tt.lines, domain.TaxRate, domain.ShippingFee)

			assert.True(t, tt.want.Subtotal.Equal(got.Subtotal), "subtotal %s", got.Subtotal)
			assert.True(t, tt.want.Taxes.Equal(got.Taxes), "taxes %s", got.Taxes)
			assert.True(t, tt.want.ShippingFee.Equal(got.ShippingFee), "shipping %s", got.ShippingFee)
			assert.True(t, tt.want.Total.Equal(got.Total), "total %s", got.Total)
		})
	}
}

func TestRoundDisplay(t *testing.T) {
	assert.Equal(t, "130.62", domain.RoundDisplay(decimal.RequireFromString("130.61898")).StringFixed(2))
	assert.Equal(t, "0.01", domain.RoundDisplay(decimal.RequireFromString("0.005")).StringFixed(2))
}

func TestMoneyString(t *testing.T) {
	m := domain.NewMoney(decimal.RequireFromString("354"), currency.MustParseISO("PKR"))
	assert.Equal(t, "PKR 354.00", m.String())
}
