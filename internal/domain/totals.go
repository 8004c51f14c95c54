package domain

import "github.com/shopspring/decimal"

var (
	TaxRate     = decimal.RequireFromString("0.02")
	ShippingFee = decimal.NewFromInt(99)
)

type PricedLine struct {
	Price    decimal.Decimal
	Quantity int
}

// Totals are derived and never persisted.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Taxes       decimal.Decimal `json:"taxes"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Total       decimal.Decimal `json:"total"`
}

// ComputeTotals is exact: no rounding is applied. An empty line set yields
// zero totals, shipping is only charged when something ships.
func ComputeTotals(lines []PricedLine, taxRate, shippingFee decimal.Decimal) Totals {
	if len(lines) == 0 {
		return Totals{
			Subtotal:    decimal.Zero,
			Taxes:       decimal.Zero,
			ShippingFee: decimal.Zero,
			Total:       decimal.Zero,
		}
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	taxes := subtotal.Mul(taxRate)

	return Totals{
		Subtotal:    subtotal,
		Taxes:       taxes,
		ShippingFee: shippingFee,
		Total:       subtotal.Add(taxes).Add(shippingFee),
	}
}

// RoundDisplay is the single rounding step, applied to displayed totals only.
func RoundDisplay(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
