// Package pricing turns cart contents into the order summary shown at
// checkout.
package pricing

import (
	"github.com/shopspring/decimal"
)

var (
	// FreeShippingThreshold is exclusive: a subtotal must exceed it.
	FreeShippingThreshold = decimal.RequireFromString("50.00")
	FlatShipping          = decimal.RequireFromString("5.00")
	TaxRate               = decimal.RequireFromString("0.10")
)

// Line is the minimum a priced line needs.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Summary holds the checkout amounts, each rounded to cents.
type Summary struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shippingCost"`
	Tax        decimal.Decimal `json:"taxAmount"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// Subtotal sums unit price times quantity without rounding.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Shipping is free strictly above the threshold and flat otherwise.
func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShipping
}

// Tax applies the flat rate to subtotal.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate)
}

// Calculate prices lines. Amounts are computed exactly and rounded half-up
// to two places only in the returned summary.
func Calculate(lines []Line) Summary {
	subtotal := Subtotal(lines)
	shipping := Shipping(subtotal)
	tax := Tax(subtotal)
	return Summary{
		Subtotal:   subtotal.Round(2),
		Shipping:   shipping.Round(2),
		Tax:        tax.Round(2),
		GrandTotal: subtotal.Add(shipping).Add(tax).Round(2),
	}
}
