// Package pricing derives shipping, tax and order totals from a cart subtotal.
package pricing

import "github.com/shopspring/decimal"

// Fixed business rules. These are not user adjustable.
var (
	FreeShippingThreshold = decimal.RequireFromString("150.00")
	FlatShippingFee       = decimal.RequireFromString("9.99")
	TaxRate               = decimal.RequireFromString("0.08")
)

// Totals is the derived, never persisted breakdown of an order.
type Totals struct {
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// Compute returns the totals for a pre-tax subtotal.
// Values are exact; rounding happens only in Format.
func Compute(subtotal decimal.Decimal) Totals {
	shipping := FlatShippingFee
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(TaxRate)

	return Totals{
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: subtotal.Add(shipping).Add(tax),
	}
}

// FreeShipping reports whether the order ships for free.
func (t Totals) FreeShipping() bool {
	return t.Shipping.IsZero()
}

// PreTaxTotal is subtotal plus shipping, the estimate shown in the cart panel.
func (t Totals) PreTaxTotal() decimal.Decimal {
	return t.Subtotal.Add(t.Shipping)
}

// AmountToFreeShipping returns how much more must be spent to qualify for
// free shipping, or zero if the subtotal already qualifies.
func AmountToFreeShipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FreeShippingThreshold.Sub(subtotal)
}

// Format renders an amount in dollars with two decimals, e.g. "$117.99".
func Format(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatShipping renders a shipping fee, using "FREE" for zero.
func FormatShipping(amount decimal.Decimal) string {
	if amount.IsZero() {
		return "FREE"
	}
	return Format(amount)
}
