package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		shipping string
		tax      string
		total    string
	}{
		{name: "just under threshold pays shipping", subtotal: "149.99", shipping: "9.99", tax: "11.9992", total: "171.9792"},
		{name: "threshold ships free", subtotal: "150.00", shipping: "0", tax: "12", total: "162"},
		{name: "hundred dollars", subtotal: "100", shipping: "9.99", tax: "8.00", total: "117.99"},
		{name: "empty cart still charges flat fee", subtotal: "0", shipping: "9.99", tax: "0", total: "9.99"},
		{name: "large order", subtotal: "400", shipping: "0", tax: "32", total: "432"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := Compute(d(tt.subtotal))
			assert.True(t, totals.Subtotal.Equal(d(tt.subtotal)), "subtotal %s", totals.Subtotal)
			assert.True(t, totals.Shipping.Equal(d(tt.shipping)), "shipping %s", totals.Shipping)
			assert.True(t, totals.Tax.Equal(d(tt.tax)), "tax %s", totals.Tax)
			assert.True(t, totals.GrandTotal.Equal(d(tt.total)), "grand total %s", totals.GrandTotal)
		})
	}
}

func TestComputeDisplay(t *testing.T) {
	totals := Compute(d("100"))

	assert.Equal(t, "$8.00", Format(totals.Tax))
	assert.Equal(t, "$117.99", Format(totals.GrandTotal))
	assert.Equal(t, "$9.99", FormatShipping(totals.Shipping))
	assert.Equal(t, "FREE", FormatShipping(Compute(d("150")).Shipping))
}

func TestFreeShippingHelpers(t *testing.T) {
	assert.False(t, Compute(d("149.99")).FreeShipping())
	assert.True(t, Compute(d("150")).FreeShipping())

	assert.True(t, AmountToFreeShipping(d("120")).Equal(d("30")))
	assert.True(t, AmountToFreeShipping(d("150")).IsZero())
	assert.True(t, AmountToFreeShipping(d("200")).IsZero())
}

func TestPreTaxTotal(t *testing.T) {
	assert.True(t, Compute(d("100")).PreTaxTotal().Equal(d("109.99")))
	assert.True(t, Compute(d("180")).PreTaxTotal().Equal(d("180")))
}
