package checkout

import "github.com/shopspring/decimal"

// Fees are the per-order charges added on top of the cart total.
type Fees struct {
	DeliveryFee decimal.Decimal
	TaxRate     decimal.Decimal
}

// DefaultFees are a flat 249 delivery fee and 18% tax.
func DefaultFees() Fees {
	return Fees{
		DeliveryFee: decimal.NewFromInt(249),
		TaxRate:     decimal.RequireFromString("0.18"),
	}
}

// Breakdown is the payable amount of a cart at full precision.
type Breakdown struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Tax         decimal.Decimal
	FinalTotal  decimal.Decimal
}

// Totals computes finalTotal = cartTotal + deliveryFee + cartTotal × taxRate.
// Tax applies to the cart total only, never to the delivery fee.
func Totals(cartTotal decimal.Decimal, fees Fees) Breakdown {
	tax := cartTotal.Mul(fees.TaxRate)
	return Breakdown{
		Subtotal:    cartTotal,
		DeliveryFee: fees.DeliveryFee,
		Tax:         tax,
		FinalTotal:  cartTotal.Add(fees.DeliveryFee).Add(tax),
	}
}

// BreakdownView renders a Breakdown rounded to two places.
type BreakdownView struct {
	Subtotal    string `json:"subtotal"`
	DeliveryFee string `json:"delivery_fee"`
	Tax         string `json:"tax"`
	TaxRate     string `json:"tax_rate"`
	FinalTotal  string `json:"final_total"`
}

func (b Breakdown) View(fees Fees) BreakdownView {
	return BreakdownView{
		Subtotal:    b.Subtotal.StringFixed(2),
		DeliveryFee: b.DeliveryFee.StringFixed(2),
		Tax:         b.Tax.StringFixed(2),
		TaxRate:     fees.TaxRate.String(),
		FinalTotal:  b.FinalTotal.StringFixed(2),
	}
}
