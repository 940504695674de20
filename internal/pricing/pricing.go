package pricing

import "github.com/shopspring/decimal"

// Shipping is free above the threshold, otherwise a flat fee applies. Tax is
// charged on the item subtotal only.
var (
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShippingFee       = decimal.NewFromInt(10)
	TaxRate               = decimal.RequireFromString("0.15")
)

// Line is the price-relevant slice of a cart or order line.
type Line struct {
	Price decimal.Decimal
	Qty   int
}

// Totals carries the four derived money fields every cart and order holds.
type Totals struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// ComputeTotals derives all monetary totals from the given lines. It is a
// pure function with no error conditions: malformed prices are rejected
// upstream by validation, an empty line list yields all-zero totals.
func ComputeTotals(lines []Line) Totals {
	if len(lines) == 0 {
		return Totals{
			ItemsPrice:    decimal.Zero,
			ShippingPrice: decimal.Zero,
			TaxPrice:      decimal.Zero,
			TotalPrice:    decimal.Zero,
		}
	}

	items := decimal.Zero
	for _, line := range lines {
		items = items.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	items = round2(items)

	shipping := FlatShippingFee
	if items.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := round2(items.Mul(TaxRate))
	total := round2(items.Add(shipping).Add(tax))

	return Totals{
		ItemsPrice:    items,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    total,
	}
}

// round2 rounds half-up to two decimal places.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
