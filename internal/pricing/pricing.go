// Package pricing computes order totals. It is pure: no I/O, no clock, same
// inputs always produce the same quote.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountKind selects how a discount value is interpreted.
type DiscountKind string

const (
	// KindFlat subtracts a fixed monetary amount.
	KindFlat DiscountKind = "amount"
	// KindPercentage subtracts a percentage of the subtotal.
	KindPercentage DiscountKind = "percentage"
)

// Discount is a tagged discount descriptor: either a flat amount or a
// percentage of the subtotal, never both.
type Discount struct {
	Kind  DiscountKind
	Value decimal.Decimal
}

// FlatDiscount returns a fixed-amount discount.
func FlatDiscount(amount decimal.Decimal) Discount {
	return Discount{Kind: KindFlat, Value: amount}
}

// PercentageDiscount returns a percentage-of-subtotal discount.
func PercentageDiscount(percentage decimal.Decimal) Discount {
	return Discount{Kind: KindPercentage, Value: percentage}
}

// AmountFor resolves the discount to a monetary amount for the given
// subtotal, rounded to 2 decimal places. Checkout and the standalone promo
// preview both go through here so quoted and charged discounts can never
// diverge.
func (d Discount) AmountFor(subtotal decimal.Decimal) decimal.Decimal {
	switch d.Kind {
	case KindPercentage:
		return subtotal.Mul(d.Value).Div(hundred).Round(2)
	case KindFlat:
		return d.Value.Round(2)
	}
	return decimal.Zero
}

// LineItem is a (unit price, quantity) pair. Rows are priced independently;
// duplicate products are not aggregated.
type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote holds the three computed figures for an order.
type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Price computes subtotal, discount and total for the given line items,
// shipping cost and optional discount. The total is floored at zero: a
// discount larger than subtotal plus shipping never produces a negative
// charge.
func Price(items []LineItem, shippingCost decimal.Decimal, discount *Discount) Quote {
	subtotal := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.UnitPrice.Mul(qty))
	}
	subtotal = subtotal.Round(2)

	discountAmount := decimal.Zero
	if discount != nil {
		discountAmount = discount.AmountFor(subtotal)
	}

	total := subtotal.Add(shippingCost).Sub(discountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		Subtotal: subtotal,
		Discount: discountAmount,
		Total:    total.Round(2),
	}
}
