package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountRule subtracts a voucher-style discount from the cart total. The
// discount applies to the subtotal of items in Categories (all items when
// empty) and never exceeds that subtotal.
type DiscountRule struct {
	Code       string
	Kind       string // "fixed" or "percent"
	Value      Money
	PercentBps int
	MinSpend   Money
	Categories []Category
}

// Contribution implements Rule. The result is zero or negative.
func (r DiscountRule) Contribution(items []Item) Money {
	if (BasePriceRule{}).Contribution(items).LessThan(r.MinSpend) {
		return decimal.Zero
	}
	eligible := r.eligibleSubtotal(items)
	if !eligible.IsPositive() {
		return decimal.Zero
	}
	discount := r.Value
	if strings.EqualFold(r.Kind, "percent") {
		if r.PercentBps <= 0 {
			return decimal.Zero
		}
		discount = eligible.Mul(decimal.NewFromInt(int64(r.PercentBps))).Div(decimal.NewFromInt(10000))
	}
	if discount.GreaterThan(eligible) {
		discount = eligible
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount.Neg()
}

// Name implements Named.
func (r DiscountRule) Name() string {
	if r.Code == "" {
		return "discount"
	}
	return "discount_" + r.Code
}

func (r DiscountRule) eligibleSubtotal(items []Item) Money {
	total := decimal.Zero
	for _, it := range items {
		if len(r.Categories) == 0 || r.matches(it.Category) {
			total = total.Add(it.Subtotal())
		}
	}
	return total
}

func (r DiscountRule) matches(c Category) bool {
	for _, want := range r.Categories {
		if want == c {
			return true
		}
	}
	return false
}
