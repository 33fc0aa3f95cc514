package pricing

import "github.com/shopspring/decimal"

// DefaultElectronicsSurcharge is the flat fee added once to carts holding electronics.
var DefaultElectronicsSurcharge = decimal.RequireFromString("7.50")

// Rule computes a contribution to the cart total from the full item collection.
type Rule interface {
	Contribution(items []Item) Money
}

// Named is implemented by rules that report a label in price breakdowns.
type Named interface {
	Name() string
}

// RuleFunc adapts an ordinary function to the Rule interface.
type RuleFunc func(items []Item) Money

// Contribution calls f(items).
func (f RuleFunc) Contribution(items []Item) Money {
	return f(items)
}

// BasePriceRule sums unit price times quantity across all items.
type BasePriceRule struct{}

// Contribution implements Rule.
func (BasePriceRule) Contribution(items []Item) Money {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Name implements Named.
func (BasePriceRule) Name() string { return "base_price" }

// CategorySurchargeRule adds Amount once when at least one item belongs to
// Category. The number and position of matching items do not matter.
type CategorySurchargeRule struct {
	Category Category
	Amount   Money
}

// ElectronicsSurcharge returns the surcharge rule for ELECTRONIC items.
func ElectronicsSurcharge(amount Money) CategorySurchargeRule {
	return CategorySurchargeRule{Category: CategoryElectronic, Amount: amount}
}

// Contribution implements Rule.
func (r CategorySurchargeRule) Contribution(items []Item) Money {
	for _, it := range items {
		if it.Category == r.Category {
			return r.Amount
		}
	}
	return decimal.Zero
}

// Name implements Named.
func (r CategorySurchargeRule) Name() string {
	return "surcharge_" + string(r.Category)
}

// PercentRule contributes a share of the base total expressed in basis points
// (1000 bps = 10%).
type PercentRule struct {
	Bps int
}

// Contribution implements Rule.
func (r PercentRule) Contribution(items []Item) Money {
	if r.Bps == 0 {
		return decimal.Zero
	}
	base := BasePriceRule{}.Contribution(items)
	return base.Mul(decimal.NewFromInt(int64(r.Bps))).Div(decimal.NewFromInt(10000))
}

// Name implements Named.
func (r PercentRule) Name() string { return "percent" }
