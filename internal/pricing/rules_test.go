package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestElectronicsSurchargeAbsentWithoutElectronics(t *testing.T) {
	rule := ElectronicsSurcharge(DefaultElectronicsSurcharge)
	items := []Item{
		NewItem(CategoryOther, "Design Patterns", 1, 40),
		NewItem(CategoryOther, "Clean Code", 1, 35),
	}
	if got := rule.Contribution(items); !got.IsZero() {
		t.Fatalf("expected no surcharge, got %s", got)
	}
	if got := rule.Contribution(nil); !got.IsZero() {
		t.Fatalf("expected no surcharge for empty cart, got %s", got)
	}
}

func TestElectronicsSurchargeIgnoresCountAndPosition(t *testing.T) {
	rule := ElectronicsSurcharge(DefaultElectronicsSurcharge)
	laptop := NewItem(CategoryElectronic, "MacBook Pro", 1, 1200)
	phone := NewItem(CategoryElectronic, "iPhone", 1, 800)
	book := NewItem(CategoryOther, "Design Patterns", 3, 40)

	carts := [][]Item{
		{laptop},
		{laptop, phone},
		{book, laptop},
		{laptop, book, phone},
		{phone, book, laptop, laptop, laptop},
	}
	for i, items := range carts {
		got := rule.Contribution(items)
		if !got.Equal(decimal.RequireFromString("7.50")) {
			t.Fatalf("cart %d: expected 7.50 surcharge, got %s", i, got)
		}
	}
}

func TestBasePriceRuleMultipliesQuantity(t *testing.T) {
	items := []Item{
		NewItem(CategoryElectronic, "MacBook Pro", 1, 1200),
		NewItem(CategoryOther, "Design Patterns", 3, 40),
	}
	got := BasePriceRule{}.Contribution(items)
	if !got.Equal(decimal.NewFromInt(1320)) {
		t.Fatalf("expected 1320, got %s", got)
	}
	if got := (BasePriceRule{}).Contribution(nil); !got.IsZero() {
		t.Fatalf("expected 0 for empty cart, got %s", got)
	}
}

func TestPercentRule(t *testing.T) {
	items := []Item{
		NewItem(CategoryElectronic, "MacBook Pro", 1, 1200),
		NewItem(CategoryOther, "Design Patterns", 1, 40),
	}
	got := PercentRule{Bps: 1000}.Contribution(items)
	if !got.Equal(decimal.NewFromInt(124)) {
		t.Fatalf("expected 124, got %s", got)
	}
	if got := (PercentRule{}).Contribution(items); !got.IsZero() {
		t.Fatalf("expected 0 for zero bps, got %s", got)
	}
}
