package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestItemValidate(t *testing.T) {
	valid := NewItem(CategoryElectronic, "MacBook Pro", 1, 1200)
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid item, got %v", err)
	}

	cases := map[string]Item{
		"zero qty":      NewItem(CategoryOther, "Mug", 0, 7.5),
		"missing name":  NewItem(CategoryOther, "", 1, 7.5),
		"bad category":  NewItem(Category("FOOD"), "Bread", 1, 2),
		"negative cost": {Category: CategoryOther, Name: "Refund", Qty: 1, UnitPrice: decimal.NewFromInt(-1)},
	}
	for name, item := range cases {
		if err := item.Validate(); !errors.Is(err, ErrInvalidItem) {
			t.Fatalf("%s: expected ErrInvalidItem, got %v", name, err)
		}
	}
}

func TestItemSubtotal(t *testing.T) {
	mug := NewItem(CategoryOther, "Coffee Mug", 2, 7.5)
	if got := mug.Subtotal(); !got.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected 15, got %s", got)
	}
}
