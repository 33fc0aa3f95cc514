package pricing

import (
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with exact decimal arithmetic.
type Money = decimal.Decimal

// Category classifies an item for category-scoped rules.
type Category string

const (
	CategoryElectronic Category = "ELECTRONIC"
	CategoryOther      Category = "OTHER"
)

// ErrInvalidItem is returned when an item violates its field constraints.
var ErrInvalidItem = errors.New("invalid item")

var validate = validator.New()

// Item describes a line item used for pricing calculation.
type Item struct {
	Category  Category `json:"category" validate:"required,oneof=ELECTRONIC OTHER"`
	Name      string   `json:"name" validate:"required"`
	Qty       int      `json:"quantity" validate:"gt=0"`
	UnitPrice Money    `json:"pricePerUnit"`
}

// NewItem builds an item from a float price. Intended for fixtures and tests;
// callers holding decimal prices should construct Item directly.
func NewItem(category Category, name string, qty int, unitPrice float64) Item {
	return Item{
		Category:  category,
		Name:      name,
		Qty:       qty,
		UnitPrice: decimal.NewFromFloat(unitPrice),
	}
}

// Subtotal returns unit price multiplied by quantity.
func (it Item) Subtotal() Money {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Qty)))
}

// Validate checks that the item has a known category, a name, a positive
// quantity and a non-negative unit price.
func (it Item) Validate() error {
	if err := validate.Struct(it); err != nil {
		return fmt.Errorf("%s: %w: %v", it.Name, ErrInvalidItem, err)
	}
	if it.UnitPrice.IsNegative() {
		return fmt.Errorf("%s: unit price must not be negative: %w", it.Name, ErrInvalidItem)
	}
	return nil
}
