package bookstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with exact decimal arithmetic.
type Money = decimal.Decimal

var (
	// ErrNotFound indicates the catalog holds no product for the ISBN.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidProduct is returned when a product violates its field constraints.
	ErrInvalidProduct = errors.New("invalid product")
)

var validate = validator.New()

// Product is a catalog entry with its unit price and available stock.
type Product struct {
	ISBN  string `json:"isbn" validate:"required"`
	Price Money  `json:"price"`
	Stock int    `json:"stock" validate:"gte=0"`
}

// Validate checks the product has an ISBN, a non-negative price and non-negative stock.
func (p Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%q: %w: %v", p.ISBN, ErrInvalidProduct, err)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%q: price must not be negative: %w", p.ISBN, ErrInvalidProduct)
	}
	return nil
}

// Catalog resolves products by ISBN. Implementations return ErrNotFound
// (possibly wrapped) when the ISBN is unknown.
type Catalog interface {
	FindByISBN(ctx context.Context, isbn string) (Product, error)
}

// BuyProcess executes the purchase of a priced line.
type BuyProcess interface {
	BuyBook(ctx context.Context, product Product, qty int) error
}

// PurchaseSummary is the result of pricing one order.
type PurchaseSummary struct {
	TotalPrice Money `json:"totalPrice"`
	// Unavailable maps each oversubscribed ISBN to its shortfall.
	Unavailable map[string]int `json:"unavailable"`
}

func newSummary() *PurchaseSummary {
	return &PurchaseSummary{TotalPrice: decimal.Zero, Unavailable: map[string]int{}}
}

// IsUnavailable reports whether the ISBN was requested beyond its stock.
func (s *PurchaseSummary) IsUnavailable(isbn string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Unavailable[isbn]
	return ok
}

// UnavailableISBNs returns the oversubscribed ISBNs in ascending order.
func (s *PurchaseSummary) UnavailableISBNs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Unavailable))
	for isbn := range s.Unavailable {
		out = append(out, isbn)
	}
	sort.Strings(out)
	return out
}
