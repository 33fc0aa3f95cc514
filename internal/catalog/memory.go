package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/noah-isme/backend-pricing/internal/bookstore"
)

// Memory is a map-backed catalog. It is not safe for concurrent mutation.
type Memory struct {
	products map[string]bookstore.Product
}

// NewMemory returns a catalog holding products. Later duplicates replace earlier ones.
func NewMemory(products ...bookstore.Product) *Memory {
	m := &Memory{products: make(map[string]bookstore.Product, len(products))}
	for _, p := range products {
		m.Put(p)
	}
	return m
}

// LoadJSON decodes a JSON array of products, validating each entry.
func LoadJSON(r io.Reader) (*Memory, error) {
	var products []bookstore.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("catalog: decode products: %w", err)
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	return NewMemory(products...), nil
}

// Put inserts or replaces a product.
func (m *Memory) Put(p bookstore.Product) {
	m.products[p.ISBN] = p
}

// Len reports the number of products held.
func (m *Memory) Len() int {
	return len(m.products)
}

// FindByISBN implements bookstore.Catalog.
func (m *Memory) FindByISBN(_ context.Context, isbn string) (bookstore.Product, error) {
	p, ok := m.products[isbn]
	if !ok {
		return bookstore.Product{}, bookstore.ErrNotFound
	}
	return p, nil
}

// StockByISBN implements StockReader.
func (m *Memory) StockByISBN(_ context.Context, isbn string) (int, error) {
	p, ok := m.products[isbn]
	if !ok {
		return 0, bookstore.ErrNotFound
	}
	return p.Stock, nil
}
