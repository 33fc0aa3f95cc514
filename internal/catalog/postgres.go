package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pricing/internal/bookstore"
)

const (
	findByISBNSQL  = `SELECT isbn, price::text, stock FROM books WHERE isbn = $1`
	stockByISBNSQL = `SELECT stock FROM books WHERE isbn = $1`
)

// RowQuerier is the subset of *pgxpool.Pool and pgx.Tx used by Postgres.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres resolves products from the books table.
type Postgres struct {
	Q RowQuerier
}

// FindByISBN implements bookstore.Catalog.
func (p Postgres) FindByISBN(ctx context.Context, isbn string) (bookstore.Product, error) {
	if p.Q == nil {
		return bookstore.Product{}, errors.New("catalog: postgres querier not configured")
	}
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return bookstore.Product{}, bookstore.ErrNotFound
	}
	var (
		product bookstore.Product
		price   string
	)
	if err := p.Q.QueryRow(ctx, findByISBNSQL, isbn).Scan(&product.ISBN, &price, &product.Stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bookstore.Product{}, bookstore.ErrNotFound
		}
		return bookstore.Product{}, fmt.Errorf("catalog: query %s: %w", isbn, err)
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return bookstore.Product{}, fmt.Errorf("catalog: parse price for %s: %w", isbn, err)
	}
	product.Price = parsed
	return product, nil
}

// StockByISBN implements StockReader.
func (p Postgres) StockByISBN(ctx context.Context, isbn string) (int, error) {
	if p.Q == nil {
		return 0, errors.New("catalog: postgres querier not configured")
	}
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return 0, bookstore.ErrNotFound
	}
	var stock int
	if err := p.Q.QueryRow(ctx, stockByISBNSQL, isbn).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, bookstore.ErrNotFound
		}
		return 0, fmt.Errorf("catalog: query stock %s: %w", isbn, err)
	}
	return stock, nil
}
