package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pricing/internal/bookstore"
)

const keyPrefix = "catalog:isbn:"

// Cache wraps Redis helpers for JSON payloads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// StockReader reports the live stock level of a product.
type StockReader interface {
	StockByISBN(ctx context.Context, isbn string) (int, error)
}

// cachedPrice is the Redis payload. Stock is never cached.
type cachedPrice struct {
	ISBN  string          `json:"isbn"`
	Price bookstore.Money `json:"price"`
}

// Cached serves product prices from Redis before falling back to Source.
// Stock is read from Source on every lookup, through StockReader when Source
// implements it. Misses are not cached and cache failures never fail a lookup.
type Cached struct {
	Source bookstore.Catalog
	Cache  *Cache
	Logger zerolog.Logger
}

// FindByISBN implements bookstore.Catalog.
func (c Cached) FindByISBN(ctx context.Context, isbn string) (bookstore.Product, error) {
	if c.Source == nil {
		return bookstore.Product{}, errors.New("catalog: cache source not configured")
	}
	key := keyPrefix + isbn
	var entry cachedPrice
	found, err := c.Cache.GetJSON(ctx, key, &entry)
	if err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	}
	if found {
		if stock, ok := c.Source.(StockReader); ok {
			n, err := stock.StockByISBN(ctx, isbn)
			if err != nil {
				return bookstore.Product{}, err
			}
			return bookstore.Product{ISBN: entry.ISBN, Price: entry.Price, Stock: n}, nil
		}
	}

	product, err := c.Source.FindByISBN(ctx, isbn)
	if err != nil {
		return bookstore.Product{}, err
	}
	if found {
		return product, nil
	}
	if err := c.Cache.SetJSON(ctx, key, cachedPrice{ISBN: product.ISBN, Price: product.Price}); err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
	return product, nil
}
