package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pricing/internal/bookstore"
	"github.com/noah-isme/backend-pricing/internal/catalog"
)

type countingCatalog struct {
	inner      *catalog.Memory
	calls      int
	stockCalls int
}

func (c *countingCatalog) FindByISBN(ctx context.Context, isbn string) (bookstore.Product, error) {
	c.calls++
	return c.inner.FindByISBN(ctx, isbn)
}

func (c *countingCatalog) StockByISBN(ctx context.Context, isbn string) (int, error) {
	c.stockCalls++
	return c.inner.StockByISBN(ctx, isbn)
}

// lookupOnly hides StockByISBN from Cached.
type lookupOnly struct {
	inner bookstore.Catalog
	calls int
}

func (l *lookupOnly) FindByISBN(ctx context.Context, isbn string) (bookstore.Product, error) {
	l.calls++
	return l.inner.FindByISBN(ctx, isbn)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedServesRepeatLookupsFromRedis(t *testing.T) {
	mr, client := newRedis(t)
	source := &countingCatalog{inner: catalog.NewMemory(bookstore.Product{ISBN: "1234567890", Price: decimal.RequireFromString("20.00"), Stock: 10})}
	cached := catalog.Cached{Source: source, Cache: catalog.NewCache(client, time.Minute), Logger: zerolog.Nop()}

	for i := 0; i < 3; i++ {
		product, err := cached.FindByISBN(context.Background(), "1234567890")
		require.NoError(t, err)
		require.True(t, decimal.NewFromInt(20).Equal(product.Price))
		require.Equal(t, 10, product.Stock)
	}
	require.Equal(t, 1, source.calls)
	require.Equal(t, 2, source.stockCalls)
	require.True(t, mr.Exists("catalog:isbn:1234567890"))
	require.Equal(t, time.Minute, mr.TTL("catalog:isbn:1234567890"))
	payload, err := mr.Get("catalog:isbn:1234567890")
	require.NoError(t, err)
	require.NotContains(t, payload, "stock")
}

func TestCachedReadsLiveStock(t *testing.T) {
	_, client := newRedis(t)
	source := catalog.NewMemory(bookstore.Product{ISBN: "1234567890", Price: decimal.NewFromInt(20), Stock: 10})
	cached := catalog.Cached{Source: source, Cache: catalog.NewCache(client, time.Minute)}
	pricer := bookstore.NewOrderPricer(cached, nil)

	summary, err := pricer.PriceOrder(context.Background(), map[string]int{"1234567890": 5})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(100).Equal(summary.TotalPrice))
	require.Empty(t, summary.Unavailable)

	source.Put(bookstore.Product{ISBN: "1234567890", Price: decimal.NewFromInt(20), Stock: 2})

	summary, err = pricer.PriceOrder(context.Background(), map[string]int{"1234567890": 5})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(40).Equal(summary.TotalPrice))
	require.Equal(t, map[string]int{"1234567890": 3}, summary.Unavailable)
}

func TestCachedHitForRemovedProductIsNotFound(t *testing.T) {
	mr, client := newRedis(t)
	source := catalog.NewMemory()
	cached := catalog.Cached{Source: source, Cache: catalog.NewCache(client, time.Minute)}
	require.NoError(t, mr.Set("catalog:isbn:1234567890", `{"isbn":"1234567890","price":"20"}`))

	_, err := cached.FindByISBN(context.Background(), "1234567890")
	require.ErrorIs(t, err, bookstore.ErrNotFound)
}

func TestCachedWithoutStockReaderUsesSourceStock(t *testing.T) {
	_, client := newRedis(t)
	mem := catalog.NewMemory(bookstore.Product{ISBN: "1", Price: decimal.NewFromInt(5), Stock: 4})
	source := &lookupOnly{inner: mem}
	cached := catalog.Cached{Source: source, Cache: catalog.NewCache(client, time.Minute)}

	_, err := cached.FindByISBN(context.Background(), "1")
	require.NoError(t, err)
	mem.Put(bookstore.Product{ISBN: "1", Price: decimal.NewFromInt(5), Stock: 1})

	product, err := cached.FindByISBN(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, 1, product.Stock)
	require.Equal(t, 2, source.calls)
}

func TestCachedDoesNotCacheMisses(t *testing.T) {
	mr, client := newRedis(t)
	source := &countingCatalog{inner: catalog.NewMemory()}
	cached := catalog.Cached{Source: source, Cache: catalog.NewCache(client, time.Minute)}

	for i := 0; i < 2; i++ {
		_, err := cached.FindByISBN(context.Background(), "missing")
		require.ErrorIs(t, err, bookstore.ErrNotFound)
	}
	require.Equal(t, 2, source.calls)
	require.False(t, mr.Exists("catalog:isbn:missing"))
}

func TestCachedFallsThroughWhenRedisDown(t *testing.T) {
	mr, client := newRedis(t)
	source := &countingCatalog{inner: catalog.NewMemory(bookstore.Product{ISBN: "1", Price: decimal.NewFromInt(5), Stock: 1})}
	cached := catalog.Cached{Source: source, Cache: catalog.NewCache(client, time.Minute)}
	mr.SetError("ERR cache unavailable")

	product, err := cached.FindByISBN(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, "1", product.ISBN)
}

func TestCachedWithoutClientUsesSource(t *testing.T) {
	source := &countingCatalog{inner: catalog.NewMemory(bookstore.Product{ISBN: "1", Price: decimal.NewFromInt(5), Stock: 1})}
	cached := catalog.Cached{Source: source}

	_, err := cached.FindByISBN(context.Background(), "1")
	require.NoError(t, err)
	_, err = cached.FindByISBN(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, 2, source.calls)
}

func TestCachedFeedsOrderPricer(t *testing.T) {
	_, client := newRedis(t)
	source := catalog.NewMemory(
		bookstore.Product{ISBN: "1234567890", Price: decimal.NewFromInt(20), Stock: 10},
		bookstore.Product{ISBN: "0987654321", Price: decimal.NewFromInt(30), Stock: 5},
	)
	cached := catalog.Cached{Source: source, Cache: catalog.NewCache(client, time.Minute)}
	pricer := bookstore.NewOrderPricer(cached, nil)

	for i := 0; i < 2; i++ {
		summary, err := pricer.PriceOrder(context.Background(), map[string]int{"1234567890": 15, "0987654321": 1})
		require.NoError(t, err)
		require.True(t, decimal.NewFromInt(230).Equal(summary.TotalPrice))
		require.Equal(t, []string{"1234567890"}, summary.UnavailableISBNs())
	}
}
