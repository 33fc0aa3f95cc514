package bookstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/backend-pricing/internal/obs"
)

// OrderPricer prices book orders against a catalog, clamping every line to
// the stock on hand.
type OrderPricer struct {
	catalog Catalog
	process BuyProcess
	logger  zerolog.Logger
	metrics *obs.PricingMetrics
	now     func() time.Time
}

// Option customises an OrderPricer.
type Option func(*OrderPricer)

// WithLogger sets the logger used for pricing events.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *OrderPricer) { p.logger = logger }
}

// WithMetrics records pricing outcomes on m.
func WithMetrics(m *obs.PricingMetrics) Option {
	return func(p *OrderPricer) { p.metrics = m }
}

// NewOrderPricer constructs an OrderPricer. process may be nil when only
// PriceOrder is used.
func NewOrderPricer(catalog Catalog, process BuyProcess, opts ...Option) *OrderPricer {
	p := &OrderPricer{
		catalog: catalog,
		process: process,
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

type pricedLine struct {
	product     Product
	purchasable int
}

// PriceOrder prices order, a mapping of ISBN to requested quantity.
//
// A nil order yields a nil summary and nil error; an empty order yields a zero
// summary. Each line is clamped to min(requested, stock) and priced; lines
// requested beyond stock are recorded in Unavailable with their shortfall.
// Unknown ISBNs are priced as zero stock at zero price.
func (p *OrderPricer) PriceOrder(ctx context.Context, order map[string]int) (*PurchaseSummary, error) {
	summary, _, err := p.price(ctx, order)
	return summary, err
}

// Purchase prices order and then buys every line with a positive purchasable
// quantity, in ascending ISBN order. Lines are bought at the clamped quantity.
func (p *OrderPricer) Purchase(ctx context.Context, order map[string]int) (*PurchaseSummary, error) {
	if p != nil && p.process == nil {
		return nil, errors.New("bookstore: buy process not configured")
	}
	summary, lines, err := p.price(ctx, order)
	if err != nil || summary == nil {
		return summary, err
	}
	for _, line := range lines {
		if line.purchasable <= 0 {
			continue
		}
		if err := p.process.BuyBook(ctx, line.product, line.purchasable); err != nil {
			return nil, fmt.Errorf("bookstore: buy %s: %w", line.product.ISBN, err)
		}
	}
	return summary, nil
}

func (p *OrderPricer) price(ctx context.Context, order map[string]int) (*PurchaseSummary, []pricedLine, error) {
	if p == nil || p.catalog == nil {
		return nil, nil, errors.New("bookstore: pricer not configured")
	}
	start := p.now()
	if order == nil {
		p.metrics.ObserveOrder(obs.ResultAbsent, p.now().Sub(start))
		return nil, nil, nil
	}

	ctx, span := otel.Tracer("bookstore").Start(ctx, "bookstore.PriceOrder")
	defer span.End()
	span.SetAttributes(attribute.Int("order.lines", len(order)))

	isbns := make([]string, 0, len(order))
	for isbn := range order {
		isbns = append(isbns, isbn)
	}
	sort.Strings(isbns)

	summary := newSummary()
	lines := make([]pricedLine, 0, len(isbns))
	for _, isbn := range isbns {
		requested := order[isbn]
		if requested <= 0 {
			continue
		}
		product, err := p.catalog.FindByISBN(ctx, isbn)
		status := obs.LineAvailable
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				span.RecordError(err)
				span.SetStatus(codes.Error, "catalog lookup failed")
				p.metrics.ObserveOrder(obs.ResultError, p.now().Sub(start))
				return nil, nil, fmt.Errorf("bookstore: find %s: %w", isbn, err)
			}
			p.logger.Warn().Str("isbn", isbn).Int("requested", requested).Msg("unknown isbn priced as unavailable")
			product = Product{ISBN: isbn, Price: decimal.Zero}
			status = obs.LineUnknown
		}

		purchasable := min(requested, max(product.Stock, 0))
		summary.TotalPrice = summary.TotalPrice.Add(product.Price.Mul(decimal.NewFromInt(int64(purchasable))))
		if requested > purchasable {
			summary.Unavailable[isbn] = requested - purchasable
			if status == obs.LineAvailable {
				status = obs.LineUnavailable
			}
		}
		p.metrics.IncLine(status)
		lines = append(lines, pricedLine{product: product, purchasable: purchasable})
	}

	p.logger.Debug().
		Int("lines", len(order)).
		Str("total", summary.TotalPrice.StringFixed(2)).
		Strs("unavailable", summary.UnavailableISBNs()).
		Msg("order priced")
	p.metrics.ObserveOrder(obs.ResultOK, p.now().Sub(start))
	return summary, lines, nil
}
