package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pricing/internal/obs"
)

// Line is one rule's contribution inside a Breakdown.
type Line struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// Breakdown aggregates per-rule contributions and their total.
type Breakdown struct {
	Lines []Line `json:"lines"`
	Total Money  `json:"total"`
}

// CartPricer totals a cart by summing the contributions of its rules in
// registration order.
//
// The zero value is usable: it prices an empty in-memory cart with no rules.
type CartPricer struct {
	cart    Cart
	rules   []Rule
	metrics *obs.PricingMetrics
}

// Option configures a CartPricer.
type Option func(*CartPricer)

// WithMetrics records every evaluation in m.
func WithMetrics(m *obs.PricingMetrics) Option {
	return func(p *CartPricer) {
		p.metrics = m
	}
}

// NewCartPricer constructs a pricer over cart. A nil cart is replaced by an
// empty MemoryCart and nil rules are ignored.
func NewCartPricer(cart Cart, rules []Rule, opts ...Option) *CartPricer {
	p := &CartPricer{cart: cart, rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		if r != nil {
			p.rules = append(p.rules, r)
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.ensureCart()
	return p
}

// DefaultRules returns the base price rule followed by the electronics surcharge.
func DefaultRules(surcharge Money) []Rule {
	return []Rule{BasePriceRule{}, ElectronicsSurcharge(surcharge)}
}

// Cart exposes the underlying cart.
func (p *CartPricer) Cart() Cart {
	return p.ensureCart()
}

// AddItem appends item to the cart.
func (p *CartPricer) AddItem(item Item) {
	p.ensureCart().Add(item)
}

// Calculate returns the cart total. With no rules the total is zero.
func (p *CartPricer) Calculate() Money {
	return p.Breakdown().Total
}

// Breakdown evaluates every rule once against the current cart contents.
func (p *CartPricer) Breakdown() Breakdown {
	items := p.ensureCart().Items()
	out := Breakdown{Lines: make([]Line, 0, len(p.rules)), Total: decimal.Zero}
	for i, r := range p.rules {
		amount := r.Contribution(items)
		out.Lines = append(out.Lines, Line{Name: ruleName(r, i), Amount: amount})
		out.Total = out.Total.Add(amount)
	}
	p.metrics.IncCart()
	return out
}

func (p *CartPricer) ensureCart() Cart {
	if p.cart == nil {
		p.cart = NewMemoryCart()
	}
	return p.cart
}

func ruleName(r Rule, idx int) string {
	if n, ok := r.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("rule[%d]", idx)
}
