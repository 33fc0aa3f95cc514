package obs

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Line statuses recorded by PricingMetrics.IncLine.
const (
	LineAvailable   = "available"
	LineUnavailable = "unavailable"
	LineUnknown     = "unknown"
)

// Order pricing outcomes recorded by PricingMetrics.ObserveOrder.
const (
	ResultOK     = "ok"
	ResultAbsent = "absent"
	ResultError  = "error"
)

// PricingMetrics groups Prometheus collectors for the pricing calculators.
// A nil *PricingMetrics is valid and records nothing.
type PricingMetrics struct {
	CartCalculations prometheus.Counter
	OrderPricings    *prometheus.CounterVec
	OrderLines       *prometheus.CounterVec
	OrderDuration    *prometheus.HistogramVec
}

// NewPricingMetrics registers and returns pricing collectors. Collectors that
// are already registered on reg are reused.
func NewPricingMetrics(namespace string, reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PricingMetrics{
		CartCalculations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_calculations_total",
			Help:      "Total number of cart total calculations.",
		}),
		OrderPricings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_pricings_total",
			Help:      "Count of order pricing outcomes.",
		}, []string{"result"}),
		OrderLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_lines_total",
			Help:      "Count of priced order lines by stock status.",
		}, []string{"status"}),
		OrderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_pricing_duration_ms",
			Help:      "Order pricing latency in milliseconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"result"}),
	}
	mustRegisterCollector(reg, m.CartCalculations, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			m.CartCalculations = v
		}
	})
	mustRegisterCollector(reg, m.OrderPricings, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.OrderPricings = v
		}
	})
	mustRegisterCollector(reg, m.OrderLines, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.OrderLines = v
		}
	})
	mustRegisterCollector(reg, m.OrderDuration, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.HistogramVec); ok {
			m.OrderDuration = v
		}
	})
	return m
}

// IncCart records one cart calculation.
func (m *PricingMetrics) IncCart() {
	if m == nil {
		return
	}
	m.CartCalculations.Inc()
}

// IncLine records one priced order line with the given status.
func (m *PricingMetrics) IncLine(status string) {
	if m == nil {
		return
	}
	m.OrderLines.WithLabelValues(status).Inc()
}

// ObserveOrder records the outcome and latency of one PriceOrder call.
func (m *PricingMetrics) ObserveOrder(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.OrderPricings.WithLabelValues(result).Inc()
	m.OrderDuration.WithLabelValues(result).Observe(DurationMillis(d))
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register pricing metric: %w", err))
	}
}
