// README: Prometheus collectors for pricing.
package pricing

import (
	"github.com/prometheus/client_golang/prometheus"

	"fleetfare/internal/types"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	quotes    *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	surge     prometheus.Histogram
	price     prometheus.Histogram
}

// NewMetrics registers the pricing collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetfare",
			Subsystem: "pricing",
			Name:      "quotes_total",
			Help:      "Fares computed, by zone.",
		}, []string{"zone"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetfare",
			Subsystem: "pricing",
			Name:      "fallbacks_total",
			Help:      "Fares that degraded to the minimum price, by reason.",
		}, []string{"reason"}),
		surge: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fleetfare",
			Subsystem: "pricing",
			Name:      "surge_multiplier",
			Help:      "Surge multiplier applied to computed fares.",
			Buckets:   []float64{1.0, 1.1, 1.2, 1.3, 1.4, 1.5, 1.6, 1.7, 1.8, 2.2, 3.0},
		}),
		price: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fleetfare",
			Subsystem: "pricing",
			Name:      "price",
			Help:      "Final fare in major currency units.",
			Buckets:   prometheus.ExponentialBuckets(40, 1.5, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.quotes, m.fallbacks, m.surge, m.price)
	}
	return m
}

func (m *Metrics) observeQuote(zone types.Zone, surge, price float64) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(zone.String()).Inc()
	m.surge.Observe(surge)
	m.price.Observe(price)
}

func (m *Metrics) observeFallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}
