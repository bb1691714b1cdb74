// README: Prometheus collectors for ranking.
package ranking

import "github.com/prometheus/client_golang/prometheus"

// Metrics is safe to use as a nil pointer.
type Metrics struct {
	ranked     prometheus.Counter
	selections *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ranked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fleetfare",
			Subsystem: "ranking",
			Name:      "requests_ranked_total",
			Help:      "Trip requests scored for drivers.",
		}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetfare",
			Subsystem: "ranking",
			Name:      "selections_total",
			Help:      "Best-request selections, by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.ranked, m.selections)
	}
	return m
}

func (m *Metrics) observeRanked(n int) {
	if m == nil {
		return
	}
	m.ranked.Add(float64(n))
}

func (m *Metrics) observeSelection(candidates int, selected bool) {
	if m == nil {
		return
	}
	switch {
	case selected:
		m.selections.WithLabelValues("selected").Inc()
	case candidates == 0:
		m.selections.WithLabelValues("empty").Inc()
	default:
		m.selections.WithLabelValues("below_minimum").Inc()
	}
}
