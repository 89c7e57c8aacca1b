package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reconcile outcomes.
const (
	OutcomeAdvanced  = "advanced"
	OutcomeUnchanged = "unchanged"
	OutcomeUnmanaged = "unmanaged"
	OutcomeFailed    = "failed"
)

// Metrics holds Prometheus collectors for the listing controller.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Reconciles  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lettings_listing_transitions_total",
			Help: "Committed listing edges",
		}, []string{"from", "to"}),
		Reconciles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lettings_listing_reconciles_total",
			Help: "Reconcile runs triggered by tracker events, by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncTransition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncReconcile(outcome string) {
	if m == nil {
		return
	}
	m.Reconciles.WithLabelValues(outcome).Inc()
}
