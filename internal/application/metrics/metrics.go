package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "lettings/pkg/domain-errors"
)

// Metrics holds Prometheus collectors for the application tracker.
type Metrics struct {
	Submissions       *prometheus.CounterVec
	Transitions       *prometheus.CounterVec
	BatchSize         *prometheus.HistogramVec
	ReconcileFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lettings_application_submissions_total",
			Help: "Submit calls by outcome",
		}, []string{"outcome"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lettings_application_transitions_total",
			Help: "Status transitions by action and outcome (ok or error code)",
		}, []string{"action", "outcome"}),
		BatchSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lettings_application_batch_size",
			Help:    "Applications picked up by one batch call",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}, []string{"action"}),
		ReconcileFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "lettings_application_listing_reconcile_failures_total",
			Help: "Committed transitions whose synchronous listing reconcile failed",
		}),
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(dErrors.CodeOf(err))
}

func (m *Metrics) IncSubmission(err error) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) IncTransition(action string, err error) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(action, outcome(err)).Inc()
}

func (m *Metrics) ObserveBatch(action string, size int) {
	if m == nil {
		return
	}
	m.BatchSize.WithLabelValues(action).Observe(float64(size))
}

func (m *Metrics) IncReconcileFailure() {
	if m == nil {
		return
	}
	m.ReconcileFailures.Inc()
}
