package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reserve outcomes.
const (
	OutcomeCreated      = "created"
	OutcomeIdempotent   = "idempotent"
	OutcomeAlreadyTaken = "already_booked"
	OutcomeRejected     = "rejected"
)

// Metrics holds Prometheus collectors for the inspection registry.
type Metrics struct {
	Reservations          *prometheus.CounterVec
	Cancellations         prometheus.Counter
	SlotsConfigured       prometheus.Counter
	StoreOperationLatency *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Reservations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lettings_inspection_reservations_total",
			Help: "Reserve calls by outcome",
		}, []string{"outcome"}),
		Cancellations: f.NewCounter(prometheus.CounterOpts{
			Name: "lettings_inspection_cancellations_total",
			Help: "Reservations cancelled",
		}),
		SlotsConfigured: f.NewCounter(prometheus.CounterOpts{
			Name: "lettings_inspection_slot_configurations_total",
			Help: "Successful slot configuration calls",
		}),
		StoreOperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lettings_inspection_store_operation_latency_seconds",
			Help:    "Latency of inspection store operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncReservation(outcome string) {
	if m == nil {
		return
	}
	m.Reservations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncCancellation() {
	if m == nil {
		return
	}
	m.Cancellations.Inc()
}

func (m *Metrics) IncSlotsConfigured() {
	if m == nil {
		return
	}
	m.SlotsConfigured.Inc()
}

func (m *Metrics) ObserveStore(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.StoreOperationLatency.WithLabelValues(operation).Observe(seconds)
}
