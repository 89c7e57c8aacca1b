// Package notify forwards domain events to the external notification
// collaborator over Kafka. Delivery is best effort: failures are logged and
// counted and never reach the request that produced the event.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"lettings/internal/events"
	"lettings/internal/platform/kafka/producer"
	"lettings/pkg/platform/circuit"
	"lettings/pkg/requestcontext"
)

// Producer is the slice of the Kafka producer the relay uses.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Envelope is the JSON record value.
type Envelope struct {
	Event      string          `json:"event"`
	OccurredAt time.Time       `json:"occurred_at"`
	RequestID  string          `json:"request_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

type Metrics struct {
	Relayed *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Relayed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "lettings_notify_relayed_total",
			Help: "Events offered to the notification relay, by event and outcome (ok, failed, dropped)",
		}, []string{"event", "outcome"}),
	}
}

func (m *Metrics) inc(event, outcome string) {
	if m == nil {
		return
	}
	m.Relayed.WithLabelValues(event, outcome).Inc()
}

// Relay is an asynchronous bus observer.
type Relay struct {
	producer Producer
	topic    string
	timeout  time.Duration
	breaker  *circuit.Breaker
	metrics  *Metrics
	logger   *slog.Logger
}

type Option func(*Relay)

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) { r.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) { r.logger = logger }
}

// WithBreaker replaces the default breaker (5 failures, 30s cooldown).
func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Relay) { r.breaker = b }
}

func WithTimeout(d time.Duration) Option {
	return func(r *Relay) { r.timeout = d }
}

func NewRelay(p Producer, topic string, opts ...Option) *Relay {
	r := &Relay{
		producer: p,
		topic:    topic,
		timeout:  5 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.breaker == nil {
		r.breaker = circuit.New("notify_kafka")
	}
	return r
}

// Handle serialises event and produces it keyed by property. It always
// returns nil so observer bookkeeping never treats a broker outage as a
// handler fault; the outcome is in the relay metrics.
func (r *Relay) Handle(ctx context.Context, event events.Event) error {
	name := event.EventName()
	if !r.breaker.Allow() {
		r.metrics.inc(name, "dropped")
		return nil
	}

	msg, err := r.message(ctx, event)
	if err != nil {
		r.metrics.inc(name, "failed")
		r.logger.ErrorContext(ctx, "failed to encode event for relay", "event", name, "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.producer.Produce(ctx, msg); err != nil {
		r.metrics.inc(name, "failed")
		if t := r.breaker.RecordFailure(); t.Opened {
			r.logger.ErrorContext(ctx, "notification relay circuit opened",
				"circuit", r.breaker.Name(),
				"error", err,
			)
		} else {
			r.logger.WarnContext(ctx, "failed to relay event", "event", name, "error", err)
		}
		return nil
	}

	if t := r.breaker.RecordSuccess(); t.Closed {
		r.logger.InfoContext(ctx, "notification relay circuit closed", "circuit", r.breaker.Name())
	}
	r.metrics.inc(name, "ok")
	return nil
}

func (r *Relay) message(ctx context.Context, event events.Event) (*producer.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event.EventName(), err)
	}
	value, err := json.Marshal(Envelope{
		Event:      event.EventName(),
		OccurredAt: event.OccurredAt(),
		RequestID:  requestcontext.RequestID(ctx),
		Payload:    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	msg := &producer.Message{
		Topic:   r.topic,
		Value:   value,
		Headers: map[string]string{"event": event.EventName()},
	}
	if keyed, ok := event.(events.Keyed); ok {
		msg.Key = []byte(keyed.PartitionKey())
	}
	return msg, nil
}
