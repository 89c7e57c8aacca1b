package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts deliveries per event and outcome.
type Metrics struct {
	Deliveries *prometheus.CounterVec
	Dropped    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lettings_event_deliveries_total",
			Help: "Event deliveries by event name, mode and outcome",
		}, []string{"event", "mode", "outcome"}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "lettings_event_observer_dropped_total",
			Help: "Asynchronous deliveries dropped because the observer queue was full",
		}),
	}
}

func (m *Metrics) delivered(event, mode string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Deliveries.WithLabelValues(event, mode, outcome).Inc()
}

type asyncDelivery struct {
	ctx     context.Context
	event   Event
	handler Handler
}

// InMemoryBus is the process-local Bus. Observers run on a fixed worker
// pool fed by a bounded queue; when the queue is full the delivery is
// dropped and counted rather than blocking the publisher.
type InMemoryBus struct {
	logger  *slog.Logger
	metrics *Metrics

	mu        sync.RWMutex
	sync      map[string][]Handler
	observers map[string][]Handler

	queue     chan asyncDelivery
	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    chan struct{}
	// shut is set under mu; enqueues happen under mu's read lock, so nothing
	// reaches the queue once workers start their final drain.
	shut bool
}

type Option func(*InMemoryBus)

func WithLogger(logger *slog.Logger) Option {
	return func(b *InMemoryBus) { b.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(b *InMemoryBus) { b.metrics = m }
}

// NewInMemoryBus starts workers observer goroutines draining a queue of
// size buffer.
func NewInMemoryBus(workers, buffer int, opts ...Option) *InMemoryBus {
	if workers < 1 {
		workers = 1
	}
	b := &InMemoryBus{
		logger:    slog.Default(),
		sync:      make(map[string][]Handler),
		observers: make(map[string][]Handler),
		queue:     make(chan asyncDelivery, buffer),
		closed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	for range workers {
		b.wg.Add(1)
		go b.work()
	}
	return b
}

func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sync[eventName] = append(b.sync[eventName], handler)
}

func (b *InMemoryBus) Observe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers[eventName] = append(b.observers[eventName], handler)
}

func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.sync[event.EventName()]...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		err := b.safeHandle(ctx, h, event)
		b.metrics.delivered(event.EventName(), "sync", err)
		if err != nil {
			errs = append(errs, err)
		}
	}
	b.Publish(ctx, event)
	return errors.Join(errs...)
}

func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	handlers := append([]Handler(nil), b.observers[event.EventName()]...)
	handlers = append(handlers, b.observers[""]...)

	if b.shut {
		b.drop(ctx, event, len(handlers), "event bus closed, dropping delivery")
		return
	}

	// Observers outlive the request; keep its values but drop its deadline.
	detached := context.WithoutCancel(ctx)
	for _, h := range handlers {
		select {
		case b.queue <- asyncDelivery{ctx: detached, event: event, handler: h}:
		default:
			b.drop(ctx, event, 1, "event observer queue full, dropping delivery")
		}
	}
}

func (b *InMemoryBus) drop(ctx context.Context, event Event, n int, msg string) {
	if n == 0 {
		return
	}
	if b.metrics != nil {
		b.metrics.Dropped.Add(float64(n))
	}
	b.logger.WarnContext(ctx, msg, "event", event.EventName(), "deliveries", n)
}

func (b *InMemoryBus) work() {
	defer b.wg.Done()
	for {
		select {
		case d := <-b.queue:
			b.deliver(d)
		case <-b.closed:
			// Drain what was accepted before Close.
			for {
				select {
				case d := <-b.queue:
					b.deliver(d)
				default:
					return
				}
			}
		}
	}
}

func (b *InMemoryBus) deliver(d asyncDelivery) {
	err := b.safeHandle(d.ctx, d.handler, d.event)
	b.metrics.delivered(d.event.EventName(), "async", err)
	if err != nil {
		b.logger.WarnContext(d.ctx, "event observer failed",
			"event", d.event.EventName(),
			"error", err,
		)
	}
}

func (b *InMemoryBus) safeHandle(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, event)
}

// Close stops accepting observer work and waits up to timeout for the
// queue to drain.
func (b *InMemoryBus) Close(timeout time.Duration) error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.shut = true
		b.mu.Unlock()
		close(b.closed)
	})
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("event bus close timed out after %s", timeout)
	}
}
