package audit

import (
	"context"
	"log/slog"
	"sync"

	"lettings/pkg/requestcontext"
)

// Publisher records audit events. It logs each one with log_type=audit and
// persists it either inline or through a bounded background buffer.
type Publisher struct {
	store  Store
	logger *slog.Logger
	events chan Event
	wg     sync.WaitGroup
	async  bool
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer persists events on a background goroutine. A full buffer
// drops the event (it is still logged) rather than blocking the caller.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"property_id", event.PropertyID.String(),
			)
		}
	}
}

// Close drains the async buffer.
func (p *Publisher) Close() {
	if p.async {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit enriches event from the request context (actor, request ID, device,
// timestamp) and records it. Audit failures never fail the caller's operation;
// they are logged.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if actor, ok := requestcontext.Actor(ctx); ok && event.ActorID.IsNil() {
		event.ActorID = actor.ID
		event.ActorRole = actor.Role
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.Device(ctx)
	}

	if p.logger != nil {
		p.logger.InfoContext(ctx, string(event.Action),
			"log_type", "audit",
			"actor_id", event.ActorID.String(),
			"actor_role", string(event.ActorRole),
			"property_id", event.PropertyID.String(),
			"subject", event.Subject,
			"from", event.From,
			"to", event.To,
			"device", event.Device,
		)
	}

	if p.async {
		select {
		case p.events <- event:
		default:
			if p.logger != nil {
				p.logger.WarnContext(ctx, "audit buffer full, event dropped", "action", event.Action)
			}
		}
		return
	}
	if err := p.store.Append(ctx, event); err != nil && p.logger != nil {
		p.logger.ErrorContext(ctx, "failed to persist audit event", "error", err, "action", event.Action)
	}
}
