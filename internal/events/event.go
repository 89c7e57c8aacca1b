// Package events is the in-process bus that connects the tracker to the
// listing controller (synchronous, error-propagating) and to best-effort
// observers such as the notification relay (asynchronous).
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// Keyed events carry the property they concern so relays can partition by it.
type Keyed interface {
	PartitionKey() string
}

// BaseEvent provides the timestamp half of Event.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

func NewBaseEvent(at time.Time) BaseEvent {
	return BaseEvent{Timestamp: at}
}

// Handler processes one event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to subscribers.
type Bus interface {
	// PublishSync runs the synchronous subscribers for event in registration
	// order and returns their joined errors, then hands the event to the
	// asynchronous observers.
	PublishSync(ctx context.Context, event Event) error

	// Publish only notifies asynchronous observers.
	Publish(ctx context.Context, event Event)

	// Subscribe registers a synchronous handler for one event name.
	Subscribe(eventName string, handler Handler)

	// Observe registers a best-effort asynchronous handler. An empty
	// eventName observes every event.
	Observe(eventName string, handler Handler)
}
