// Package tracer is the small tracing abstraction services depend on.
// NoopTracer serves tests; OTelTracer adapts OpenTelemetry for the server.
package tracer

import "context"

// Span is an active trace span. End must be called exactly once.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to a span.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute { return Attribute{Key: key, Value: value} }
func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }
func Int(key string, value int) Attribute   { return Attribute{Key: key, Value: value} }

// Span names.
const (
	SpanInspectionConfigure = "inspection.configure"
	SpanInspectionReserve   = "inspection.reserve"
	SpanInspectionCancel    = "inspection.cancel"
	SpanApplicationSubmit   = "application.submit"
	SpanApplicationDecide   = "application.transition"
	SpanApplicationBatch    = "application.batch"
	SpanApplicationReset    = "application.reset"
	SpanListingReconcile    = "listing.reconcile"
	SpanGatingSnapshot      = "gating.snapshot"
)

// Attribute keys.
const (
	AttrPropertyID      = "property.id"
	AttrApplicationID   = "application.id"
	AttrInspectionIndex = "inspection.index"
	AttrAction          = "transition.action"
	AttrFrom            = "transition.from"
	AttrTo              = "transition.to"
	AttrBatchSize       = "batch.size"
	AttrBatchFailed     = "batch.failed"
	AttrIdempotent      = "reservation.idempotent"
	AttrShared          = "snapshot.shared"
)
