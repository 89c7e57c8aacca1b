package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	newCtx, span := NewNoop().Start(ctx, SpanInspectionReserve, String(AttrPropertyID, "p1"))
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)
	span.SetAttributes(Bool(AttrIdempotent, true))
	span.AddEvent("reserved")
	span.End(errors.New("already booked"))
}

func TestOTelTracer_WithInjectedProvider(t *testing.T) {
	tr := NewOTel(WithOTelTracer(noop.NewTracerProvider().Tracer("test")))
	_, span := tr.Start(context.Background(), SpanApplicationBatch, Int(AttrBatchSize, 3))
	span.SetAttributes(Int(AttrBatchFailed, 1))
	span.End(nil)
}

func TestToOTel(t *testing.T) {
	got := toOTel([]Attribute{
		String("s", "v"),
		Bool("b", true),
		Int("i", 7),
		{Key: "other", Value: 1.5},
	})
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("s", "v"),
		attribute.Bool("b", true),
		attribute.Int("i", 7),
		attribute.String("other", "1.5"),
	}, got)
	assert.Nil(t, toOTel(nil))
}
