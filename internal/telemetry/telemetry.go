// Package telemetry provides trace context propagation for dispatch.
package telemetry

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceContext is the correlation identifier pair attached to every
// decision and event produced while handling one dispatch request.
type TraceContext struct {
	TraceID string `json:"trace_id"`
	SpanID  string `json:"span_id"`
}

// Valid reports whether both identifiers are set.
func (tc TraceContext) Valid() bool {
	return tc.TraceID != "" && tc.SpanID != ""
}

var tracer = otel.Tracer("butler")

type ctxKey int

const fallbackKey ctxKey = iota

// WithDispatch returns a context carrying a correlation identity for one
// dispatch request. When an OTel SDK is installed the span context already
// provides one; otherwise a uuid-derived pair is attached so events from
// concurrent dispatches stay separable in logs.
func WithDispatch(ctx context.Context) context.Context {
	if trace.SpanContextFromContext(ctx).IsValid() {
		return ctx
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return context.WithValue(ctx, fallbackKey, TraceContext{
		TraceID: id,
		SpanID:  id[:16],
	})
}

// Current returns the active trace identifiers. Queried at every event
// emission point; never fails, but may return an empty pair when the
// context predates WithDispatch.
func Current(ctx context.Context) TraceContext {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return TraceContext{
			TraceID: sc.TraceID().String(),
			SpanID:  sc.SpanID().String(),
		}
	}
	if tc, ok := ctx.Value(fallbackKey).(TraceContext); ok {
		return tc
	}
	return TraceContext{}
}

// StartSpan starts a named span with the given attributes.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

// EndSpan ends a span, recording the error if one occurred.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
