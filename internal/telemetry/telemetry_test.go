package telemetry

import (
	"context"
	"testing"
)

func TestWithDispatch_FallbackPair(t *testing.T) {
	ctx := WithDispatch(context.Background())
	tc := Current(ctx)
	if !tc.Valid() {
		t.Fatal("expected a valid trace context without an OTel SDK")
	}
	if len(tc.TraceID) != 32 {
		t.Errorf("expected 32-hex trace id, got %q", tc.TraceID)
	}
	if len(tc.SpanID) != 16 {
		t.Errorf("expected 16-hex span id, got %q", tc.SpanID)
	}
}

func TestWithDispatch_DistinctPerDispatch(t *testing.T) {
	a := Current(WithDispatch(context.Background()))
	b := Current(WithDispatch(context.Background()))
	if a.TraceID == b.TraceID {
		t.Error("concurrent dispatches must get distinct trace ids")
	}
}

func TestCurrent_NoDispatch(t *testing.T) {
	tc := Current(context.Background())
	if tc.Valid() {
		t.Error("context without dispatch identity should yield an empty pair")
	}
}

func TestTraceContext_Valid(t *testing.T) {
	if (TraceContext{TraceID: "x"}).Valid() {
		t.Error("pair with missing span id must be invalid")
	}
	if !(TraceContext{TraceID: "x", SpanID: "y"}).Valid() {
		t.Error("complete pair must be valid")
	}
}
