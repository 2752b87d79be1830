package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func newTestLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	return l, &buf
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newTestLogger()
	l.SetLevel(LevelWarn)

	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")

	out := buf.String()
	if strings.Contains(out, "debug msg") || strings.Contains(out, "info msg") {
		t.Errorf("low-severity messages should be filtered, got %q", out)
	}
	if !strings.Contains(out, "warn msg") {
		t.Errorf("warn message missing from %q", out)
	}
}

func TestLogger_FieldsSorted(t *testing.T) {
	l, buf := newTestLogger()
	l.Info("msg", map[string]interface{}{"zebra": 1, "alpha": 2})

	out := buf.String()
	if strings.Index(out, "alpha=2") > strings.Index(out, "zebra=1") {
		t.Errorf("fields should be sorted by key, got %q", out)
	}
}

func TestLogger_Component(t *testing.T) {
	l, buf := newTestLogger()
	l.WithComponent("dispatch").Info("hello")
	if !strings.Contains(buf.String(), "[dispatch]") {
		t.Errorf("component missing from %q", buf.String())
	}
}

func TestLogger_TraceIDSuffix(t *testing.T) {
	l, buf := newTestLogger()
	l.WithTraceID("abc123").Info("hello")
	if !strings.Contains(buf.String(), "trace=abc123") {
		t.Errorf("trace id missing from %q", buf.String())
	}
}

func TestLogger_DerivedLoggersShareOutput(t *testing.T) {
	l, buf := newTestLogger()
	derived := l.WithComponent("a").WithTraceID("t1")
	derived.Info("hi")
	if buf.Len() == 0 {
		t.Error("derived logger should write to the parent's output")
	}
}

func TestLogger_DispatchHelpers(t *testing.T) {
	l, buf := newTestLogger()
	l.DispatchStart("req1", "ctx1")
	l.FastPathHit("clock", "time shortcut")
	l.PlanReady("planner", 3)
	l.StepResult("s1", "clock", "ok", 5*time.Millisecond, nil)
	l.SupervisorVerdict("step", "s1", "ok", "")
	l.ToolCall("clock")
	l.DispatchComplete("req1", "complete", 12*time.Millisecond)

	out := buf.String()
	for _, want := range []string{"dispatch_start", "fast_path_hit", "plan_ready", "step_result", "supervisor_verdict", "tool_call", "dispatch_complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in log output", want)
		}
	}
}
