package events

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/vinayprograms/butler/internal/logging"
)

type countingSink struct{ n int }

func (c *countingSink) Emit(Event) { c.n++ }

func TestMulti_FansOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := Multi{a, b}
	m.Emit(Event{Type: TypeStep})
	m.Emit(Event{Type: TypePlan})
	if a.n != 2 || b.n != 2 {
		t.Errorf("expected both sinks to see both events, got %d and %d", a.n, b.n)
	}
}

func TestLogSink_FormatsEachKind(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New()
	logger.SetOutput(&buf)
	sink := &LogSink{Logger: logger}

	now := time.Now()
	sink.Emit(Event{Type: TypePlan, Timestamp: now, Plan: &PlanEvent{Source: "planner", StepCount: 2}})
	sink.Emit(Event{Type: TypeToolCall, Timestamp: now, ToolCall: &ToolCallEvent{Capability: "clock"}})
	sink.Emit(Event{Type: TypeStep, Timestamp: now, Step: &StepEvent{StepID: "s1", Action: "clock", Status: "ok", DurationMs: 4, Attempt: 1}})
	sink.Emit(Event{Type: TypeSupervisor, Timestamp: now, Supervisor: &SupervisorEvent{Stage: "step", Outcome: "ok"}})
	sink.Emit(Event{Type: TypeUserFacing, Timestamp: now, UserFacing: &UserFacingEvent{Message: "all done"}})

	out := buf.String()
	for _, want := range []string{"plan_ready", "tool_call", "step_result", "supervisor_verdict", "all done"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestLogSink_StepErrorLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New()
	logger.SetOutput(&buf)
	sink := &LogSink{Logger: logger}

	sink.Emit(Event{Type: TypeStep, Step: &StepEvent{StepID: "s1", Action: "flaky", Status: "error", Error: "boom"}})
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("step error missing from %q", buf.String())
	}
}
