// Package events defines the observable dispatch event stream and its
// sinks. Every notable transition in a dispatch (plan ready, step done,
// supervisor verdict, user-facing message) is emitted as one Event; sinks
// decide where it goes.
package events

import (
	"time"

	"github.com/vinayprograms/butler/internal/telemetry"
)

// Event types.
const (
	TypePlan       = "plan"
	TypeToolCall   = "tool_call"
	TypeStep       = "step"
	TypeSupervisor = "supervisor"
	TypeUserFacing = "user_facing"
)

// Event is one observable dispatch transition. Exactly one payload pointer
// is set, matching Type.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`

	Trace telemetry.TraceContext `json:"trace,omitempty"`

	Plan       *PlanEvent       `json:"plan,omitempty"`
	ToolCall   *ToolCallEvent   `json:"tool_call,omitempty"`
	Step       *StepEvent       `json:"step,omitempty"`
	Supervisor *SupervisorEvent `json:"supervisor,omitempty"`
	UserFacing *UserFacingEvent `json:"user_facing,omitempty"`
}

// PlanEvent announces an approved plan. Source is "fast_path" or "planner".
type PlanEvent struct {
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
	StepCount   int    `json:"step_count"`
}

// ToolCallEvent announces a capability invocation about to run.
type ToolCallEvent struct {
	Capability string                 `json:"capability"`
	Args       map[string]interface{} `json:"args,omitempty"`
}

// StepEvent reports a finished step execution attempt.
type StepEvent struct {
	StepID     string `json:"step_id"`
	Label      string `json:"label,omitempty"`
	Action     string `json:"action"`
	Status     string `json:"status"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Attempt    int    `json:"attempt"`
}

// SupervisorEvent reports a review verdict. Stage is "plan" or "step".
type SupervisorEvent struct {
	Stage    string `json:"stage"`
	StepID   string `json:"step_id,omitempty"`
	Outcome  string `json:"outcome"`
	Comments string `json:"comments,omitempty"`
}

// UserFacingEvent carries text destined for the requester.
type UserFacingEvent struct {
	Message string `json:"message"`
}

// Sink receives dispatch events. Emit must not block dispatch on slow
// consumers and must never fail the dispatch; sinks swallow their own
// delivery errors.
type Sink interface {
	Emit(ev Event)
}

// Multi fans one event out to several sinks in order.
type Multi []Sink

func (m Multi) Emit(ev Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}

// Discard drops all events.
type Discard struct{}

func (Discard) Emit(Event) {}
