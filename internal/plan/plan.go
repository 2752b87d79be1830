// Package plan defines the plan and step model for one dispatch request.
//
// A Plan is created once per inbound message, either by the planner or
// synthesized by the fast-path router, lives for the duration of that
// message's processing, and is owned exclusively by the dispatch sequence
// that created it.
package plan

import (
	"context"

	"github.com/google/uuid"
	"github.com/vinayprograms/butler/internal/telemetry"
)

// StepStatus is the lifecycle status of a plan step.
type StepStatus string

const (
	StatusPending    StepStatus = "pending"
	StatusInProgress StepStatus = "in_progress"
	StatusOK         StepStatus = "ok"
	StatusError      StepStatus = "error"
	StatusSkipped    StepStatus = "skipped"
)

// Terminal reports whether the status is a final one.
func (s StepStatus) Terminal() bool {
	return s == StatusOK || s == StatusError || s == StatusSkipped
}

// Executor designators. Steps carry which execution strategy handles them;
// today everything runs through the capability executor.
const ExecutorCapability = "capability"

// Step is a single unit of work within a plan. Identity and action are
// immutable once the plan is approved; only Status, Output and Error
// change during execution.
type Step struct {
	ID       string                 `json:"id"`
	Label    string                 `json:"label"`
	Action   string                 `json:"action"`
	Args     map[string]interface{} `json:"args,omitempty"`
	Executor string                 `json:"executor"`
	Status   StepStatus             `json:"status"`
	Output   string                 `json:"output,omitempty"`
	Error    string                 `json:"error,omitempty"`

	// Trace is the trace context active when the step was created, so
	// post-hoc inspection can reconstruct causality.
	Trace telemetry.TraceContext `json:"trace"`
}

// NewStep creates a pending step for the given action, capturing the
// trace context active in ctx.
func NewStep(ctx context.Context, label, action string, args map[string]interface{}) *Step {
	return &Step{
		ID:       uuid.NewString(),
		Label:    label,
		Action:   action,
		Args:     args,
		Executor: ExecutorCapability,
		Status:   StatusPending,
		Trace:    telemetry.Current(ctx),
	}
}

// Plan is an ordered sequence of steps plus an optional description.
// Steps are never removed mid-execution, only marked terminal.
type Plan struct {
	Description string  `json:"description,omitempty"`
	Steps       []*Step `json:"steps"`
}

// MarkRemainingSkipped marks every non-terminal step after index from as
// skipped. Used when a supervisor aborts mid-plan.
func (p *Plan) MarkRemainingSkipped(from int) {
	for i := from + 1; i < len(p.Steps); i++ {
		if !p.Steps[i].Status.Terminal() {
			p.Steps[i].Status = StatusSkipped
		}
	}
}
