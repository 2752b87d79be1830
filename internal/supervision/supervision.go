// Package supervision provides the review gates around planning and step
// execution. Supervisors observe and veto; they never execute capabilities
// themselves.
package supervision

import (
	"context"

	"github.com/vinayprograms/butler/internal/plan"
	"github.com/vinayprograms/butler/internal/telemetry"
)

// Outcome is a supervisor's verdict on a plan or a step result.
type Outcome string

const (
	// OutcomeOK approves; execution proceeds.
	OutcomeOK Outcome = "ok"
	// OutcomeAdjust approves with advisory comments. Comments are recorded
	// and surfaced; they never mutate an already-executed step.
	OutcomeAdjust Outcome = "adjust"
	// OutcomeRedo requests one bounded re-execution of the reviewed step.
	// A redo verdict on the re-executed result is treated as abort.
	OutcomeRedo Outcome = "redo"
	// OutcomeAbort stops the plan; remaining steps are skipped.
	OutcomeAbort Outcome = "abort"
)

// Decision carries a supervisor's outcome plus optional commentary.
type Decision struct {
	Outcome  Outcome
	Comments string
	Trace    telemetry.TraceContext
}

// PlanSupervisor reviews a plan before any step runs. It may return a
// modified plan; returning the input unchanged approves it as-is.
type PlanSupervisor interface {
	Review(ctx context.Context, p *plan.Plan) (*plan.Plan, Decision)
}

// StepSupervisor reviews one executed step before the next one starts.
type StepSupervisor interface {
	Review(ctx context.Context, step *plan.Step) Decision
}

// ApproveAllPlans is the default plan supervisor: every plan passes
// through unmodified.
type ApproveAllPlans struct{}

func (ApproveAllPlans) Review(ctx context.Context, p *plan.Plan) (*plan.Plan, Decision) {
	return p, Decision{Outcome: OutcomeOK, Trace: telemetry.Current(ctx)}
}

// StatusStepSupervisor is the default step supervisor. A step that ran
// cleanly is approved; a failed step gets an advisory adjust verdict so the
// failure is recorded without aborting the rest of the plan.
type StatusStepSupervisor struct{}

func (StatusStepSupervisor) Review(ctx context.Context, step *plan.Step) Decision {
	d := Decision{Trace: telemetry.Current(ctx)}
	if step.Status == plan.StatusOK {
		d.Outcome = OutcomeOK
		return d
	}
	d.Outcome = OutcomeAdjust
	d.Comments = "step did not complete cleanly: " + step.Error
	return d
}
