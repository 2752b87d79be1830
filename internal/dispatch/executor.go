package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/vinayprograms/butler/internal/capability"
	"github.com/vinayprograms/butler/internal/events"
	"github.com/vinayprograms/butler/internal/plan"
	"github.com/vinayprograms/butler/internal/session"
	"github.com/vinayprograms/butler/internal/telemetry"
)

// StepExecutor runs a single plan step against the capability registry.
// It is the error boundary for capability execution: lookup failures,
// returned errors and panics all land in the step's terminal status, never
// in the dispatch's error return.
type StepExecutor struct {
	registry capability.Lookup
	sink     events.Sink
}

// NewStepExecutor creates an executor over the given registry.
func NewStepExecutor(registry capability.Lookup, sink events.Sink) *StepExecutor {
	return &StepExecutor{registry: registry, sink: sink}
}

// Execute runs one attempt of a step, mutating its status, output and
// error in place. attempt is 1 for the first execution, 2 for a
// supervisor-requested redo.
func (e *StepExecutor) Execute(ctx context.Context, step *plan.Step, attempt int, contextID string, sess *session.Session) {
	tc := telemetry.Current(ctx)
	step.Status = plan.StatusInProgress

	e.sink.Emit(events.Event{
		Type:      events.TypeToolCall,
		Timestamp: time.Now(),
		Trace:     tc,
		ToolCall:  &events.ToolCallEvent{Capability: step.Action, Args: step.Args},
	})
	if sess != nil {
		sess.Record(session.Event{
			Type:       session.EventToolCall,
			TraceID:    tc.TraceID,
			SpanID:     tc.SpanID,
			StepID:     step.ID,
			Capability: step.Action,
		})
	}

	start := time.Now()
	output, err := e.run(ctx, step, contextID, sess)
	duration := time.Since(start)

	if err != nil {
		step.Status = plan.StatusError
		step.Error = err.Error()
	} else {
		step.Status = plan.StatusOK
		step.Output = output
	}

	e.sink.Emit(events.Event{
		Type:      events.TypeStep,
		Timestamp: time.Now(),
		Trace:     tc,
		Step: &events.StepEvent{
			StepID:     step.ID,
			Label:      step.Label,
			Action:     step.Action,
			Status:     string(step.Status),
			Output:     step.Output,
			Error:      step.Error,
			DurationMs: duration.Milliseconds(),
			Attempt:    attempt,
		},
	})
	if sess != nil {
		sess.Record(session.Event{
			Type:       session.EventStep,
			TraceID:    tc.TraceID,
			SpanID:     tc.SpanID,
			StepID:     step.ID,
			Capability: step.Action,
			Content:    step.Output,
			Status:     string(step.Status),
			Error:      step.Error,
			DurationMs: duration.Milliseconds(),
		})
	}
}

// run resolves and invokes the capability, converting panics into errors.
func (e *StepExecutor) run(ctx context.Context, step *plan.Step, contextID string, sess *session.Session) (output string, err error) {
	cap, ok := e.registry.Get(step.Action)
	if !ok {
		return "", fmt.Errorf("unknown capability: %s", step.Action)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("capability %s panicked: %v", step.Action, r)
		}
	}()

	return cap.Run(ctx, capability.Invocation{
		Args:      step.Args,
		ContextID: contextID,
		Session:   sess,
	})
}
