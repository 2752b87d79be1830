// Package dispatch implements the message dispatch pipeline: fast-path
// check, plan acquisition, supervised step execution and response
// assembly.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vinayprograms/butler/internal/capability"
	"github.com/vinayprograms/butler/internal/events"
	"github.com/vinayprograms/butler/internal/fastpath"
	"github.com/vinayprograms/butler/internal/logging"
	"github.com/vinayprograms/butler/internal/plan"
	"github.com/vinayprograms/butler/internal/planner"
	"github.com/vinayprograms/butler/internal/session"
	"github.com/vinayprograms/butler/internal/supervision"
	"github.com/vinayprograms/butler/internal/telemetry"
)

// Request carries per-message routing inputs beyond the text itself.
type Request struct {
	ContextID string
}

// DispatchResult is the outcome of one dispatch. Plan is nil when a
// fast-path rule handled the message; SkillName then names the capability
// that ran.
type DispatchResult struct {
	RequestID string     `json:"request_id"`
	Message   string     `json:"message"`
	SkillName string     `json:"skill_name,omitempty"`
	Plan      *plan.Plan `json:"plan,omitempty"`
	Reply     string     `json:"reply"`
	Aborted   bool       `json:"aborted,omitempty"`
}

// Config wires a Dispatcher. Registry and Router are required; everything
// else has a working default.
type Config struct {
	Registry       capability.Lookup
	Router         *fastpath.Router
	Planner        planner.Planner
	PlanSupervisor supervision.PlanSupervisor
	StepSupervisor supervision.StepSupervisor
	Sessions       *session.Provider
	Sink           events.Sink
	Assembler      ResponseAssembler
	Logger         *logging.Logger
}

// Dispatcher routes inbound messages to capability executions.
type Dispatcher struct {
	registry capability.Lookup
	router   *fastpath.Router
	planner  planner.Planner
	planSup  supervision.PlanSupervisor
	stepSup  supervision.StepSupervisor
	sessions *session.Provider
	sink     events.Sink
	assemble ResponseAssembler
	exec     *StepExecutor
	logger   *logging.Logger
}

// New creates a Dispatcher, filling in defaults for unset optional
// components.
func New(cfg Config) *Dispatcher {
	if cfg.PlanSupervisor == nil {
		cfg.PlanSupervisor = supervision.ApproveAllPlans{}
	}
	if cfg.StepSupervisor == nil {
		cfg.StepSupervisor = supervision.StatusStepSupervisor{}
	}
	if cfg.Sink == nil {
		cfg.Sink = events.Discard{}
	}
	if cfg.Assembler == nil {
		cfg.Assembler = DefaultAssembler{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New()
	}
	if cfg.Router == nil {
		cfg.Router = fastpath.NewRouter()
	}
	return &Dispatcher{
		registry: cfg.Registry,
		router:   cfg.Router,
		planner:  cfg.Planner,
		planSup:  cfg.PlanSupervisor,
		stepSup:  cfg.StepSupervisor,
		sessions: cfg.Sessions,
		sink:     cfg.Sink,
		assemble: cfg.Assembler,
		exec:     NewStepExecutor(cfg.Registry, cfg.Sink),
		logger:   cfg.Logger.WithComponent("dispatch"),
	}
}

// Dispatch processes one inbound message to completion. The only errors it
// returns are planning failures; capability failures are reflected in step
// statuses and the assembled reply instead.
func (d *Dispatcher) Dispatch(ctx context.Context, message string, req Request) (*DispatchResult, error) {
	ctx = telemetry.WithDispatch(ctx)
	ctx, span := telemetry.StartSpan(ctx, "dispatch")
	tc := telemetry.Current(ctx)
	log := d.logger.WithTraceID(tc.TraceID)

	result := &DispatchResult{
		RequestID: uuid.NewString(),
		Message:   message,
	}

	var sess *session.Session
	release := func() {}
	if d.sessions != nil {
		var err error
		sess, release, err = d.sessions.Acquire(req.ContextID, message)
		if err != nil {
			// Run without a record rather than refuse the message.
			log.Warn("session unavailable", map[string]interface{}{"error": err.Error()})
			sess, release = nil, func() {}
		}
	}
	defer release()

	start := time.Now()
	log.DispatchStart(result.RequestID, req.ContextID)
	if sess != nil {
		sess.Record(session.Event{
			Type:    session.EventDispatchStart,
			TraceID: tc.TraceID,
			SpanID:  tc.SpanID,
			Content: message,
		})
	}

	// Fast path: first matching rule wins, planner is never consulted.
	if m, ok := d.router.Match(message); ok {
		result.SkillName = m.Entry.Capability
		log.FastPathHit(m.Entry.Capability, m.Entry.Description)
		if sess != nil {
			sess.Record(session.Event{
				Type:       session.EventFastPath,
				TraceID:    tc.TraceID,
				SpanID:     tc.SpanID,
				Capability: m.Entry.Capability,
				Content:    m.Entry.Description,
			})
		}

		pl := &plan.Plan{
			Description: m.Entry.Description,
			Steps:       []*plan.Step{plan.NewStep(ctx, m.Entry.Description, m.Entry.Capability, m.Args())},
		}
		_, result.Reply, result.Aborted = d.reviewAndRun(ctx, pl, "fast_path", req, sess)
		d.finish(ctx, sess, result, log, start)
		telemetry.EndSpan(span, nil)
		return result, nil
	}

	// Planning path.
	if d.planner == nil {
		err := &planner.PlanningError{Err: fmt.Errorf("no planner configured")}
		d.fail(sess, result, log, start, err)
		telemetry.EndSpan(span, err)
		return nil, err
	}
	pl, err := d.planner.Plan(ctx, message, planner.Context{
		ContextID:    req.ContextID,
		Capabilities: d.registry.Available(),
	})
	if err != nil {
		d.fail(sess, result, log, start, err)
		telemetry.EndSpan(span, err)
		return nil, err
	}

	result.Plan, result.Reply, result.Aborted = d.reviewAndRun(ctx, pl, "planner", req, sess)
	d.finish(ctx, sess, result, log, start)
	telemetry.EndSpan(span, nil)
	return result, nil
}

// reviewAndRun gates a plan through the plan supervisor and, on approval,
// runs its steps. No step runs before approval; a rejected plan ends with
// every step skipped.
func (d *Dispatcher) reviewAndRun(ctx context.Context, pl *plan.Plan, source string, req Request, sess *session.Session) (*plan.Plan, string, bool) {
	reviewed, decision := d.planSup.Review(ctx, pl)
	d.recordVerdict(ctx, sess, "plan", "", decision)
	if decision.Outcome == supervision.OutcomeAbort {
		pl.MarkRemainingSkipped(-1)
		return pl, d.assemble.Assemble(pl, true), true
	}
	if reviewed != nil {
		pl = reviewed
	}

	d.announcePlan(ctx, sess, source, pl)
	aborted := d.runSteps(ctx, pl, req, sess)
	return pl, d.assemble.Assemble(pl, aborted), aborted
}

// runSteps executes plan steps strictly in order, reviewing each result
// before the next step starts. A redo verdict grants exactly one
// re-execution; a second redo on the same step is treated as abort.
// Returns true when the plan was aborted.
func (d *Dispatcher) runSteps(ctx context.Context, pl *plan.Plan, req Request, sess *session.Session) bool {
	for i, step := range pl.Steps {
		if step.Status.Terminal() {
			continue
		}

		d.exec.Execute(ctx, step, 1, req.ContextID, sess)
		decision := d.stepSup.Review(ctx, step)
		d.recordVerdict(ctx, sess, "step", step.ID, decision)

		if decision.Outcome == supervision.OutcomeRedo {
			step.Status = plan.StatusPending
			step.Output = ""
			step.Error = ""
			d.exec.Execute(ctx, step, 2, req.ContextID, sess)
			decision = d.stepSup.Review(ctx, step)
			d.recordVerdict(ctx, sess, "step", step.ID, decision)
			if decision.Outcome == supervision.OutcomeRedo {
				decision.Outcome = supervision.OutcomeAbort
			}
		}

		if decision.Outcome == supervision.OutcomeAbort {
			pl.MarkRemainingSkipped(i)
			return true
		}
		// Adjust is advisory: the verdict is on record, execution continues.
	}
	return false
}

// announcePlan emits the plan event to the sink and the session log.
func (d *Dispatcher) announcePlan(ctx context.Context, sess *session.Session, source string, pl *plan.Plan) {
	tc := telemetry.Current(ctx)
	d.sink.Emit(events.Event{
		Type:      events.TypePlan,
		Timestamp: time.Now(),
		Trace:     tc,
		Plan: &events.PlanEvent{
			Source:      source,
			Description: pl.Description,
			StepCount:   len(pl.Steps),
		},
	})
	if sess != nil {
		sess.Record(session.Event{
			Type:    session.EventPlan,
			TraceID: tc.TraceID,
			SpanID:  tc.SpanID,
			Content: pl.Description,
			Status:  source,
		})
	}
}

// recordVerdict emits a supervisor verdict to the sink and the session log.
func (d *Dispatcher) recordVerdict(ctx context.Context, sess *session.Session, stage, stepID string, decision supervision.Decision) {
	tc := telemetry.Current(ctx)
	d.sink.Emit(events.Event{
		Type:      events.TypeSupervisor,
		Timestamp: time.Now(),
		Trace:     tc,
		Supervisor: &events.SupervisorEvent{
			Stage:    stage,
			StepID:   stepID,
			Outcome:  string(decision.Outcome),
			Comments: decision.Comments,
		},
	})
	if sess != nil {
		sess.Record(session.Event{
			Type:    session.EventSupervisor,
			TraceID: tc.TraceID,
			SpanID:  tc.SpanID,
			StepID:  stepID,
			Content: decision.Comments,
			Status:  string(decision.Outcome),
		})
	}
}

// finish closes out a completed (possibly aborted) dispatch.
func (d *Dispatcher) finish(ctx context.Context, sess *session.Session, result *DispatchResult, log *logging.Logger, start time.Time) {
	tc := telemetry.Current(ctx)
	d.sink.Emit(events.Event{
		Type:       events.TypeUserFacing,
		Timestamp:  time.Now(),
		Trace:      tc,
		RequestID:  result.RequestID,
		UserFacing: &events.UserFacingEvent{Message: result.Reply},
	})

	status := session.StatusComplete
	if result.Aborted {
		status = session.StatusAborted
	}
	if sess != nil {
		sess.Record(session.Event{
			Type:    session.EventUserFacing,
			TraceID: tc.TraceID,
			SpanID:  tc.SpanID,
			Content: result.Reply,
		})
		sess.Record(session.Event{
			Type:    session.EventDispatchEnd,
			TraceID: tc.TraceID,
			SpanID:  tc.SpanID,
			Status:  status,
		})
		sess.Finish(status, result.Reply, "")
	}
	log.DispatchComplete(result.RequestID, status, time.Since(start))
}

// fail closes out a dispatch that could not acquire a plan.
func (d *Dispatcher) fail(sess *session.Session, result *DispatchResult, log *logging.Logger, start time.Time, err error) {
	if sess != nil {
		sess.Record(session.Event{
			Type:   session.EventDispatchEnd,
			Status: session.StatusFailed,
			Error:  err.Error(),
		})
		sess.Finish(session.StatusFailed, "", err.Error())
	}
	log.Error("dispatch failed", map[string]interface{}{
		"request": result.RequestID,
		"error":   err.Error(),
	})
	log.DispatchComplete(result.RequestID, session.StatusFailed, time.Since(start))
}
