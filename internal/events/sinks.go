package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/vinayprograms/butler/internal/logging"
)

// LogSink writes events to the structured logger.
type LogSink struct {
	Logger *logging.Logger
}

func (s *LogSink) Emit(ev Event) {
	log := s.Logger
	if ev.Trace.TraceID != "" {
		log = log.WithTraceID(ev.Trace.TraceID)
	}
	switch {
	case ev.Plan != nil:
		log.PlanReady(ev.Plan.Source, ev.Plan.StepCount)
	case ev.ToolCall != nil:
		log.ToolCall(ev.ToolCall.Capability)
	case ev.Step != nil:
		var err error
		if ev.Step.Error != "" {
			err = errors.New(ev.Step.Error)
		}
		log.StepResult(ev.Step.StepID, ev.Step.Action, ev.Step.Status,
			time.Duration(ev.Step.DurationMs)*time.Millisecond, err)
	case ev.Supervisor != nil:
		log.SupervisorVerdict(ev.Supervisor.Stage, ev.Supervisor.StepID, ev.Supervisor.Outcome, ev.Supervisor.Comments)
	case ev.UserFacing != nil:
		log.Info(ev.UserFacing.Message)
	}
}

// NATSSink publishes events as JSON to <prefix>.events.<type>. Publish
// failures are logged, never propagated; the event stream is best-effort
// by contract.
type NATSSink struct {
	conn   *nats.Conn
	prefix string
	logger *logging.Logger
}

// NewNATSSink wraps an established NATS connection.
func NewNATSSink(conn *nats.Conn, prefix string, logger *logging.Logger) *NATSSink {
	return &NATSSink{conn: conn, prefix: prefix, logger: logger.WithComponent("events")}
}

func (s *NATSSink) Emit(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Warn("failed to encode event", map[string]interface{}{"type": ev.Type, "error": err.Error()})
		return
	}
	subject := s.prefix + ".events." + ev.Type
	if err := s.conn.Publish(subject, data); err != nil {
		s.logger.Warn("failed to publish event", map[string]interface{}{"subject": subject, "error": err.Error()})
	}
}
