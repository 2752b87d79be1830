// Package logging provides structured, standards-compliant logging.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Logger provides structured logging to stdout.
type Logger struct {
	mu        *sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	traceID   string
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		mu:       &sync.Mutex{},
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		mu:        l.mu,
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		traceID:   l.traceID,
	}
}

// WithTraceID returns a new logger with the given trace ID. Every line it
// writes carries the ID so concurrent dispatches can be separated.
func (l *Logger) WithTraceID(traceID string) *Logger {
	return &Logger{
		mu:        l.mu,
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		traceID:   traceID,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as sorted key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}
	if l.traceID != "" {
		fieldStr += " trace=" + l.traceID
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Dispatch lifecycle helpers ---

// DispatchStart logs the start of a dispatch request.
func (l *Logger) DispatchStart(requestID, contextID string) {
	l.Info("dispatch_start", map[string]interface{}{
		"request": requestID,
		"context": contextID,
	})
}

// DispatchComplete logs the completion of a dispatch request.
func (l *Logger) DispatchComplete(requestID, status string, duration time.Duration) {
	l.Info("dispatch_complete", map[string]interface{}{
		"request":  requestID,
		"status":   status,
		"duration": duration.String(),
	})
}

// FastPathHit logs a fast-path rule firing.
func (l *Logger) FastPathHit(capability, description string) {
	l.Info("fast_path_hit", map[string]interface{}{
		"capability":  capability,
		"description": description,
	})
}

// PlanReady logs a plan entering execution.
func (l *Logger) PlanReady(source string, steps int) {
	l.Info("plan_ready", map[string]interface{}{
		"source": source,
		"steps":  steps,
	})
}

// StepResult logs a step's terminal status.
func (l *Logger) StepResult(stepID, action, status string, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"step":     stepID,
		"action":   action,
		"status":   status,
		"duration": duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Error("step_result", fields)
		return
	}
	l.Info("step_result", fields)
}

// SupervisorVerdict logs a supervisor decision for forensic analysis.
func (l *Logger) SupervisorVerdict(stage, stepID, outcome, comments string) {
	l.Info("supervisor_verdict", map[string]interface{}{
		"stage":    stage,
		"step":     stepID,
		"outcome":  outcome,
		"comments": comments,
	})
}

// ToolCall logs a capability invocation. Arguments are not logged to
// avoid leaking message content.
func (l *Logger) ToolCall(capability string) {
	l.Info("tool_call", map[string]interface{}{
		"capability": capability,
	})
}
