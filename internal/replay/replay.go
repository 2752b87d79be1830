// Package replay provides session replay and visualization.
package replay

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vinayprograms/butler/internal/session"
)

// Replayer reads and formats dispatch session records for forensic
// analysis.
type Replayer struct {
	output  io.Writer
	verbose bool
}

// New creates a new Replayer.
func New(output io.Writer, verbose bool) *Replayer {
	return &Replayer{
		output:  output,
		verbose: verbose,
	}
}

// ReplayFile loads and replays a session from a JSONL file.
func (r *Replayer) ReplayFile(path string) error {
	sess, err := session.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	return r.Replay(sess)
}

// Replay outputs a formatted timeline of session events.
func (r *Replayer) Replay(sess *session.Session) error {
	fmt.Fprint(r.output, r.Render(sess))
	return nil
}

// Render produces the formatted timeline as a string, for the pager.
func (r *Replayer) Render(sess *session.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "╔══════════════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(&b, "║ SESSION: %-60s ║\n", sess.ID)
	fmt.Fprintf(&b, "╠══════════════════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(&b, "║ Context:  %-59s ║\n", sess.ContextID)
	fmt.Fprintf(&b, "║ Status:   %-59s ║\n", sess.Status)
	fmt.Fprintf(&b, "║ Created:  %-59s ║\n", sess.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "║ Message:  %-59s ║\n", truncate(sess.Message, 59))
	fmt.Fprintf(&b, "╚══════════════════════════════════════════════════════════════════════╝\n\n")

	fmt.Fprintf(&b, "TIMELINE (%d events)\n", len(sess.Events))
	fmt.Fprintf(&b, "─────────────────────────────────────────────────────────────────────────\n")

	for _, event := range sess.Events {
		r.formatEvent(&b, &event)
	}

	fmt.Fprintf(&b, "\n─────────────────────────────────────────────────────────────────────────\n")
	switch sess.Status {
	case session.StatusComplete:
		fmt.Fprintf(&b, "✓ COMPLETED\n")
	case session.StatusFailed:
		fmt.Fprintf(&b, "✗ FAILED: %s\n", sess.Error)
	case session.StatusAborted:
		fmt.Fprintf(&b, "◼ ABORTED\n")
	default:
		fmt.Fprintf(&b, "⋯ RUNNING\n")
	}
	if sess.Reply != "" {
		fmt.Fprintf(&b, "\nREPLY:\n%s\n", sess.Reply)
	}
	return b.String()
}

// formatEvent formats a single event for display.
func (r *Replayer) formatEvent(b *strings.Builder, event *session.Event) {
	seq := event.Seq
	ts := event.Timestamp.Format("15:04:05.000")

	switch event.Type {
	case session.EventDispatchStart:
		fmt.Fprintf(b, "%4d │ %s │ ▶ DISPATCH START\n", seq, ts)
		if r.verbose && event.Content != "" {
			printIndented(b, "     │ ", truncate(event.Content, 500))
		}

	case session.EventDispatchEnd:
		fmt.Fprintf(b, "%4d │ %s │ ◼ DISPATCH END: %s\n", seq, ts, event.Status)
		if event.Error != "" {
			printIndented(b, "     │ ", "ERROR: "+event.Error)
		}

	case session.EventFastPath:
		fmt.Fprintf(b, "%4d │ %s │ ⚡ FAST PATH: %s\n", seq, ts, event.Capability)
		if r.verbose && event.Content != "" {
			printIndented(b, "     │ ", event.Content)
		}

	case session.EventPlan:
		fmt.Fprintf(b, "%4d │ %s │ 📋 PLAN (%s)\n", seq, ts, event.Status)
		if event.Content != "" {
			printIndented(b, "     │ ", truncate(event.Content, 200))
		}

	case session.EventToolCall:
		fmt.Fprintf(b, "%4d │ %s │ 🔧 TOOL CALL: %s\n", seq, ts, event.Capability)

	case session.EventStep:
		status := "✓"
		if event.Status == "error" {
			status = "✗"
		}
		fmt.Fprintf(b, "%4d │ %s │ %s STEP: %s → %s (%dms)\n", seq, ts, status, event.Capability, event.Status, event.DurationMs)
		if event.Error != "" {
			printIndented(b, "     │ ", "ERROR: "+event.Error)
		} else if r.verbose && event.Content != "" {
			printIndented(b, "     │ ", truncate(event.Content, 200))
		}

	case session.EventSupervisor:
		fmt.Fprintf(b, "%4d │ %s │ 👁  SUPERVISOR: %s\n", seq, ts, event.Status)
		if event.Content != "" {
			printIndented(b, "     │ ", truncate(event.Content, 200))
		}

	case session.EventUserFacing:
		fmt.Fprintf(b, "%4d │ %s │ 💬 REPLY\n", seq, ts)
		if r.verbose && event.Content != "" {
			printIndented(b, "     │ ", truncate(event.Content, 500))
		}

	default:
		fmt.Fprintf(b, "%4d │ %s │ ⬛ %s\n", seq, ts, event.Type)
	}
}

// printIndented prints text with indentation prefix.
func printIndented(b *strings.Builder, prefix string, text string) {
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			fmt.Fprintf(b, "%s    %s\n", prefix, line)
		}
	}
}

// truncate truncates a string to max runes. Session content can be any
// UTF-8 text; cutting on bytes would split a rune mid-sequence.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
