// Package session provides per-dispatch session records and persistence.
//
// A session is the forensic record of one dispatch request. It is acquired
// at the start of dispatch, owned exclusively by that request, and released
// (persisted) on every exit path. Sessions are never shared across requests.
package session

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Status constants for sessions.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
	StatusAborted  = "aborted"
)

// Event types for the session log.
const (
	EventDispatchStart = "dispatch_start"
	EventFastPath      = "fast_path"
	EventPlan          = "plan"
	EventToolCall      = "tool_call"
	EventStep          = "step"
	EventSupervisor    = "supervisor"
	EventUserFacing    = "user_facing"
	EventDispatchEnd   = "dispatch_end"
)

// Event is a single entry in the session log. This is the forensic
// record replay and analysis tools read from.
type Event struct {
	Seq       uint64    `json:"seq"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// Correlation with the dispatch trace.
	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`

	// Context - where in execution this happened.
	StepID     string `json:"step,omitempty"`
	Capability string `json:"capability,omitempty"`

	// Content and outcome.
	Content    string `json:"content,omitempty"`
	Status     string `json:"status,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// Session represents one dispatch request's record.
type Session struct {
	ID        string    `json:"id"`
	ContextID string    `json:"context_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Reply     string    `json:"reply,omitempty"`
	Error     string    `json:"error,omitempty"`
	Events    []Event   `json:"events"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	seqCounter uint64
	mu         sync.Mutex
}

// Record appends an event with automatic sequencing and returns its
// sequence number.
func (s *Session) Record(event Event) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.Seq = atomic.AddUint64(&s.seqCounter, 1)
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.Events = append(s.Events, event)
	s.UpdatedAt = time.Now()
	return event.Seq
}

// Finish sets the terminal status and reply for the session.
func (s *Session) Finish(status, reply, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = status
	s.Reply = reply
	s.Error = errMsg
	s.UpdatedAt = time.Now()
}

// Store is the interface for session persistence.
type Store interface {
	Save(sess *Session) error
	Load(id string) (*Session, error)
}

// Provider hands out request-scoped sessions. The release function
// persists the session and must be called on every dispatch exit path.
type Provider struct {
	store Store
}

// NewProvider creates a provider backed by the given store.
func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

// Acquire creates a session for one dispatch request. The returned release
// function saves the session; it is safe to call exactly once on any exit
// path.
func (p *Provider) Acquire(contextID, message string) (*Session, func(), error) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		ContextID: contextID,
		Message:   message,
		Status:    StatusRunning,
		Events:    []Event{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	release := func() {
		// Persistence failures must not disturb the dispatch outcome;
		// the caller has no recovery path at release time.
		_ = p.store.Save(sess)
	}
	return sess, release, nil
}

// JSONL record types for the streaming file format.
const (
	RecordTypeHeader = "header"
	RecordTypeEvent  = "event"
	RecordTypeFooter = "footer"
)

// JSONLRecord is a wrapper for JSONL lines with type discrimination.
type JSONLRecord struct {
	RecordType string `json:"_type"`

	// Header fields.
	ID        string    `json:"id,omitempty"`
	ContextID string    `json:"context_id,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`

	// Event payload. A named key keeps the event's status/error fields
	// from colliding with the footer's.
	Event *Event `json:"event,omitempty"`

	// Footer fields.
	Status    string    `json:"status,omitempty"`
	Reply     string    `json:"reply,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// FileStore implements Store using one JSONL file per session.
type FileStore struct {
	dir string
}

// NewFileStore creates a new file-based store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file path for a session id.
func (s *FileStore) Path(id string) string {
	return filepath.Join(s.dir, id+".jsonl")
}

// Save persists a session to disk in JSONL format.
func (s *FileStore) Save(sess *Session) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	f, err := os.Create(s.Path(sess.ID))
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer f.Close()

	header := JSONLRecord{
		RecordType: RecordTypeHeader,
		ID:         sess.ID,
		ContextID:  sess.ContextID,
		Message:    sess.Message,
		CreatedAt:  sess.CreatedAt,
	}
	if err := writeLine(f, header); err != nil {
		return err
	}

	for _, evt := range sess.Events {
		evtCopy := evt
		if err := writeLine(f, JSONLRecord{RecordType: RecordTypeEvent, Event: &evtCopy}); err != nil {
			return err
		}
	}

	footer := JSONLRecord{
		RecordType: RecordTypeFooter,
		Status:     sess.Status,
		Reply:      sess.Reply,
		Error:      sess.Error,
		UpdatedAt:  sess.UpdatedAt,
	}
	return writeLine(f, footer)
}

// writeLine writes a single JSONL record.
func writeLine(f *os.File, record JSONLRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return err
	}
	_, err = f.WriteString("\n")
	return err
}

// Load reads a session from disk.
func (s *FileStore) Load(id string) (*Session, error) {
	return LoadFile(s.Path(id))
}

// LoadFile reads a session from a JSONL file path.
func LoadFile(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sess := &Session{Events: []Event{}}

	// bufio.Reader rather than Scanner - no line length limits.
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				if len(bytes.TrimSpace(line)) > 0 {
					if parseErr := parseJSONLLine(line, sess); parseErr != nil {
						return nil, parseErr
					}
				}
				break
			}
			return nil, fmt.Errorf("error reading session: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if err := parseJSONLLine(line, sess); err != nil {
			return nil, err
		}
	}

	if len(sess.Events) > 0 {
		sess.seqCounter = sess.Events[len(sess.Events)-1].Seq
	}
	return sess, nil
}

// parseJSONLLine parses a single JSONL line into the session.
func parseJSONLLine(line []byte, sess *Session) error {
	var record JSONLRecord
	if err := json.Unmarshal(line, &record); err != nil {
		return fmt.Errorf("failed to parse session line: %w", err)
	}

	switch record.RecordType {
	case RecordTypeHeader:
		sess.ID = record.ID
		sess.ContextID = record.ContextID
		sess.Message = record.Message
		sess.CreatedAt = record.CreatedAt
	case RecordTypeEvent:
		if record.Event != nil {
			sess.Events = append(sess.Events, *record.Event)
		}
	case RecordTypeFooter:
		sess.Status = record.Status
		sess.Reply = record.Reply
		sess.Error = record.Error
		sess.UpdatedAt = record.UpdatedAt
	}
	return nil
}
