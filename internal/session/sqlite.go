package session

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore stores sessions in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// init creates the database schema.
func (s *SQLiteStore) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		context_id TEXT NOT NULL,
		message TEXT,
		status TEXT NOT NULL,
		reply TEXT,
		error TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		type TEXT NOT NULL,
		trace_id TEXT,
		span_id TEXT,
		step TEXT,
		capability TEXT,
		content TEXT,
		status TEXT,
		error TEXT,
		duration_ms INTEGER,
		timestamp DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save saves a session to the database.
func (s *SQLiteStore) Save(sess *Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sessions (id, context_id, message, status, reply, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			reply = excluded.reply,
			error = excluded.error,
			updated_at = excluded.updated_at
	`, sess.ID, sess.ContextID, sess.Message, sess.Status, sess.Reply, sess.Error,
		sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	// Full replacement of events keeps Save idempotent.
	if _, err = tx.Exec("DELETE FROM events WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}

	for _, event := range sess.Events {
		_, err = tx.Exec(`
			INSERT INTO events (session_id, seq, type, trace_id, span_id, step, capability, content, status, error, duration_ms, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sess.ID, event.Seq, event.Type, event.TraceID, event.SpanID, event.StepID,
			event.Capability, event.Content, event.Status, event.Error, event.DurationMs, event.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to save event: %w", err)
		}
	}

	return tx.Commit()
}

// Load loads a session from the database.
func (s *SQLiteStore) Load(id string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT id, context_id, message, status, reply, error, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)

	var sess Session
	err := row.Scan(&sess.ID, &sess.ContextID, &sess.Message, &sess.Status,
		&sess.Reply, &sess.Error, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT seq, type, trace_id, span_id, step, capability, content, status, error, duration_ms, timestamp
		FROM events WHERE session_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	defer rows.Close()

	sess.Events = []Event{}
	for rows.Next() {
		var event Event
		var traceID, spanID, step, capName, content, status, eventError sql.NullString
		var durationMs sql.NullInt64
		err := rows.Scan(&event.Seq, &event.Type, &traceID, &spanID, &step, &capName,
			&content, &status, &eventError, &durationMs, &event.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.TraceID = traceID.String
		event.SpanID = spanID.String
		event.StepID = step.String
		event.Capability = capName.String
		event.Content = content.String
		event.Status = status.String
		event.Error = eventError.String
		if durationMs.Valid {
			event.DurationMs = durationMs.Int64
		}
		sess.Events = append(sess.Events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(sess.Events) > 0 {
		sess.seqCounter = sess.Events[len(sess.Events)-1].Seq
	}
	return &sess, nil
}
