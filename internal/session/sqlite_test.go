package session

import (
	"path/filepath"
	"testing"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	sess := &Session{ID: "s1", ContextID: "kitchen", Message: "hello", Status: StatusRunning}
	sess.Record(Event{Type: EventDispatchStart, Content: "hello"})
	sess.Record(Event{Type: EventStep, Capability: "echo", Status: "ok", DurationMs: 7})
	sess.Finish(StatusComplete, "hi", "")

	if err := store.Save(sess); err != nil {
		t.Fatalf("save error: %v", err)
	}

	loaded, err := store.Load("s1")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if loaded.ContextID != "kitchen" || loaded.Status != StatusComplete || loaded.Reply != "hi" {
		t.Errorf("session fields lost: %+v", loaded)
	}
	if len(loaded.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(loaded.Events))
	}
	if loaded.Events[1].Capability != "echo" || loaded.Events[1].DurationMs != 7 {
		t.Errorf("event fields lost: %+v", loaded.Events[1])
	}
}

func TestSQLiteStore_SaveIsIdempotent(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	sess := &Session{ID: "s1", ContextID: "c", Status: StatusRunning}
	sess.Record(Event{Type: EventDispatchStart})
	if err := store.Save(sess); err != nil {
		t.Fatal(err)
	}

	sess.Record(Event{Type: EventDispatchEnd, Status: StatusComplete})
	sess.Finish(StatusComplete, "done", "")
	if err := store.Save(sess); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load("s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Events) != 2 {
		t.Errorf("re-save should replace events, got %d", len(loaded.Events))
	}
	if loaded.Status != StatusComplete {
		t.Errorf("expected updated status, got %s", loaded.Status)
	}
}

func TestSQLiteStore_NotFound(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := store.Load("missing"); err == nil {
		t.Error("expected error for missing session")
	}
}
