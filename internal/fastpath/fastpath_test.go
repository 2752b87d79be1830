package fastpath

import (
	"regexp"
	"testing"
)

func TestRouter_FirstMatchWins(t *testing.T) {
	r := NewRouter()
	r.Register(Entry{Pattern: regexp.MustCompile(`^/task`), Capability: "first"})
	r.Register(Entry{Pattern: regexp.MustCompile(`^/task`), Capability: "second"})

	m, ok := r.Match("/task do something")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Entry.Capability != "first" {
		t.Errorf("expected first registered rule to win, got %s", m.Entry.Capability)
	}
}

func TestRouter_TrimsWhitespace(t *testing.T) {
	r := NewRouter()
	r.Register(Entry{Pattern: regexp.MustCompile(`^/ping$`), Capability: "ping"})

	if _, ok := r.Match("   /ping\n"); !ok {
		t.Error("expected match after trimming surrounding whitespace")
	}
}

func TestRouter_NoMatch(t *testing.T) {
	r := NewRouter()
	r.Register(Entry{Pattern: regexp.MustCompile(`^/ping$`), Capability: "ping"})

	if _, ok := r.Match("hello there"); ok {
		t.Error("expected no match for free-form text")
	}
}

func TestRouter_EmptyRouter(t *testing.T) {
	r := NewRouter()
	if _, ok := r.Match("/anything"); ok {
		t.Error("expected no match from an empty router")
	}
}

func TestMatch_ArgsFuncWins(t *testing.T) {
	e := Entry{
		Pattern:    regexp.MustCompile(`^/greet (.+)$`),
		Capability: "greet",
		Args:       map[string]interface{}{"name": "ignored"},
		ArgsFunc: func(groups []string) map[string]interface{} {
			return map[string]interface{}{"name": groups[1]}
		},
	}
	r := NewRouter()
	r.Register(e)

	m, _ := r.Match("/greet Ada")
	args := m.Args()
	if args["name"] != "Ada" {
		t.Errorf("expected captured name, got %v", args["name"])
	}
}

func TestMatch_FixedArgsCopied(t *testing.T) {
	e := Entry{
		Pattern:    regexp.MustCompile(`^/x$`),
		Capability: "x",
		Args:       map[string]interface{}{"k": "v"},
	}
	r := NewRouter()
	r.Register(e)

	m, _ := r.Match("/x")
	args := m.Args()
	args["k"] = "mutated"
	if e.Args["k"] != "v" {
		t.Error("Args() must return a copy, not the entry's map")
	}
}
