package fastpath

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleRules = `
- pattern: '^/ado (.+)$'
  capability: create_work_item
  description: Create an ADO work item
  args:
    title: "$1"
    description: "Created via Fast Path"
- pattern: '^/ping$'
  capability: echo
  args:
    text: pong
`

func TestParseRules_GroupExpansion(t *testing.T) {
	entries, err := ParseRules([]byte(sampleRules))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	r := NewRouter()
	for _, e := range entries {
		r.Register(e)
	}

	m, ok := r.Match("/ado Fix the login bug")
	if !ok {
		t.Fatal("expected /ado rule to match")
	}
	args := m.Args()
	if args["title"] != "Fix the login bug" {
		t.Errorf("expected captured title, got %v", args["title"])
	}
	if args["description"] != "Created via Fast Path" {
		t.Errorf("expected literal description, got %v", args["description"])
	}
}

func TestParseRules_FixedArgs(t *testing.T) {
	entries, err := ParseRules([]byte(sampleRules))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if entries[1].ArgsFunc != nil {
		t.Error("rule without group refs should use the fixed args map")
	}
	if entries[1].Args["text"] != "pong" {
		t.Errorf("expected fixed arg, got %v", entries[1].Args["text"])
	}
}

func TestParseRules_InvalidPattern(t *testing.T) {
	_, err := ParseRules([]byte("- pattern: '[unclosed'\n  capability: x\n"))
	if err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestParseRules_MissingCapability(t *testing.T) {
	_, err := ParseRules([]byte("- pattern: '^/x$'\n"))
	if err == nil {
		t.Error("expected error for rule without capability")
	}
}

func TestLoadRules_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(sampleRules), 0644); err != nil {
		t.Fatal(err)
	}
	entries, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestExpandArgs_OutOfRangeGroup(t *testing.T) {
	out := expandArgs(map[string]interface{}{"v": "$3"}, []string{"all", "one"})
	if out["v"] != "" {
		t.Errorf("out-of-range group should expand to empty string, got %v", out["v"])
	}
}
