package planner

import (
	"context"
	"errors"
	"testing"
)

func TestParsePlanJSON_Clean(t *testing.T) {
	raw := `{"description": "get time", "steps": [{"label": "now", "action": "clock", "args": {}}]}`
	p, err := ParsePlanJSON(context.Background(), raw)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if p.Description != "get time" {
		t.Errorf("unexpected description: %s", p.Description)
	}
	if len(p.Steps) != 1 || p.Steps[0].Action != "clock" {
		t.Fatalf("unexpected steps: %+v", p.Steps)
	}
	if p.Steps[0].ID == "" {
		t.Error("steps should get generated ids")
	}
}

func TestParsePlanJSON_CodeFenced(t *testing.T) {
	raw := "Here is the plan:\n```json\n{\"steps\": [{\"action\": \"echo\", \"args\": {\"text\": \"hi\"}}]}\n```\nDone."
	p, err := ParsePlanJSON(context.Background(), raw)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(p.Steps) != 1 || p.Steps[0].Action != "echo" {
		t.Fatalf("unexpected steps: %+v", p.Steps)
	}
}

func TestParsePlanJSON_BracesInStrings(t *testing.T) {
	raw := `{"description": "tricky {not a brace}", "steps": [{"action": "echo", "args": {"text": "a } b"}}]}`
	p, err := ParsePlanJSON(context.Background(), raw)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if p.Steps[0].Args["text"] != "a } b" {
		t.Errorf("brace inside string mangled: %v", p.Steps[0].Args["text"])
	}
}

func TestParsePlanJSON_NoJSON(t *testing.T) {
	if _, err := ParsePlanJSON(context.Background(), "I cannot help with that."); err == nil {
		t.Error("expected error when no JSON object present")
	}
}

func TestParsePlanJSON_EmptySteps(t *testing.T) {
	if _, err := ParsePlanJSON(context.Background(), `{"steps": []}`); err == nil {
		t.Error("expected error for empty plan")
	}
}

func TestParsePlanJSON_MissingAction(t *testing.T) {
	if _, err := ParsePlanJSON(context.Background(), `{"steps": [{"label": "x"}]}`); err == nil {
		t.Error("expected error for step without action")
	}
}

func TestPlanningError_Unwrap(t *testing.T) {
	inner := errors.New("rate limited")
	err := &PlanningError{Err: inner}
	if !errors.Is(err, inner) {
		t.Error("PlanningError should unwrap to its cause")
	}
}
