package dispatch

import (
	"strings"
	"testing"

	"github.com/vinayprograms/butler/internal/plan"
)

func TestDefaultAssembler_JoinsOutputs(t *testing.T) {
	p := &plan.Plan{Steps: []*plan.Step{
		{Status: plan.StatusOK, Output: "first result"},
		{Status: plan.StatusOK, Output: "second result"},
	}}
	reply := DefaultAssembler{}.Assemble(p, false)
	if !strings.Contains(reply, "first result") || !strings.Contains(reply, "second result") {
		t.Errorf("reply should contain all step outputs, got %q", reply)
	}
}

func TestDefaultAssembler_SummarizesFailures(t *testing.T) {
	p := &plan.Plan{Steps: []*plan.Step{
		{Status: plan.StatusError, Label: "fetch prices", Error: "timeout"},
	}}
	reply := DefaultAssembler{}.Assemble(p, false)
	if !strings.Contains(reply, "fetch prices") || !strings.Contains(reply, "timeout") {
		t.Errorf("reply should name the failed step and error, got %q", reply)
	}
}

func TestDefaultAssembler_AbortNote(t *testing.T) {
	p := &plan.Plan{Steps: []*plan.Step{
		{Status: plan.StatusOK, Output: "partial"},
		{Status: plan.StatusSkipped},
	}}
	reply := DefaultAssembler{}.Assemble(p, true)
	if !strings.Contains(reply, "stopped") {
		t.Errorf("aborted reply should say so, got %q", reply)
	}
}

func TestDefaultAssembler_EmptyPlan(t *testing.T) {
	reply := DefaultAssembler{}.Assemble(&plan.Plan{}, false)
	if reply == "" {
		t.Error("reply must never be empty")
	}
}
