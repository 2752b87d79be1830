package plan

import (
	"context"
	"testing"
)

func TestStepStatus_Terminal(t *testing.T) {
	terminal := []StepStatus{StatusOK, StatusError, StatusSkipped}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []StepStatus{StatusPending, StatusInProgress} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestNewStep_Defaults(t *testing.T) {
	s := NewStep(context.Background(), "check time", "clock", nil)
	if s.ID == "" {
		t.Error("expected generated id")
	}
	if s.Status != StatusPending {
		t.Errorf("expected pending, got %s", s.Status)
	}
	if s.Executor != ExecutorCapability {
		t.Errorf("expected capability executor, got %s", s.Executor)
	}
}

func TestPlan_MarkRemainingSkipped(t *testing.T) {
	p := &Plan{Steps: []*Step{
		{Status: StatusOK},
		{Status: StatusError},
		{Status: StatusPending},
		{Status: StatusPending},
	}}
	p.MarkRemainingSkipped(1)

	if p.Steps[0].Status != StatusOK || p.Steps[1].Status != StatusError {
		t.Error("executed steps must keep their status")
	}
	if p.Steps[2].Status != StatusSkipped || p.Steps[3].Status != StatusSkipped {
		t.Error("remaining steps should be skipped")
	}
}

func TestPlan_MarkRemainingSkippedFromStart(t *testing.T) {
	p := &Plan{Steps: []*Step{{Status: StatusPending}, {Status: StatusPending}}}
	p.MarkRemainingSkipped(-1)
	for i, s := range p.Steps {
		if s.Status != StatusSkipped {
			t.Errorf("step %d should be skipped, got %s", i, s.Status)
		}
	}
}
