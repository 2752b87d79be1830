// Package planner produces multi-step plans for messages that no
// fast-path rule claims.
package planner

import (
	"context"
	"fmt"

	"github.com/vinayprograms/butler/internal/plan"
)

// Context carries the request-scoped inputs a planner may use.
type Context struct {
	ContextID    string
	Capabilities []string
}

// Planner turns a natural-language message into an executable plan.
type Planner interface {
	Plan(ctx context.Context, message string, pc Context) (*plan.Plan, error)
}

// PlanningError marks a failure to acquire a plan. It is the only
// capability-independent error class a dispatch can surface.
type PlanningError struct {
	Err error
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning failed: %v", e.Err)
}

func (e *PlanningError) Unwrap() error {
	return e.Err
}
