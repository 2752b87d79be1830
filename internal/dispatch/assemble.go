package dispatch

import (
	"fmt"
	"strings"

	"github.com/vinayprograms/butler/internal/plan"
)

// ResponseAssembler turns an executed plan into the single user-facing
// reply for the request.
type ResponseAssembler interface {
	Assemble(p *plan.Plan, aborted bool) string
}

// DefaultAssembler concatenates the outputs of successful steps and
// summarizes failures. It never invents content: everything in the reply
// came from a step output or a step error.
type DefaultAssembler struct{}

func (DefaultAssembler) Assemble(p *plan.Plan, aborted bool) string {
	var parts []string
	for _, step := range p.Steps {
		switch step.Status {
		case plan.StatusOK:
			if step.Output != "" {
				parts = append(parts, step.Output)
			}
		case plan.StatusError:
			label := step.Label
			if label == "" {
				label = step.Action
			}
			parts = append(parts, fmt.Sprintf("%s failed: %s", label, step.Error))
		}
	}
	if aborted {
		parts = append(parts, "The request was stopped before all steps completed.")
	}
	if len(parts) == 0 {
		return "Done."
	}
	return strings.Join(parts, "\n\n")
}
