package bootstrap

import (
	"context"

	"github.com/tridentos/bosun/internal/logging"
)

// StepOutcome pairs a step name with what it did, for display by the
// bootstrap CLI command.
type StepOutcome struct {
	Name   string
	Result Result
}

// Runner executes a fixed ordered list of steps exactly once per boot.
type Runner struct {
	steps []Step
	log   *logging.Logger
}

// NewRunner returns a Runner over the given steps, in order.
func NewRunner(steps []Step, log *logging.Logger) *Runner {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Runner{steps: steps, log: log}
}

// DefaultSteps returns the standard bootstrap sequence: docker socket
// permissions, hardware identity, DNS resolver link.
func DefaultSteps(configDir string) []Step {
	return []Step{
		NewDockerSocketStep(),
		NewHardwareIDStep(configDir),
		NewDNSLinkStep(),
	}
}

// Run executes every step in order and returns the per-step outcomes.
// The first fatal step error stops the run immediately; skipped steps
// only produce a warning and the run continues.
func (r *Runner) Run(ctx context.Context) ([]StepOutcome, error) {
	outcomes := make([]StepOutcome, 0, len(r.steps))

	for _, step := range r.steps {
		log := r.log.WithStep(step.Name())

		res, err := step.Run(ctx)
		if err != nil {
			log.Error("bootstrap step failed", "error", err)
			return outcomes, err
		}

		switch res.Status {
		case StatusSkipped:
			log.Warn("bootstrap step skipped", "reason", res.Detail)
		default:
			log.Info("bootstrap step applied", "detail", res.Detail)
		}
		outcomes = append(outcomes, StepOutcome{Name: step.Name(), Result: res})
	}

	return outcomes, nil
}
