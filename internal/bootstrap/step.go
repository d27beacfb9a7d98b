// Package bootstrap performs one-shot host preparation before any
// service launches: relaxing the Docker socket for the reverse proxy,
// deriving a stable hardware identifier, and linking the container's
// resolver file to the host's.
//
// Every step is idempotent because the surrounding system may invoke the
// boot sequence multiple times across restarts. A missing precondition
// path degrades one subsystem and is reported as a skipped step; any
// other OS failure aborts the whole boot, since launching the fleet
// against a partially-prepared host is worse than failing loudly.
package bootstrap

import "context"

// StepStatus is the outcome of a successful step run.
type StepStatus int

const (
	// StatusApplied means the step performed its side effect (or
	// confirmed it was already in place).
	StatusApplied StepStatus = iota
	// StatusSkipped means a precondition path was absent and the step
	// did nothing. The affected subsystem runs degraded.
	StatusSkipped
)

// String returns a human-readable status name.
func (s StepStatus) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result describes what a step did. Detail carries the skip reason or a
// short description of the applied change.
type Result struct {
	Status StepStatus
	Detail string
}

// Step is one ordered, named, idempotent bootstrap action.
// Run returns a non-nil error only for unexpected OS failures; those are
// fatal to the boot. Missing preconditions return StatusSkipped and a
// nil error.
type Step interface {
	Name() string
	Run(ctx context.Context) (Result, error)
}

func applied(detail string) Result {
	return Result{Status: StatusApplied, Detail: detail}
}

func skipped(reason string) Result {
	return Result{Status: StatusSkipped, Detail: reason}
}
