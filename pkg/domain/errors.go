package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedContext is returned when the host does not support remote
// orchestration at all. It is fatal and checked before any target work.
var ErrUnsupportedContext = errors.New("remote orchestration is not supported in this context")

// ErrTaskNotFound is returned when a well-known task name cannot be resolved.
var ErrTaskNotFound = errors.New("task not found")

// ErrInvalidParameters is returned when task arguments fail schema validation.
var ErrInvalidParameters = errors.New("invalid task parameters")

// Phase names used in aggregate failures.
const (
	PhaseProbe   = "probe"
	PhaseInstall = "install"
	PhaseFacts   = "facts"
)

// RunError is an aggregate phase failure. It names the phase and task that
// failed and carries the failing subset of the phase's ResultSet.
//
// Individually successful targets from the failed phase keep their recorded
// feature and fact state even though the run as a whole fails.
type RunError struct {
	// Phase is one of PhaseProbe, PhaseInstall, PhaseFacts.
	Phase string

	// Task is the task name, empty for install failures (no single task runs).
	Task string

	// Failed holds the failing results, in input-target order.
	Failed []Result
}

func (e *RunError) Error() string {
	names := make([]string, len(e.Failed))
	for i, r := range e.Failed {
		names[i] = r.Target
	}
	what := e.Phase + " phase"
	if e.Task != "" {
		what = fmt.Sprintf("%s task %q", e.Phase, e.Task)
	}
	return fmt.Sprintf("%s failed for %d target(s): %s", what, len(e.Failed), strings.Join(names, ", "))
}

// FailedTargets returns the names of the failing targets, in order.
func (e *RunError) FailedTargets() []string {
	names := make([]string, len(e.Failed))
	for i, r := range e.Failed {
		names[i] = r.Target
	}
	return names
}
