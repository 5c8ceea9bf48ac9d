package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/tiller/pkg/domain"
)

// Call records one batched task execution for later inspection.
type Call struct {
	Task    string
	Targets []string
	Args    map[string]any
}

// Runner implements ports.TaskRunner with per-task handler functions.
// It records every call, which makes it convenient for tests and local
// dry-runs of the pipeline.
type Runner struct {
	mu       sync.Mutex
	handlers map[string]func(target *domain.Target, args map[string]any) domain.Result
	calls    []Call
}

// NewRunner creates an empty scripted runner.
func NewRunner() *Runner {
	return &Runner{
		handlers: make(map[string]func(target *domain.Target, args map[string]any) domain.Result),
	}
}

// Handle registers the per-target handler for a task name.
func (r *Runner) Handle(task string, fn func(target *domain.Target, args map[string]any) domain.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[task] = fn
}

// Run applies the task's handler to each target in order.
func (r *Runner) Run(ctx context.Context, task *domain.Task, targets []*domain.Target, args map[string]any) (*domain.ResultSet, error) {
	r.mu.Lock()
	fn, ok := r.handlers[task.Name]
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	r.calls = append(r.calls, Call{Task: task.Name, Targets: names, Args: args})
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no handler registered for task %q", task.Name)
	}

	results := make([]domain.Result, len(targets))
	for i, t := range targets {
		results[i] = fn(t, args)
	}
	return domain.NewResultSet(results), nil
}

// SupportsRemote is always true for the scripted runner.
func (r *Runner) SupportsRemote() bool {
	return true
}

// Calls returns the recorded calls in execution order.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}
