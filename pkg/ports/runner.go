package ports

import (
	"context"

	"github.com/aretw0/tiller/pkg/domain"
)

// TaskRunner executes one task across many targets in a single batched call.
//
// The returned ResultSet is keyed to targets in input order: result i belongs
// to targets[i]. A per-target failure is reported inside the set; the error
// return is reserved for failures of the batch call itself (which the engine
// treats as fatal).
type TaskRunner interface {
	Run(ctx context.Context, task *domain.Task, targets []*domain.Target, args map[string]any) (*domain.ResultSet, error)

	// SupportsRemote reports whether this runner can reach remote targets.
	// The engine refuses to start a run on a runner that cannot.
	SupportsRemote() bool
}

// RunnerFunc adapts a function to the TaskRunner interface.
// It always reports remote support; useful in tests and examples.
type RunnerFunc func(ctx context.Context, task *domain.Task, targets []*domain.Target, args map[string]any) (*domain.ResultSet, error)

func (f RunnerFunc) Run(ctx context.Context, task *domain.Task, targets []*domain.Target, args map[string]any) (*domain.ResultSet, error) {
	return f(ctx, task, targets, args)
}

func (f RunnerFunc) SupportsRemote() bool {
	return true
}
