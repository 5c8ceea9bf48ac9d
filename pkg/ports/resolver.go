package ports

import (
	"context"

	"github.com/aretw0/tiller/pkg/domain"
)

// TargetResolver expands a target spec (a host pattern, group name or
// similar) into the ordered list of concrete targets it denotes.
type TargetResolver interface {
	Expand(ctx context.Context, spec string) ([]*domain.Target, error)
}

// TaskResolver resolves task definitions by name.
// A missing definition or invalid arguments is a configuration error, not a
// per-target one; the engine aborts the whole run on either.
type TaskResolver interface {
	// Resolve returns the task descriptor for a well-known name.
	// It returns an error wrapping domain.ErrTaskNotFound when unknown.
	Resolve(name string) (*domain.Task, error)

	// ValidateArgs checks the supplied arguments against the task's
	// parameter schema. The returned error wraps
	// domain.ErrInvalidParameters and is meant to be human readable.
	ValidateArgs(task *domain.Task, args map[string]any) error
}
