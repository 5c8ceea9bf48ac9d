package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/tiller/pkg/domain"
)

// StaticResolver implements ports.TargetResolver over a fixed target list.
type StaticResolver struct {
	targets []*domain.Target
}

// NewStaticResolver creates a resolver that always yields the given targets.
func NewStaticResolver(targets ...*domain.Target) *StaticResolver {
	return &StaticResolver{targets: targets}
}

// Expand returns the configured targets for "all" or an empty spec; any
// other spec selects targets by exact name match, preserving order.
func (r *StaticResolver) Expand(ctx context.Context, spec string) ([]*domain.Target, error) {
	if spec == "" || spec == "all" {
		return r.targets, nil
	}
	var out []*domain.Target
	for _, t := range r.targets {
		if t.Name == spec {
			out = append(out, t)
		}
	}
	return out, nil
}

// TaskSet implements ports.TaskResolver over a fixed set of task definitions.
type TaskSet struct {
	tasks map[string]*domain.Task
}

// NewTaskSet creates a resolver with the given tasks.
func NewTaskSet(tasks ...*domain.Task) *TaskSet {
	set := &TaskSet{tasks: make(map[string]*domain.Task, len(tasks))}
	for _, t := range tasks {
		set.tasks[t.Name] = t
	}
	return set
}

// DefaultTaskSet returns a resolver knowing the two well-known tasks.
// The default descriptors expect a tiller agent on PATH of the target.
func DefaultTaskSet() *TaskSet {
	return NewTaskSet(
		&domain.Task{
			Name:    domain.TaskProbeVersion,
			Command: "tiller-agent version --json 2>/dev/null || true",
		},
		&domain.Task{
			Name:    domain.TaskCollectFacts,
			Params:  map[string]bool{domain.ArgFactsPayload: true},
			Command: "tiller-agent facts --json",
		},
	)
}

// Resolve returns the task descriptor for a well-known name.
func (s *TaskSet) Resolve(name string) (*domain.Task, error) {
	t, ok := s.tasks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrTaskNotFound, name)
	}
	return t, nil
}

// ValidateArgs checks the arguments against the task's parameter schema.
func (s *TaskSet) ValidateArgs(task *domain.Task, args map[string]any) error {
	for name := range args {
		if _, ok := task.Params[name]; !ok {
			return fmt.Errorf("%w: task %q does not accept argument %q", domain.ErrInvalidParameters, task.Name, name)
		}
	}
	for name, required := range task.Params {
		if !required {
			continue
		}
		if _, ok := args[name]; !ok {
			return fmt.Errorf("%w: task %q requires argument %q", domain.ErrInvalidParameters, task.Name, name)
		}
	}
	return nil
}
