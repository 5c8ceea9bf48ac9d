package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/tiller/pkg/domain"
)

// gatherFacts runs the facts-collection task once across the full original
// target list and merges each returned payload into the target's stored
// facts. By the time this runs, every target carries the agent feature.
//
// All-or-nothing: if the ResultSet is not fully successful, no facts are
// merged for any target.
func (e *Engine) gatherFacts(ctx context.Context, r *run, targets []*domain.Target) error {
	bundle, err := e.deps.Payload.BuildFactsBundle(nil)
	if err != nil {
		return fmt.Errorf("failed to build facts bundle: %w", err)
	}

	task, err := e.deps.Tasks.Resolve(domain.TaskCollectFacts)
	if err != nil {
		return fmt.Errorf("cannot collect facts: %w", err)
	}
	args := map[string]any{domain.ArgFactsPayload: bundle}
	if err := e.deps.Tasks.ValidateArgs(task, args); err != nil {
		return fmt.Errorf("cannot collect facts: %w", err)
	}

	e.phaseStart(ctx, r, domain.PhaseFacts, len(targets))
	r.log.Info("collecting facts", "task", task.Name, "targets", len(targets))

	set, err := e.deps.Runner.Run(ctx, task, targets, args)
	if err != nil {
		return fmt.Errorf("facts task %q did not run: %w", task.Name, err)
	}
	if set.Len() != len(targets) {
		return fmt.Errorf("facts task %q returned %d results for %d targets", task.Name, set.Len(), len(targets))
	}

	if !set.OK() {
		failed := set.Failed()
		e.phaseEnd(ctx, r, domain.PhaseFacts, len(targets), len(failed))
		return &domain.RunError{Phase: domain.PhaseFacts, Task: task.Name, Failed: failed}
	}

	for i, t := range targets {
		if err := e.deps.Facts.MergeFacts(ctx, t, set.Get(i).Value); err != nil {
			return fmt.Errorf("failed to merge facts for %s: %w", t.Name, err)
		}
	}

	e.phaseEnd(ctx, r, domain.PhaseFacts, len(targets), 0)
	r.log.Info("facts collected", "targets", len(targets))
	return nil
}
