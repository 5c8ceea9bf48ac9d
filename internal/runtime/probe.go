package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/tiller/pkg/domain"
)

// probe runs the version-probe task against targets whose agent state is
// unknown and returns the subset that needs an install.
//
// A missing or invalid probe task definition is a fatal configuration error.
// A partially failed probe aborts the run before any install is attempted.
// Targets that report a non-empty version get the agent feature recorded
// immediately and are excluded from installation.
func (e *Engine) probe(ctx context.Context, r *run, unknown []*domain.Target) ([]*domain.Target, error) {
	if len(unknown) == 0 {
		return nil, nil
	}

	task, err := e.deps.Tasks.Resolve(domain.TaskProbeVersion)
	if err != nil {
		return nil, fmt.Errorf("cannot probe agent versions: %w", err)
	}
	if err := e.deps.Tasks.ValidateArgs(task, nil); err != nil {
		return nil, fmt.Errorf("cannot probe agent versions: %w", err)
	}

	e.phaseStart(ctx, r, domain.PhaseProbe, len(unknown))
	r.log.Info("probing agent versions", "task", task.Name, "targets", len(unknown))

	set, err := e.deps.Runner.Run(ctx, task, unknown, nil)
	if err != nil {
		return nil, fmt.Errorf("probe task %q did not run: %w", task.Name, err)
	}
	if set.Len() != len(unknown) {
		return nil, fmt.Errorf("probe task %q returned %d results for %d targets", task.Name, set.Len(), len(unknown))
	}

	if !set.OK() {
		failed := set.Failed()
		e.phaseEnd(ctx, r, domain.PhaseProbe, len(unknown), len(failed))
		return nil, &domain.RunError{Phase: domain.PhaseProbe, Task: task.Name, Failed: failed}
	}

	// A non-string version is a malformed agent reply, not a missing agent;
	// routing it to reinstall would mask the defect.
	var needInstall []*domain.Target
	var malformed []domain.Result
	for i, t := range unknown {
		raw, present := set.Get(i).Value[domain.ResultKeyVersion]
		if !present {
			needInstall = append(needInstall, t)
			continue
		}
		version, ok := raw.(string)
		if !ok {
			malformed = append(malformed, domain.Fail(t.Name, domain.KindTask,
				fmt.Errorf("probe reply carries a non-string version (%T)", raw)))
			r.log.Warn("malformed probe reply", "target", t.Name, "version", raw)
			continue
		}
		if version == "" {
			needInstall = append(needInstall, t)
			continue
		}
		if err := e.deps.Features.SetFeature(ctx, t, domain.FeatureAgent); err != nil {
			return nil, fmt.Errorf("failed to record agent feature for %s: %w", t.Name, err)
		}
		r.log.Debug("agent already installed", "target", t.Name, "version", version)
	}

	e.phaseEnd(ctx, r, domain.PhaseProbe, len(unknown), len(malformed))
	if len(malformed) > 0 {
		return nil, &domain.RunError{Phase: domain.PhaseProbe, Task: task.Name, Failed: malformed}
	}
	r.log.Info("probe complete", "need_install", len(needInstall))
	return needInstall, nil
}
