package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/tiller/pkg/domain"
)

// installSlot tracks one target through the install phase.
// Each slot is written by exactly one goroutine, so the slice needs no lock.
type installSlot struct {
	hook   domain.InstallHook
	result domain.Result
}

// install resolves an install hook per target and runs all resolved hooks on
// a bounded worker pool, then merges resolution failures and execution
// outcomes into one ResultSet in the original target order.
//
// Failures are isolated per target: a resolution error or a hook's runtime
// error never stops sibling targets. The phase blocks until every submitted
// hook has completed; there is no timeout, a hung hook stalls the phase.
//
// Successful targets get the agent feature recorded before a merged failure
// is raised (mark-then-raise), so a retry skips them at detection.
func (e *Engine) install(ctx context.Context, r *run, need []*domain.Target) error {
	if len(need) == 0 {
		return nil
	}

	e.phaseStart(ctx, r, domain.PhaseInstall, len(need))

	// Stage 1: sequential resolution, each target independent.
	slots := make([]installSlot, len(need))
	for i, t := range need {
		hook, err := e.deps.Registry.InstallHook(t.Install.Strategy, t.Install.Options, t)
		if err != nil {
			slots[i].result = domain.Fail(t.Name, domain.KindResolution, err)
			r.log.Warn("install hook resolution failed", "target", t.Name, "strategy", t.Install.Strategy, "error", err)
			continue
		}
		slots[i].hook = hook
	}

	// Stage 2: concurrent execution, join-all. No ordering or mutual
	// visibility guarantee between hooks.
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.workers)
	for i := range slots {
		if slots[i].hook == nil {
			continue
		}
		wg.Add(1)
		go func(i int, t *domain.Target) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			e.installStart(ctx, r, t)

			value, err := slots[i].hook(ctx)
			if err != nil {
				slots[i].result = domain.Fail(t.Name, domain.KindExecution, err)
			} else {
				slots[i].result = domain.OK(t.Name, value)
			}

			e.installEnd(ctx, r, t, time.Since(start), err)
		}(i, need[i])
	}
	wg.Wait()

	results := make([]domain.Result, len(need))
	for i := range slots {
		results[i] = slots[i].result
	}
	set := domain.NewResultSet(results)

	// Mark-then-raise: record the feature for every success first.
	for i, t := range need {
		if !results[i].Ok() {
			continue
		}
		if err := e.deps.Features.SetFeature(ctx, t, domain.FeatureAgent); err != nil {
			return fmt.Errorf("failed to record agent feature for %s: %w", t.Name, err)
		}
	}

	failed := set.Failed()
	e.phaseEnd(ctx, r, domain.PhaseInstall, len(need), len(failed))

	if !set.OK() {
		return &domain.RunError{Phase: domain.PhaseInstall, Failed: failed}
	}
	r.log.Info("install complete", "targets", len(need))
	return nil
}

func (e *Engine) installStart(ctx context.Context, r *run, t *domain.Target) {
	if e.hooks.OnInstallStart == nil {
		return
	}
	e.hooks.OnInstallStart(ctx, &domain.InstallEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventInstallStart, RunID: r.id},
		Target:    t.Name,
		Strategy:  t.Install.Strategy,
	})
}

func (e *Engine) installEnd(ctx context.Context, r *run, t *domain.Target, d time.Duration, err error) {
	if e.hooks.OnInstallEnd == nil {
		return
	}
	ev := &domain.InstallEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventInstallEnd, RunID: r.id},
		Target:    t.Name,
		Strategy:  t.Install.Strategy,
		Duration:  d,
	}
	if err != nil {
		ev.Err = err.Error()
	}
	e.hooks.OnInstallEnd(ctx, ev)
}
