package runtime_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/tiller/internal/runtime"
	"github.com/aretw0/tiller/pkg/domain"
	"github.com/aretw0/tiller/pkg/registry"
)

func TestInstall_ResolutionFailureIsIsolated(t *testing.T) {
	good := &domain.Target{Name: "good", Install: domain.InstallConfig{Strategy: "ok"}}
	bad := &domain.Target{Name: "bad", Install: domain.InstallConfig{Strategy: "never-registered"}}
	alsoGood := &domain.Target{Name: "also-good", Install: domain.InstallConfig{Strategy: "ok"}}

	var executed []string
	var mu sync.Mutex

	f := newFixture(nil, good, bad, alsoGood)
	f.probeVersions(map[string]string{})
	f.reg.Register("ok", registry.StrategyFunc(func(ctx context.Context, tgt *domain.Target, options map[string]any) (map[string]any, error) {
		mu.Lock()
		executed = append(executed, tgt.Name)
		mu.Unlock()
		return nil, nil
	}))

	err := f.engine.Prepare(context.Background(), "all")

	var runErr *domain.RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected RunError, got %v", err)
	}
	if got := runErr.FailedTargets(); len(got) != 1 || got[0] != "bad" {
		t.Errorf("only the unresolvable target should fail, got %v", got)
	}
	if !errors.Is(runErr.Failed[0].Err, registry.ErrStrategyNotFound) {
		t.Errorf("resolution failure should carry the typed error, got %v", runErr.Failed[0].Err)
	}
	if runErr.Failed[0].Err.Kind != domain.KindResolution {
		t.Errorf("failure kind = %q, want %q", runErr.Failed[0].Err.Kind, domain.KindResolution)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(executed) != 2 {
		t.Errorf("all resolvable targets should still execute, got %v", executed)
	}
	if !f.hasAgent(t, good) || !f.hasAgent(t, alsoGood) {
		t.Error("succeeded targets keep their feature despite the aggregate failure")
	}
}

func TestInstall_UndecodableOptionsFailAtResolution(t *testing.T) {
	typo := &domain.Target{Name: "typo", Install: domain.InstallConfig{
		Strategy: "script",
		Options:  map[string]any{"comand": "echo hi"},
	}}

	var starts int32
	hooks := domain.LifecycleHooks{
		OnInstallStart: func(context.Context, *domain.InstallEvent) {
			atomic.AddInt32(&starts, 1)
		},
	}

	f := newFixture([]runtime.EngineOption{runtime.WithLifecycleHooks(hooks)}, typo)
	f.probeVersions(map[string]string{})

	err := f.engine.Prepare(context.Background(), "all")

	var runErr *domain.RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected RunError, got %v", err)
	}
	if got := runErr.FailedTargets(); len(got) != 1 || got[0] != "typo" {
		t.Errorf("the misconfigured target should fail, got %v", got)
	}
	if runErr.Failed[0].Err.Kind != domain.KindResolution {
		t.Errorf("failure kind = %q, want %q", runErr.Failed[0].Err.Kind, domain.KindResolution)
	}
	if atomic.LoadInt32(&starts) != 0 {
		t.Error("a target with undecodable options must never reach the worker pool")
	}
}

func TestInstall_WorkerPoolIsBounded(t *testing.T) {
	const workers = 2
	const targetCount = 8

	var targets []*domain.Target
	for i := 0; i < targetCount; i++ {
		targets = append(targets, &domain.Target{
			Name:    string(rune('a' + i)),
			Install: domain.InstallConfig{Strategy: "slow"},
		})
	}

	var inFlight, peak int32
	f := newFixture([]runtime.EngineOption{runtime.WithInstallWorkers(workers)}, targets...)
	f.probeVersions(map[string]string{})
	f.factsPayloads(nil)
	f.reg.Register("slow", registry.StrategyFunc(func(ctx context.Context, tgt *domain.Target, options map[string]any) (map[string]any, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil, nil
	}))

	if err := f.engine.Prepare(context.Background(), "all"); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if p := atomic.LoadInt32(&peak); p > workers {
		t.Errorf("pool ran %d hooks concurrently, bound is %d", p, workers)
	}
	for _, tgt := range targets {
		if !f.hasAgent(t, tgt) {
			t.Errorf("target %s should be feature-flagged", tgt.Name)
		}
	}
}

func TestInstall_ResultOrderMirrorsInput(t *testing.T) {
	// Hooks complete in reverse order; the merged set must not care.
	first := &domain.Target{Name: "first", Install: domain.InstallConfig{Strategy: "staggered"}}
	second := &domain.Target{Name: "second", Install: domain.InstallConfig{Strategy: "staggered"}}
	third := &domain.Target{Name: "third", Install: domain.InstallConfig{Strategy: "broken"}}

	f := newFixture([]runtime.EngineOption{runtime.WithInstallWorkers(3)}, first, second, third)
	f.probeVersions(map[string]string{})
	f.reg.Register("staggered", registry.StrategyFunc(func(ctx context.Context, tgt *domain.Target, options map[string]any) (map[string]any, error) {
		if tgt.Name == "first" {
			time.Sleep(20 * time.Millisecond)
		}
		return nil, nil
	}))
	f.reg.Register("broken", registry.StrategyFunc(func(ctx context.Context, tgt *domain.Target, options map[string]any) (map[string]any, error) {
		return nil, errors.New("kaboom")
	}))

	err := f.engine.Prepare(context.Background(), "all")

	var runErr *domain.RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected RunError, got %v", err)
	}
	if got := runErr.FailedTargets(); len(got) != 1 || got[0] != "third" {
		t.Errorf("expected only third to fail, got %v", got)
	}
	if runErr.Failed[0].Err.Kind != domain.KindExecution {
		t.Errorf("runtime hook failure should be an execution failure, got %q", runErr.Failed[0].Err.Kind)
	}
}

func TestInstall_EmptyIsNoOp(t *testing.T) {
	old := &domain.Target{Name: "old"}

	f := newFixture(nil, old)
	f.probeVersions(map[string]string{"old": "2.0.0"})
	f.factsPayloads(nil)

	if err := f.engine.Prepare(context.Background(), "all"); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	// Nothing to assert beyond success: no strategy was registered, so any
	// install attempt would have failed the run.
}
