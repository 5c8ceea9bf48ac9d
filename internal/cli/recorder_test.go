package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/tiller/pkg/domain"
)

func TestRecorder_CollectsPhasesAndInstalls(t *testing.T) {
	rec := NewRecorder()
	hooks := rec.Hooks()
	ctx := context.Background()

	start := time.Now()
	hooks.OnPhaseStart(ctx, &domain.PhaseEvent{
		EventBase: domain.EventBase{Timestamp: start},
		Phase:     domain.PhaseInstall,
		Targets:   2,
	})
	hooks.OnInstallEnd(ctx, &domain.InstallEvent{Target: "web-1", Strategy: "script", Duration: 40 * time.Millisecond})
	hooks.OnInstallEnd(ctx, &domain.InstallEvent{Target: "web-2", Strategy: "script", Err: "exit status 1"})
	hooks.OnPhaseEnd(ctx, &domain.PhaseEvent{
		EventBase: domain.EventBase{Timestamp: start.Add(50 * time.Millisecond)},
		Phase:     domain.PhaseInstall,
		Targets:   2,
		Failed:    1,
	})

	md := rec.Markdown()
	for _, want := range []string{"install", "web-1", "web-2", "exit status 1"} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q:\n%s", want, md)
		}
	}

	status := rec.Status()
	snap, ok := status.(struct {
		Started  time.Time       `json:"started"`
		Phases   []PhaseReport   `json:"phases"`
		Installs []InstallReport `json:"installs"`
	})
	if !ok {
		t.Fatalf("unexpected status shape %T", status)
	}
	if len(snap.Phases) != 1 || snap.Phases[0].Failed != 1 {
		t.Errorf("unexpected phase snapshot: %+v", snap.Phases)
	}
	if len(snap.Installs) != 2 {
		t.Errorf("unexpected install snapshot: %+v", snap.Installs)
	}
	if snap.Phases[0].Duration != 50*time.Millisecond {
		t.Errorf("phase duration = %v, want 50ms", snap.Phases[0].Duration)
	}
}

func TestRecorder_EmptyReport(t *testing.T) {
	md := NewRecorder().Markdown()
	if !strings.Contains(md, "Nothing to do") {
		t.Errorf("empty report should say so, got:\n%s", md)
	}
}

func TestMergeHooks_FansOut(t *testing.T) {
	var calls []string
	mk := func(name string) domain.LifecycleHooks {
		return domain.LifecycleHooks{
			OnPhaseStart: func(context.Context, *domain.PhaseEvent) {
				calls = append(calls, name+".start")
			},
			OnInstallEnd: func(context.Context, *domain.InstallEvent) {
				calls = append(calls, name+".install")
			},
		}
	}

	merged := mergeHooks(mk("a"), domain.LifecycleHooks{}, mk("b"))
	merged.OnPhaseStart(context.Background(), &domain.PhaseEvent{})
	merged.OnInstallEnd(context.Background(), &domain.InstallEvent{})

	want := []string{"a.start", "b.start", "a.install", "b.install"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
	if merged.OnPhaseEnd != nil {
		t.Error("merging hooks without OnPhaseEnd should leave it nil")
	}
}
