package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/tiller/pkg/domain"
)

// PhaseReport summarizes one pipeline phase for the run report.
type PhaseReport struct {
	Name     string        `json:"name"`
	Targets  int           `json:"targets"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// InstallReport summarizes one target's install for the run report.
type InstallReport struct {
	Target   string        `json:"target"`
	Strategy string        `json:"strategy"`
	Duration time.Duration `json:"duration"`
	Err      string        `json:"err,omitempty"`
}

// Recorder accumulates lifecycle events for reporting. It implements the
// status provider consumed by the ops HTTP handler; install hooks arrive
// from worker goroutines, so all access is mutex guarded.
type Recorder struct {
	mu         sync.Mutex
	started    time.Time
	phaseStart map[string]time.Time
	phases     []PhaseReport
	installs   []InstallReport
}

func NewRecorder() *Recorder {
	return &Recorder{
		started:    time.Now(),
		phaseStart: make(map[string]time.Time),
	}
}

// Hooks returns lifecycle hooks that feed the recorder.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseStart: func(_ context.Context, e *domain.PhaseEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.phaseStart[e.Phase] = e.Timestamp
		},
		OnPhaseEnd: func(_ context.Context, e *domain.PhaseEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.phases = append(r.phases, PhaseReport{
				Name:     e.Phase,
				Targets:  e.Targets,
				Failed:   e.Failed,
				Duration: e.Timestamp.Sub(r.phaseStart[e.Phase]),
			})
		},
		OnInstallEnd: func(_ context.Context, e *domain.InstallEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.installs = append(r.installs, InstallReport{
				Target:   e.Target,
				Strategy: e.Strategy,
				Duration: e.Duration,
				Err:      e.Err,
			})
		},
	}
}

// Status returns a snapshot for the /status endpoint.
func (r *Recorder) Status() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return struct {
		Started  time.Time       `json:"started"`
		Phases   []PhaseReport   `json:"phases"`
		Installs []InstallReport `json:"installs"`
	}{
		Started:  r.started,
		Phases:   append([]PhaseReport(nil), r.phases...),
		Installs: append([]InstallReport(nil), r.installs...),
	}
}

// Markdown renders the run report for terminal display.
func (r *Recorder) Markdown() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	b.WriteString("# Preparation Report\n\n")

	if len(r.phases) == 0 {
		b.WriteString("Nothing to do.\n")
		return b.String()
	}

	b.WriteString("## Phases\n\n")
	b.WriteString("| Phase | Targets | Failed | Duration |\n")
	b.WriteString("|-------|---------|--------|----------|\n")
	for _, p := range r.phases {
		fmt.Fprintf(&b, "| %s | %d | %d | %s |\n",
			p.Name, p.Targets, p.Failed, p.Duration.Round(time.Millisecond))
	}

	if len(r.installs) > 0 {
		installs := append([]InstallReport(nil), r.installs...)
		sort.Slice(installs, func(i, j int) bool { return installs[i].Target < installs[j].Target })

		b.WriteString("\n## Installs\n\n")
		for _, in := range installs {
			if in.Err != "" {
				fmt.Fprintf(&b, "- **%s** (%s): failed: %s\n", in.Target, in.Strategy, in.Err)
			} else {
				fmt.Fprintf(&b, "- **%s** (%s): ok in %s\n", in.Target, in.Strategy, in.Duration.Round(time.Millisecond))
			}
		}
	}

	return b.String()
}

// mergeHooks fans each lifecycle event out to every non-nil receiver.
func mergeHooks(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var merged domain.LifecycleHooks
	for _, h := range all {
		h := h
		merged = domain.LifecycleHooks{
			OnPhaseStart:   chainPhase(merged.OnPhaseStart, h.OnPhaseStart),
			OnPhaseEnd:     chainPhase(merged.OnPhaseEnd, h.OnPhaseEnd),
			OnInstallStart: chainInstall(merged.OnInstallStart, h.OnInstallStart),
			OnInstallEnd:   chainInstall(merged.OnInstallEnd, h.OnInstallEnd),
		}
	}
	return merged
}

func chainPhase(a, b func(context.Context, *domain.PhaseEvent)) func(context.Context, *domain.PhaseEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.PhaseEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainInstall(a, b func(context.Context, *domain.InstallEvent)) func(context.Context, *domain.InstallEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.InstallEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
