package observability

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tiller/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnPhaseStart(ctx, &domain.PhaseEvent{Phase: domain.PhaseProbe, Targets: 3})
	hooks.OnPhaseEnd(ctx, &domain.PhaseEvent{Phase: domain.PhaseProbe, Targets: 3, Failed: 1})
	hooks.OnInstallEnd(ctx, &domain.InstallEvent{Strategy: "script", Duration: 120 * time.Millisecond})
	hooks.OnInstallEnd(ctx, &domain.InstallEvent{Strategy: "script", Err: "boom"})

	if got := testutil.ToFloat64(m.phaseTargets.WithLabelValues(domain.PhaseProbe)); got != 3 {
		t.Errorf("phase targets = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.phaseFailures.WithLabelValues(domain.PhaseProbe)); got != 1 {
		t.Errorf("phase failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.installs.WithLabelValues("script", "failure")); got != 1 {
		t.Errorf("failed installs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.installs.WithLabelValues("script", "success")); got != 1 {
		t.Errorf("successful installs = %v, want 1", got)
	}

	// The registry gathers without duplicate registration errors.
	if _, err := reg.Gather(); err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
}
