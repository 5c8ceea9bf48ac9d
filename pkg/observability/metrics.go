// Package observability turns engine lifecycle events into prometheus
// metrics. Hosts register the collector and wire Hooks() into the engine.
package observability

import (
	"context"

	"github.com/aretw0/tiller/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records preparation activity.
type Metrics struct {
	phaseTargets    *prometheus.CounterVec
	phaseFailures   *prometheus.CounterVec
	installs        *prometheus.CounterVec
	installDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		phaseTargets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tiller_phase_targets_total",
				Help: "Targets entering each preparation phase",
			},
			[]string{"phase"},
		),
		phaseFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tiller_phase_failures_total",
				Help: "Targets failing each preparation phase",
			},
			[]string{"phase"},
		),
		installs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tiller_installs_total",
				Help: "Install hook executions by strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		installDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "tiller_install_duration_seconds",
				Help: "Duration of install hook executions",
			},
			[]string{"strategy"},
		),
	}
	reg.MustRegister(m.phaseTargets, m.phaseFailures, m.installs, m.installDuration)
	return m
}

// PhaseTargets exposes the per-phase target counter.
func (m *Metrics) PhaseTargets() *prometheus.CounterVec {
	return m.phaseTargets
}

// Installs exposes the per-strategy install counter.
func (m *Metrics) Installs() *prometheus.CounterVec {
	return m.installs
}

// Hooks returns lifecycle hooks feeding the collectors.
// Safe for concurrent use: prometheus collectors handle their own locking.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseStart: func(_ context.Context, e *domain.PhaseEvent) {
			m.phaseTargets.WithLabelValues(e.Phase).Add(float64(e.Targets))
		},
		OnPhaseEnd: func(_ context.Context, e *domain.PhaseEvent) {
			if e.Failed > 0 {
				m.phaseFailures.WithLabelValues(e.Phase).Add(float64(e.Failed))
			}
		},
		OnInstallEnd: func(_ context.Context, e *domain.InstallEvent) {
			outcome := "success"
			if e.Err != "" {
				outcome = "failure"
			}
			m.installs.WithLabelValues(e.Strategy, outcome).Inc()
			m.installDuration.WithLabelValues(e.Strategy).Observe(e.Duration.Seconds())
		},
	}
}
