package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/tiller/pkg/domain"
	"github.com/aretw0/tiller/pkg/ports"
	"github.com/aretw0/tiller/pkg/registry"
	"github.com/google/uuid"
)

const defaultInstallWorkers = 4

// Deps bundles the collaborators the preparation engine drives.
// All fields are required.
type Deps struct {
	Targets   ports.TargetResolver
	Tasks     ports.TaskResolver
	Runner    ports.TaskRunner
	Registry  *registry.Registry
	Features  ports.FeatureStore
	Facts     ports.FactStore
	Transport ports.Transport
	Payload   ports.PayloadBuilder
}

// Engine runs the preparation pipeline: feature detection, version probing,
// concurrent agent installation and batched fact gathering.
type Engine struct {
	deps    Deps
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	workers int
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithInstallWorkers bounds the install worker pool (default 4).
func WithInstallWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine creates an engine with dependencies.
func NewEngine(deps Deps, opts ...EngineOption) *Engine {
	e := &Engine{
		deps:    deps,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: defaultInstallWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run carries per-call identity through the phases.
type run struct {
	id  string
	log *slog.Logger
}

// Prepare expands the target spec, ensures every target carries the agent
// and collects facts from all of them in one batch.
//
// Aggregate phase failures short-circuit the pipeline: a failed probe runs
// no installs, a failed install gathers no facts. Targets that individually
// succeeded in a failed phase keep their recorded feature state (so a
// retrying caller skips them at detection), even though Prepare returns the
// aggregate error.
func (e *Engine) Prepare(ctx context.Context, spec string) error {
	if e.deps.Runner == nil || !e.deps.Runner.SupportsRemote() {
		return fmt.Errorf("%w: task runner cannot reach remote targets", domain.ErrUnsupportedContext)
	}

	r := &run{id: uuid.NewString()}
	r.log = e.logger.With("run_id", r.id, "spec", spec)

	targets, err := e.deps.Targets.Expand(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to expand target spec %q: %w", spec, err)
	}
	if len(targets) == 0 {
		r.log.Warn("target spec matched no targets")
		return nil
	}
	r.log.Info("starting preparation", "targets", len(targets))

	prepared, unknown, err := e.detect(ctx, targets)
	if err != nil {
		return err
	}
	r.log.Info("feature detection complete", "prepared", len(prepared), "unknown", len(unknown))

	needInstall, err := e.probe(ctx, r, unknown)
	if err != nil {
		return err
	}

	if err := e.install(ctx, r, needInstall); err != nil {
		return err
	}

	return e.gatherFacts(ctx, r, targets)
}

func (e *Engine) phaseStart(ctx context.Context, r *run, phase string, targets int) {
	if e.hooks.OnPhaseStart == nil {
		return
	}
	e.hooks.OnPhaseStart(ctx, &domain.PhaseEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPhaseStart, RunID: r.id},
		Phase:     phase,
		Targets:   targets,
	})
}

func (e *Engine) phaseEnd(ctx context.Context, r *run, phase string, targets, failed int) {
	if e.hooks.OnPhaseEnd == nil {
		return
	}
	e.hooks.OnPhaseEnd(ctx, &domain.PhaseEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPhaseEnd, RunID: r.id},
		Phase:     phase,
		Targets:   targets,
		Failed:    failed,
	})
}
