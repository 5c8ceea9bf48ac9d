package tiller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tiller/internal/runtime"
	"github.com/aretw0/tiller/pkg/adapters/inventory"
	"github.com/aretw0/tiller/pkg/adapters/memory"
	"github.com/aretw0/tiller/pkg/domain"
	"github.com/aretw0/tiller/pkg/ports"
	"github.com/aretw0/tiller/pkg/registry"
)

// Version is the release version reported by the CLI.
var Version = "0.1.0"

// Engine is the high-level entry point for the Tiller library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime     *runtime.Engine
	deps        runtime.Deps
	runtimeOpts []runtime.EngineOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithTaskRunner injects the transport used to reach targets.
// A runner is always required; there is no default.
func WithTaskRunner(r ports.TaskRunner) Option {
	return func(e *Engine) {
		e.deps.Runner = r
	}
}

// WithTargetResolver injects a custom target resolver, bypassing the
// default inventory file loader.
func WithTargetResolver(r ports.TargetResolver) Option {
	return func(e *Engine) {
		e.deps.Targets = r
	}
}

// WithTaskResolver overrides the built-in task catalog.
func WithTaskResolver(r ports.TaskResolver) Option {
	return func(e *Engine) {
		e.deps.Tasks = r
	}
}

// WithFeatureStore overrides the in-memory feature store.
func WithFeatureStore(s ports.FeatureStore) Option {
	return func(e *Engine) {
		e.deps.Features = s
	}
}

// WithFactStore overrides the in-memory fact store.
func WithFactStore(s ports.FactStore) Option {
	return func(e *Engine) {
		e.deps.Facts = s
	}
}

// WithTransport declares the capability sets transports provide to targets.
func WithTransport(t ports.Transport) Option {
	return func(e *Engine) {
		e.deps.Transport = t
	}
}

// WithPayloadBuilder overrides how the facts bundle is assembled.
func WithPayloadBuilder(p ports.PayloadBuilder) Option {
	return func(e *Engine) {
		e.deps.Payload = p
	}
}

// WithRegistry injects a pre-populated strategy registry.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.deps.Registry = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithInstallWorkers bounds the install worker pool.
func WithInstallWorkers(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithInstallWorkers(n))
	}
}

// New initializes a Tiller Engine.
// By default, it resolves targets from a YAML inventory at the given path.
// If WithTargetResolver is provided, inventoryPath can be empty and the
// inventory file is skipped. A task runner must always be supplied.
func New(inventoryPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	// Apply options first to check what was injected
	for _, opt := range opts {
		opt(eng)
	}

	if eng.deps.Runner == nil {
		return nil, fmt.Errorf("a task runner is required (use WithTaskRunner)")
	}

	if eng.deps.Targets == nil {
		if inventoryPath == "" {
			return nil, fmt.Errorf("inventoryPath is required when no custom target resolver is provided")
		}
		resolver, err := inventory.Load(inventoryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load inventory: %w", err)
		}
		eng.deps.Targets = resolver
		eng.Name = inventoryPath
	}

	if eng.deps.Tasks == nil {
		eng.deps.Tasks = memory.DefaultTaskSet()
	}
	if eng.deps.Features == nil || eng.deps.Facts == nil {
		store := memory.NewStore()
		if eng.deps.Features == nil {
			eng.deps.Features = store
		}
		if eng.deps.Facts == nil {
			eng.deps.Facts = store
		}
	}
	if eng.deps.Registry == nil {
		eng.deps.Registry = registry.New()
	}
	if eng.deps.Payload == nil {
		eng.deps.Payload = ports.PayloadBuilderFunc(defaultFactsBundle)
	}
	if eng.deps.Transport == nil {
		eng.deps.Transport = DefaultTransport()
	}

	if eng.logger != nil {
		eng.runtimeOpts = append(eng.runtimeOpts, runtime.WithLogger(eng.logger))
	}
	eng.runtimeOpts = append(eng.runtimeOpts, runtime.WithLifecycleHooks(eng.hooks))

	eng.runtime = runtime.NewEngine(eng.deps, eng.runtimeOpts...)
	return eng, nil
}

// Prepare ensures every target matched by spec runs the agent, then collects
// facts from all of them. It is safe to call repeatedly; already prepared
// targets skip straight to fact collection.
func (e *Engine) Prepare(ctx context.Context, spec string) error {
	return e.runtime.Prepare(ctx, spec)
}

// Facts returns the stored facts for a target.
func (e *Engine) Facts(ctx context.Context, target *domain.Target) (map[string]any, error) {
	return e.deps.Facts.Facts(ctx, target)
}

// Features returns the recorded features for a target.
func (e *Engine) Features(ctx context.Context, target *domain.Target) (map[string]struct{}, error) {
	return e.deps.Features.Features(ctx, target)
}

// DefaultTransport declares the capability sets the built-in transport kinds
// provide. Only the "agentful" kind carries the agent by itself; everything
// else (including "ssh") provides nothing and goes through probing.
func DefaultTransport() ports.Transport {
	return ports.TransportFunc(func(kind string) map[string]struct{} {
		if kind == "agentful" {
			return map[string]struct{}{domain.FeatureAgent: {}}
		}
		return nil
	})
}

// defaultFactsBundle ships an empty instruction set; the agent then collects
// its default fact modules.
func defaultFactsBundle(perModule func(module string) []byte) (any, error) {
	bundle := map[string]any{"modules": map[string]any{}}
	if perModule == nil {
		return bundle, nil
	}
	modules := bundle["modules"].(map[string]any)
	for _, name := range []string{"system", "network"} {
		if chunk := perModule(name); chunk != nil {
			modules[name] = string(chunk)
		}
	}
	return bundle, nil
}
