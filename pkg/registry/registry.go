package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/tiller/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ErrStrategyNotFound is returned when resolving an unregistered strategy name.
var ErrStrategyNotFound = errors.New("install strategy not found")

// Strategy implements one way of installing the agent on a target.
// The returned map becomes the success payload of the target's install Result.
type Strategy interface {
	Install(ctx context.Context, target *domain.Target, options map[string]any) (map[string]any, error)
}

// OptionValidator is implemented by strategies with typed options. The
// registry validates options when resolving a hook, so an undecodable or
// incomplete configuration rejects the target before anything runs.
type OptionValidator interface {
	ValidateOptions(options map[string]any) error
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(ctx context.Context, target *domain.Target, options map[string]any) (map[string]any, error)

func (f StrategyFunc) Install(ctx context.Context, target *domain.Target, options map[string]any) (map[string]any, error) {
	return f(ctx, target, options)
}

// Registry maps install-strategy names to implementations.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// New creates a registry preloaded with the built-in strategies.
func New() *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	r.Register("noop", StrategyFunc(noopInstall))
	r.Register("script", &ScriptStrategy{})
	return r
}

// Register adds a strategy to the registry.
// If a strategy with the same name exists, it is overwritten.
func (r *Registry) Register(name string, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[name] = s
}

// InstallHook resolves a strategy by name and binds it to the target and its
// options, producing a runnable hook. Resolution fails independently of
// execution: an unknown name or undecodable options never runs anything.
func (r *Registry) InstallHook(name string, options map[string]any, target *domain.Target) (domain.InstallHook, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: target %q has no install strategy configured", ErrStrategyNotFound, target.Name)
	}

	r.mu.RLock()
	s, ok := r.strategies[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStrategyNotFound, name)
	}

	if v, ok := s.(OptionValidator); ok {
		if err := v.ValidateOptions(options); err != nil {
			return nil, fmt.Errorf("strategy %q: %w", name, err)
		}
	}

	return func(ctx context.Context) (map[string]any, error) {
		return s.Install(ctx, target, options)
	}, nil
}

// DecodeOptions decodes a raw options map into a strategy's typed options
// struct. Unknown keys are an error so inventory typos surface at resolution
// time rather than silently installing with defaults.
func DecodeOptions(options map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(options); err != nil {
		return fmt.Errorf("invalid strategy options: %w", err)
	}
	return nil
}
