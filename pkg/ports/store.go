package ports

import (
	"context"

	"github.com/aretw0/tiller/pkg/domain"
)

// FeatureStore records capability markers per target during a run.
//
// The engine only writes a feature after the corresponding Result is known
// to be a success, and only reads after the writing phase has fully joined.
// Implementations must still be safe for concurrent use, since lifecycle
// hooks may observe the store while install workers are completing.
type FeatureStore interface {
	// SetFeature records a feature for the target. Recording the same
	// feature twice is a no-op, not an error.
	SetFeature(ctx context.Context, target *domain.Target, name string) error

	// Features returns the set of recorded features for the target.
	Features(ctx context.Context, target *domain.Target) (map[string]struct{}, error)
}

// FactStore holds the structured facts collected from targets.
type FactStore interface {
	// MergeFacts merges the payload into the target's stored facts,
	// overwriting previous values for the same keys.
	MergeFacts(ctx context.Context, target *domain.Target, payload map[string]any) error

	// Facts returns the target's stored facts. Missing targets yield an
	// empty map, not an error.
	Facts(ctx context.Context, target *domain.Target) (map[string]any, error)
}

// Transport reports the capability set a transport kind provides to every
// target reached through it.
type Transport interface {
	ProvidedFeatures(kind string) map[string]struct{}
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(kind string) map[string]struct{}

func (f TransportFunc) ProvidedFeatures(kind string) map[string]struct{} {
	return f(kind)
}

// PayloadBuilder packages the opaque bundle shipped with the facts task.
// The perModule callback, when non-nil, contributes module-specific chunks
// keyed by module name; how the bundle is assembled is up to the host.
type PayloadBuilder interface {
	BuildFactsBundle(perModule func(module string) []byte) (any, error)
}

// PayloadBuilderFunc adapts a function to the PayloadBuilder interface.
type PayloadBuilderFunc func(perModule func(module string) []byte) (any, error)

func (f PayloadBuilderFunc) BuildFactsBundle(perModule func(module string) []byte) (any, error) {
	return f(perModule)
}
