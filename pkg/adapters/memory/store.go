// Package memory provides in-memory implementations of the Tiller ports.
// They back the default engine wiring and make tests self-contained.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/tiller/pkg/domain"
)

// Store implements ports.FeatureStore and ports.FactStore with a mutex-guarded map.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	features map[string]map[string]struct{}
	facts    map[string]map[string]any
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		features: make(map[string]map[string]struct{}),
		facts:    make(map[string]map[string]any),
	}
}

// SetFeature records a feature for the target. Recording twice is a no-op.
func (s *Store) SetFeature(ctx context.Context, target *domain.Target, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.features[target.Name]
	if !ok {
		set = make(map[string]struct{})
		s.features[target.Name] = set
	}
	set[name] = struct{}{}
	return nil
}

// Features returns a copy of the target's recorded feature set.
func (s *Store) Features(ctx context.Context, target *domain.Target) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.features[target.Name]))
	for f := range s.features[target.Name] {
		out[f] = struct{}{}
	}
	return out, nil
}

// MergeFacts merges the payload into the target's facts, overwriting same keys.
func (s *Store) MergeFacts(ctx context.Context, target *domain.Target, payload map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.facts[target.Name]
	if !ok {
		stored = make(map[string]any)
		s.facts[target.Name] = stored
	}
	for k, v := range payload {
		stored[k] = v
	}
	return nil
}

// Facts returns a copy of the target's stored facts.
func (s *Store) Facts(ctx context.Context, target *domain.Target) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.facts[target.Name]))
	for k, v := range s.facts[target.Name] {
		out[k] = v
	}
	return out, nil
}
