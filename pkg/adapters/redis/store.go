// Package redis provides a Redis-backed feature and fact store, letting
// multiple preparation runs (or processes) share recorded target state.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/tiller/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.FeatureStore and ports.FactStore using Redis.
// Features live in a set per target, facts in a hash per target.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets an expiration for per-target state.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "tiller:target:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) featureKey(target string) string {
	return s.prefix + target + ":features"
}

func (s *Store) factKey(target string) string {
	return s.prefix + target + ":facts"
}

// SetFeature records a feature for the target. SADD makes repeats a no-op.
func (s *Store) SetFeature(ctx context.Context, target *domain.Target, name string) error {
	pipe := s.client.Pipeline()
	key := s.featureKey(target.Name)
	pipe.SAdd(ctx, key, name)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record feature in redis: %w", err)
	}
	return nil
}

// Features returns the recorded feature set for the target.
func (s *Store) Features(ctx context.Context, target *domain.Target) (map[string]struct{}, error) {
	members, err := s.client.SMembers(ctx, s.featureKey(target.Name)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read features from redis: %w", err)
	}
	out := make(map[string]struct{}, len(members))
	for _, m := range members {
		out[m] = struct{}{}
	}
	return out, nil
}

// MergeFacts merges the payload into the target's fact hash, overwriting
// same keys. Values are stored JSON-encoded to survive the round trip.
func (s *Store) MergeFacts(ctx context.Context, target *domain.Target, payload map[string]any) error {
	if len(payload) == 0 {
		return nil
	}

	fields := make(map[string]string, len(payload))
	for k, v := range payload {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal fact %q: %w", k, err)
		}
		fields[k] = string(data)
	}

	pipe := s.client.Pipeline()
	key := s.factKey(target.Name)
	pipe.HSet(ctx, key, fields)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to merge facts in redis: %w", err)
	}
	return nil
}

// Facts returns the target's stored facts.
func (s *Store) Facts(ctx context.Context, target *domain.Target) (map[string]any, error) {
	fields, err := s.client.HGetAll(ctx, s.factKey(target.Name)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read facts from redis: %w", err)
	}

	out := make(map[string]any, len(fields))
	for k, raw := range fields {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			// Tolerate values written by other tools.
			out[k] = raw
			continue
		}
		out[k] = v
	}
	return out, nil
}
