package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tiller/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunFeatureStoreContract runs a suite of tests to verify that a
// FeatureStore implementation adheres to the defined interface contract.
func RunFeatureStoreContract(t *testing.T, store FeatureStore) {
	ctx := context.Background()
	target := &domain.Target{Name: "contract-" + time.Now().Format("20060102150405")}

	t.Run("Empty by default", func(t *testing.T) {
		features, err := store.Features(ctx, target)
		require.NoError(t, err)
		assert.Empty(t, features)
	})

	t.Run("Set and read back", func(t *testing.T) {
		require.NoError(t, store.SetFeature(ctx, target, domain.FeatureAgent))

		features, err := store.Features(ctx, target)
		require.NoError(t, err)
		assert.Contains(t, features, domain.FeatureAgent)
	})

	t.Run("Set is idempotent", func(t *testing.T) {
		require.NoError(t, store.SetFeature(ctx, target, domain.FeatureAgent))
		require.NoError(t, store.SetFeature(ctx, target, domain.FeatureAgent))

		features, err := store.Features(ctx, target)
		require.NoError(t, err)
		assert.Len(t, features, 1)
	})

	t.Run("Targets are isolated", func(t *testing.T) {
		other := &domain.Target{Name: target.Name + "-other"}
		features, err := store.Features(ctx, other)
		require.NoError(t, err)
		assert.NotContains(t, features, domain.FeatureAgent)
	})
}

// RunFactStoreContract runs a suite of tests to verify that a FactStore
// implementation adheres to the defined interface contract.
func RunFactStoreContract(t *testing.T, store FactStore) {
	ctx := context.Background()
	target := &domain.Target{Name: "contract-" + time.Now().Format("20060102150405")}

	t.Run("Missing target yields empty map", func(t *testing.T) {
		facts, err := store.Facts(ctx, target)
		require.NoError(t, err)
		assert.Empty(t, facts)
	})

	t.Run("Merge and read back", func(t *testing.T) {
		require.NoError(t, store.MergeFacts(ctx, target, map[string]any{
			"os":     "linux",
			"cpus":   "4",
			"kernel": "6.1",
		}))

		facts, err := store.Facts(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, "linux", facts["os"])
		assert.Equal(t, "6.1", facts["kernel"])
	})

	t.Run("Merge overwrites same keys and keeps others", func(t *testing.T) {
		require.NoError(t, store.MergeFacts(ctx, target, map[string]any{
			"kernel": "6.8",
		}))

		facts, err := store.Facts(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, "6.8", facts["kernel"], "same key should be overwritten")
		assert.Equal(t, "linux", facts["os"], "unrelated keys should survive")
	})
}
