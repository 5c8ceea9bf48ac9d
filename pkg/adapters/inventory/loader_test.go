package inventory_test

import (
	"context"
	"testing"

	"github.com/aretw0/tiller/pkg/adapters/inventory"
	"github.com/aretw0/tiller/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInventory = `
targets:
  - name: web-1
    transport: ssh
    install:
      strategy: script
      options:
        command: ./provision.sh {{target}}
    vars:
      host: 10.0.0.5
      port: 2222
  - name: web-2
    transport: ssh
    features: [tiller.agent]
  - name: edge-1
    remote: true
groups:
  web: [web-1, web-2]
`

func TestParse(t *testing.T) {
	r, err := inventory.Parse([]byte(sampleInventory))
	require.NoError(t, err)

	t.Run("Expand all preserves order", func(t *testing.T) {
		targets, err := r.Expand(context.Background(), "all")
		require.NoError(t, err)
		require.Len(t, targets, 3)
		assert.Equal(t, "web-1", targets[0].Name)
		assert.Equal(t, "edge-1", targets[2].Name)
	})

	t.Run("Target fields decode", func(t *testing.T) {
		targets, err := r.Expand(context.Background(), "web-1")
		require.NoError(t, err)
		require.Len(t, targets, 1)

		web := targets[0]
		assert.Equal(t, "ssh", web.Transport)
		assert.Equal(t, "script", web.Install.Strategy)
		assert.Equal(t, "./provision.sh {{target}}", web.Install.Options["command"])
		assert.Equal(t, "10.0.0.5", web.StringVar("host", ""))
	})

	t.Run("Declared features decode", func(t *testing.T) {
		targets, err := r.Expand(context.Background(), "web-2")
		require.NoError(t, err)
		assert.True(t, targets[0].HasFeature(domain.FeatureAgent))
	})

	t.Run("Remote flag decodes", func(t *testing.T) {
		targets, err := r.Expand(context.Background(), "edge-1")
		require.NoError(t, err)
		assert.True(t, targets[0].Remote)
	})

	t.Run("Group expansion", func(t *testing.T) {
		targets, err := r.Expand(context.Background(), "web")
		require.NoError(t, err)
		require.Len(t, targets, 2)
		assert.Equal(t, "web-1", targets[0].Name)
		assert.Equal(t, "web-2", targets[1].Name)
	})

	t.Run("Unknown spec fails", func(t *testing.T) {
		_, err := r.Expand(context.Background(), "db-9")
		assert.Error(t, err)
	})
}

func TestParse_Validation(t *testing.T) {
	t.Run("Missing name", func(t *testing.T) {
		_, err := inventory.Parse([]byte("targets:\n  - transport: ssh\n"))
		assert.Error(t, err)
	})

	t.Run("Duplicate name", func(t *testing.T) {
		_, err := inventory.Parse([]byte("targets:\n  - name: a\n  - name: a\n"))
		assert.Error(t, err)
	})

	t.Run("Group with unknown member", func(t *testing.T) {
		_, err := inventory.Parse([]byte("targets:\n  - name: a\ngroups:\n  g: [b]\n"))
		assert.Error(t, err)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		_, err := inventory.Parse([]byte("targets: ["))
		assert.Error(t, err)
	})
}
