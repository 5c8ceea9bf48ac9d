package tiller_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/tiller"
	"github.com/aretw0/tiller/pkg/adapters/memory"
	"github.com/aretw0/tiller/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresRunner(t *testing.T) {
	_, err := tiller.New("inventory.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task runner")
}

func TestNew_RequiresInventoryOrResolver(t *testing.T) {
	_, err := tiller.New("", tiller.WithTaskRunner(memory.NewRunner()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventoryPath")
}

func TestNew_MissingInventoryFile(t *testing.T) {
	_, err := tiller.New(filepath.Join(t.TempDir(), "nope.yml"), tiller.WithTaskRunner(memory.NewRunner()))
	require.Error(t, err)
}

func TestEngine_PrepareFromInventory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.yml")
	data := `
targets:
  - name: web-1
    transport: ssh
    install:
      strategy: noop
  - name: web-2
    transport: ssh
    install:
      strategy: noop
groups:
  web: [web-1, web-2]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	runner := memory.NewRunner()
	runner.Handle(domain.TaskProbeVersion, func(target *domain.Target, args map[string]any) domain.Result {
		return domain.OK(target.Name, map[string]any{})
	})
	runner.Handle(domain.TaskCollectFacts, func(target *domain.Target, args map[string]any) domain.Result {
		return domain.OK(target.Name, map[string]any{"hostname": target.Name})
	})

	eng, err := tiller.New(path, tiller.WithTaskRunner(runner))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, eng.Prepare(ctx, "web"))

	for _, name := range []string{"web-1", "web-2"} {
		target := &domain.Target{Name: name}

		features, err := eng.Features(ctx, target)
		require.NoError(t, err)
		assert.Contains(t, features, domain.FeatureAgent)

		facts, err := eng.Facts(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, name, facts["hostname"])
	}
}

func TestEngine_PrepareIsRepeatable(t *testing.T) {
	targets := []*domain.Target{
		{Name: "db-1", Install: domain.InstallConfig{Strategy: "noop"}},
	}

	runner := memory.NewRunner()
	runner.Handle(domain.TaskProbeVersion, func(target *domain.Target, args map[string]any) domain.Result {
		return domain.OK(target.Name, map[string]any{})
	})
	runner.Handle(domain.TaskCollectFacts, func(target *domain.Target, args map[string]any) domain.Result {
		return domain.OK(target.Name, map[string]any{"up": true})
	})

	eng, err := tiller.New("",
		tiller.WithTaskRunner(runner),
		tiller.WithTargetResolver(memory.NewStaticResolver(targets...)),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, eng.Prepare(ctx, "all"))
	require.NoError(t, eng.Prepare(ctx, "all"))

	probes := 0
	for _, call := range runner.Calls() {
		if call.Task == domain.TaskProbeVersion {
			probes++
		}
	}
	assert.Equal(t, 1, probes, "second run should skip probing prepared targets")
}
