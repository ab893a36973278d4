package scheduler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/wrsn/core/model"
)

func TestDecodeConfigYAML(t *testing.T) {
	in := `
policy: threshold
leakage_multiplier: 0.005
threshold_pct: 10
duration_ms: 60000
`
	cfg, err := DecodeConfig(strings.NewReader(in), "yaml")
	require.NoError(t, err)
	assert.Equal(t, PolicyThreshold, cfg.Policy)
	assert.InDelta(t, 0.1, cfg.Threshold(), 1e-12)
	assert.Equal(t, 15, cfg.CheckpointCycle)
	assert.Equal(t, 1.0, cfg.IdleDecay)
	assert.Equal(t, time.Minute, cfg.Budget().Duration)
}

func TestDecodeConfigJSON(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(`{"max_cycles": 5, "unit_ms": 2}`), "json")
	require.NoError(t, err)
	assert.Equal(t, PolicyRoundRobin, cfg.Policy)
	assert.Equal(t, 5, cfg.Budget().MaxCycles)
	assert.Equal(t, 6*time.Millisecond, cfg.unit(3))
}

func TestDecodeConfigUnsupportedFormat(t *testing.T) {
	_, err := DecodeConfig(strings.NewReader(""), "toml")
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yml")
	require.NoError(t, os.WriteFile(path, []byte("max_cycles: 3\ndedicated_chargers: true\n"), 0o600))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxCycles)
	assert.Equal(t, 60.0, cfg.DedicatedCapacity)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]Config{
		"policy":    {Policy: "random", MaxCycles: 1},
		"threshold": {Policy: PolicyThreshold, MaxCycles: 1},
		"leakage":   {LeakageMultiplier: -1, MaxCycles: 1},
		"budget":    {},
		"negative":  {MaxCycles: -1},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			cfg.SetDefaults()
			assert.ErrorIs(t, cfg.Validate(), model.ErrConfiguration)
		})
	}
}
