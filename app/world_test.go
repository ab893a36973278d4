package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/wrsn/config"
	"github.com/kilianp07/wrsn/core/model"
	"github.com/kilianp07/wrsn/core/placement"
	"github.com/kilianp07/wrsn/core/scheduler"
)

func explicitConfig() *config.Config {
	cfg := &config.Config{
		Field: config.FieldConfig{
			Width: 10, Height: 12, MasterCapacity: 60, Radius: 2,
			Peripherals: []config.PeripheralConfig{
				{X: 2, Y: 4, Capacity: 20, Charge: 10},
				{X: 1, Y: 6, Capacity: 20, Charge: 10, Threshold: 0.3},
				{X: 8, Y: 11, Capacity: 20, Charge: 10},
			},
		},
		Simulation: scheduler.Config{MaxCycles: 3},
	}
	cfg.Field.SetDefaults()
	cfg.Simulation.SetDefaults()
	return cfg
}

func TestBuildWorldExplicitPeripherals(t *testing.T) {
	w, err := BuildWorld(explicitConfig())
	require.NoError(t, err)

	assert.Len(t, w.Peripherals, 3)
	assert.Len(t, w.Clusters, 3)
	assert.True(t, w.Master.Master)
	st, ok := w.Field.Station()
	require.True(t, ok)
	assert.InDelta(t, 1, st.Location.DistanceTo(w.Master.Location), 1e-9, "master docks next to the station")
	assert.Equal(t, 0.3, w.Peripherals[1].Threshold)
	for _, c := range w.Clusters {
		for _, p := range c.Members() {
			assert.Equal(t, c.ID, p.Cluster)
		}
	}
}

func TestBuildWorldRandomPlacement(t *testing.T) {
	cfg := explicitConfig()
	cfg.Field.Peripherals = nil
	cfg.Field.Width, cfg.Field.Height = 20, 20
	cfg.Placement = placement.Config{Count: 12, Seed: 7}
	cfg.Placement.SetDefaults()

	w, err := BuildWorld(cfg)
	require.NoError(t, err)
	assert.Len(t, w.Peripherals, 12)
	assert.Equal(t, 12, w.Field.NumPeripherals())
}

func TestBuildWorldDedicatedChargers(t *testing.T) {
	cfg := explicitConfig()
	cfg.Simulation.DedicatedChargers = true
	cfg.Simulation.SetDefaults()

	w, err := BuildWorld(cfg)
	require.NoError(t, err)
	// master plus one per cluster
	assert.Len(t, w.Field.Chargers(), 1+len(w.Clusters))
	for _, c := range w.Clusters {
		require.NotNil(t, c.Charger)
		assert.False(t, c.Charger.Master)
		assert.Equal(t, 60.0, c.Charger.Capacity)
	}
}

func TestBuildWorldRejectsCollidingPeripherals(t *testing.T) {
	cfg := explicitConfig()
	cfg.Field.Peripherals[1].X, cfg.Field.Peripherals[1].Y = 2, 4

	_, err := BuildWorld(cfg)
	require.Error(t, err)
	var occ *model.LocationOccupiedError
	assert.True(t, errors.As(err, &occ))
	assert.True(t, errors.Is(err, model.ErrLocationOccupied))
}

func TestBuildWorldRejectsInvalidField(t *testing.T) {
	cfg := explicitConfig()
	cfg.Field.Width = 0
	_, err := BuildWorld(cfg)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}
