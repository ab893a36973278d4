package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/wrsn/core/field"
	"github.com/kilianp07/wrsn/core/model"
)

func TestPlaceIsReproducible(t *testing.T) {
	cfg := Config{Count: 12, MinX: 1, MaxX: 19, MinY: 2, MaxY: 19, Seed: 42}
	locs := func() []model.Location {
		f, err := field.New(20, 20)
		require.NoError(t, err)
		p, err := New(cfg)
		require.NoError(t, err)
		ps, err := p.Place(f)
		require.NoError(t, err)
		out := make([]model.Location, len(ps))
		for i, per := range ps {
			out[i] = per.Location
		}
		return out
	}
	first := locs()
	assert.Len(t, first, 12)
	assert.Equal(t, first, locs())
}

func TestPlaceRespectsBounds(t *testing.T) {
	f, err := field.New(20, 20)
	require.NoError(t, err)
	p, err := New(Config{Count: 30, MinX: 1, MaxX: 19, MinY: 2, MaxY: 19, MinCapacity: 10, MaxCapacity: 30, Seed: 7, Threshold: 0.2})
	require.NoError(t, err)
	ps, err := p.Place(f)
	require.NoError(t, err)

	seen := map[model.Location]bool{}
	for _, per := range ps {
		if per.Location.X < 1 || per.Location.Y < 2 {
			t.Fatalf("peripheral %d placed at %+v", per.ID, per.Location)
		}
		if seen[per.Location] {
			t.Fatalf("two peripherals share %+v", per.Location)
		}
		seen[per.Location] = true
		assert.GreaterOrEqual(t, per.Capacity, 10.0)
		assert.LessOrEqual(t, per.Capacity, 30.0)
		assert.Equal(t, per.Capacity, per.Charge)
		assert.Equal(t, 0.2, per.Threshold)
	}
	assert.Equal(t, 30, f.NumPeripherals())
}

func TestPlaceGivesUpWhenFieldIsFull(t *testing.T) {
	f, err := field.New(2, 2)
	require.NoError(t, err)
	p, err := New(Config{Count: 5, MaxAttempts: 200})
	require.NoError(t, err)
	ps, err := p.Place(f)
	assert.ErrorIs(t, err, model.ErrConfiguration)
	assert.Len(t, ps, 4)
}

func TestConfigValidate(t *testing.T) {
	bad := []Config{
		{Count: -1},
		{MinCapacity: 5, MaxCapacity: 1},
		{MinChargePct: 50, MaxChargePct: 120},
		{MinX: 5, MaxX: 1},
		{Threshold: 2},
	}
	for _, c := range bad {
		c.SetDefaults()
		assert.ErrorIs(t, c.Validate(), model.ErrConfiguration, "%+v", c)
	}
}

func TestChargeForFullBatteryIsExact(t *testing.T) {
	for _, capacity := range []float64{14.758615879474686, 0.1, 29.999999, 10} {
		if got := chargeFor(capacity, 100); got != capacity {
			t.Fatalf("chargeFor(%v, 100) = %v", capacity, got)
		}
	}
	assert.InDelta(t, 5.0, chargeFor(20, 25), 1e-12)
	assert.Zero(t, chargeFor(20, 0))
}
