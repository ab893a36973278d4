package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/wrsn/core/model"
)

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy(Config{Policy: PolicyRoundRobin})
	require.NoError(t, err)
	assert.Equal(t, PolicyRoundRobin, p.Name())

	p, err = NewPolicy(Config{Policy: PolicyThreshold, ThresholdPct: 20})
	require.NoError(t, err)
	assert.Equal(t, PolicyThreshold, p.Name())

	_, err = NewPolicy(Config{Policy: "nope"})
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestRoundRobinWithoutClusters(t *testing.T) {
	_, _, ok := (&RoundRobin{}).Next(nil, nil)
	assert.False(t, ok)
}

func TestThresholdPurgesDispatchedCluster(t *testing.T) {
	_, ps := newField(t, 100,
		peripheralSpec{loc: model.Location{X: 2, Y: 2}, capacity: 10, charge: 1},
		peripheralSpec{loc: model.Location{X: 15, Y: 15}, capacity: 10, charge: 1},
		peripheralSpec{loc: model.Location{X: 3, Y: 2}, capacity: 10, charge: 0.5},
	)
	clusters := build(t, ps, 2)
	require.Len(t, clusters, 2)

	th := NewThreshold(0.2)
	c, trigger, ok := th.Next(ps, clusters)
	require.True(t, ok)
	assert.Equal(t, ps[0].ID, trigger)
	assert.True(t, c.Contains(ps[2].ID))
	assert.Equal(t, []model.EntityID{ps[1].ID}, th.Queue())
	assert.Equal(t, 1, th.QueueLength())

	// Still low, so readmitted behind the peripheral already waiting.
	_, trigger, ok = th.Next(ps, clusters)
	require.True(t, ok)
	assert.Equal(t, ps[1].ID, trigger)
	assert.Equal(t, []model.EntityID{ps[0].ID, ps[2].ID}, th.Queue())
}

func TestThresholdSkipsFailedHead(t *testing.T) {
	_, ps := newField(t, 100,
		peripheralSpec{loc: model.Location{X: 2, Y: 2}, capacity: 10, charge: 1},
		peripheralSpec{loc: model.Location{X: 15, Y: 15}, capacity: 10, charge: 1},
	)
	clusters := build(t, ps, 2)
	th := NewThreshold(0.2)
	th.Admit(ps)
	ps[0].Fail()

	_, trigger, ok := th.Next(ps, clusters)
	require.True(t, ok)
	assert.Equal(t, ps[1].ID, trigger)
	assert.Zero(t, th.QueueLength())
}

func TestThresholdPerPeripheralOverride(t *testing.T) {
	_, ps := newField(t, 100,
		peripheralSpec{loc: model.Location{X: 2, Y: 2}, capacity: 10, charge: 4},
		peripheralSpec{loc: model.Location{X: 15, Y: 15}, capacity: 10, charge: 4},
	)
	ps[1].Threshold = 0.5
	th := NewThreshold(0.1)
	th.Admit(ps)
	assert.Equal(t, []model.EntityID{ps[1].ID}, th.Queue())
}

func TestStateTransitions(t *testing.T) {
	assert.True(t, canTransition(StateIdle, StateTraveling))
	assert.True(t, canTransition(StateReplenishing, StateTerminated))
	assert.False(t, canTransition(StateTerminated, StateIdle))
	assert.Equal(t, "transferring", StateTransferring.String())
}
