package cluster

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/wrsn/core/field"
	"github.com/kilianp07/wrsn/core/model"
)

func place(t *testing.T, f *field.Field, pts ...model.Location) []*model.Peripheral {
	t.Helper()
	out := make([]*model.Peripheral, len(pts))
	for i, l := range pts {
		p := model.NewPeripheral(10, 10)
		require.NoError(t, f.Register(p, l.X, l.Y))
		out[i] = p
	}
	return out
}

func TestBuildThreeSingletons(t *testing.T) {
	f, err := field.New(10, 12)
	require.NoError(t, err)
	ps := place(t, f, model.Location{X: 2, Y: 4}, model.Location{X: 1, Y: 6}, model.Location{X: 8, Y: 11})

	clusters, err := Build(ps, 2)
	require.NoError(t, err)
	require.Len(t, clusters, 3)
	for i, c := range clusters {
		assert.Equal(t, 1, c.Size())
		assert.Equal(t, ps[i].Location, c.Centroid)
		assert.Equal(t, []int{0}, c.Path())
		assert.Equal(t, 0.0, c.PathLength)
		assert.Equal(t, 0.0, c.Diameter)
	}
}

func TestBuildGroupsWithinRadius(t *testing.T) {
	f, err := field.New(20, 20)
	require.NoError(t, err)
	ps := place(t, f,
		model.Location{X: 5, Y: 5},
		model.Location{X: 6, Y: 5},
		model.Location{X: 15, Y: 15},
		model.Location{X: 5, Y: 7},
	)
	clusters, err := Build(ps, 2)
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Equal(t, 3, clusters[0].Size())
	assert.Equal(t, model.Location{X: 5, Y: 5}, clusters[0].Centroid)
	assert.InDelta(t, math.Sqrt(5), clusters[0].Diameter, 1e-9)
	assert.Equal(t, 1, clusters[1].Size())
}

func TestBuildIsPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	f, err := field.New(40, 40)
	require.NoError(t, err)
	var ps []*model.Peripheral
	for len(ps) < 60 {
		p := model.NewPeripheral(20, 20)
		if err := f.Register(p, rng.Intn(40), rng.Intn(40)); err != nil {
			continue
		}
		ps = append(ps, p)
	}
	input := make([]*model.Peripheral, len(ps))
	copy(input, ps)

	for _, r := range []float64{0, 1.5, 4, 10} {
		clusters, err := Build(input, r)
		require.NoError(t, err)
		seen := make(map[*model.Peripheral]int)
		for _, c := range clusters {
			for _, m := range c.Members() {
				seen[m]++
				assert.LessOrEqual(t, c.Centroid.DistanceTo(m.Location), r)
			}
		}
		assert.Len(t, seen, len(ps), "radius %v", r)
		for p, n := range seen {
			assert.Equal(t, 1, n, "peripheral %d seen %d times", p.ID, n)
		}
	}
	assert.Equal(t, ps, input, "input must not be mutated")
}

func TestBuildErrors(t *testing.T) {
	_, err := Build([]*model.Peripheral{model.NewPeripheral(1, 1), nil}, 1)
	assert.ErrorIs(t, err, model.ErrInvariantViolation)

	_, err = Build(nil, -1)
	assert.ErrorIs(t, err, model.ErrConfiguration)

	dup := model.NewPeripheral(1, 1)
	_, err = Build([]*model.Peripheral{dup, model.NewPeripheral(1, 1), dup}, 1)
	assert.ErrorIs(t, err, model.ErrInvariantViolation)

	clusters, err := Build(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, clusters)
}

func TestBuildRejectsOversizedCluster(t *testing.T) {
	f, err := field.New(10, 10)
	require.NoError(t, err)
	var ps []*model.Peripheral
	for x := 0; x < 5; x++ {
		for y := 0; y < 4; y++ {
			ps = append(ps, place(t, f, model.Location{X: x, Y: y})...)
		}
	}
	_, err = Build(ps, 100)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestAssignAndLookup(t *testing.T) {
	f, err := field.New(10, 10)
	require.NoError(t, err)
	ps := place(t, f, model.Location{X: 0, Y: 0}, model.Location{X: 9, Y: 9})
	clusters, err := Build(ps, 1)
	require.NoError(t, err)
	Assign(clusters)
	assert.Equal(t, model.ClusterID(0), ps[0].Cluster)
	assert.Equal(t, model.ClusterID(1), ps[1].Cluster)

	c, ok := Lookup(clusters, 1)
	require.True(t, ok)
	assert.True(t, c.Contains(ps[1].ID))

	_, ok = Lookup(clusters, 7)
	assert.False(t, ok)

	owner, ok := Of(clusters, ps[0])
	require.True(t, ok)
	assert.Equal(t, model.ClusterID(0), owner.ID)
}

func TestPathMembersFollowsOrder(t *testing.T) {
	f, err := field.New(10, 10)
	require.NoError(t, err)
	ps := place(t, f, model.Location{X: 0, Y: 0}, model.Location{X: 3, Y: 0}, model.Location{X: 1, Y: 0})
	clusters, err := Build(ps, 5)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	got := clusters[0].PathMembers()
	assert.Equal(t, []*model.Peripheral{ps[0], ps[2], ps[1]}, got)
	assert.InDelta(t, 3.0, clusters[0].PathLength, 1e-9)
}
