// Package cluster groups peripherals into radius-bounded visits. Each
// cluster computes its visiting order once, at construction.
package cluster

import (
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/wrsn/core/model"
	"github.com/kilianp07/wrsn/core/tour"
)

// Cluster is an immutable group of peripherals visited together.
type Cluster struct {
	ID         model.ClusterID
	Centroid   model.Location
	PathLength float64
	Diameter   float64
	Charger    *model.ChargingNode // dedicated node, nil when served by the master

	members []*model.Peripheral
	path    []int
}

// New builds a cluster around members[0] and solves its visiting order.
func New(id model.ClusterID, members []*model.Peripheral) (Cluster, error) {
	if len(members) == 0 {
		return Cluster{}, model.Invariantf("cluster %d has no members", id)
	}
	if len(members) > tour.MaxNodes {
		return Cluster{}, model.Configurationf("cluster %d has %d members, limit is %d; lower the radius", id, len(members), tour.MaxNodes)
	}
	pts := make([]model.Location, len(members))
	for i, p := range members {
		if p == nil {
			return Cluster{}, model.Invariantf("cluster %d member %d is nil", id, i)
		}
		pts[i] = p.Location
	}
	d := tour.DistanceMatrix(pts)
	length, path, err := tour.Solve(d)
	if err != nil {
		return Cluster{}, err
	}
	// the lower triangle of the backing slice is never written, so it holds zeros
	diameter := floats.Max(d.RawSymmetric().Data)
	ms := make([]*model.Peripheral, len(members))
	copy(ms, members)
	return Cluster{
		ID:         id,
		Centroid:   pts[0],
		PathLength: length,
		Diameter:   diameter,
		members:    ms,
		path:       path,
	}, nil
}

// Members returns the peripherals in extraction order.
func (c Cluster) Members() []*model.Peripheral {
	out := make([]*model.Peripheral, len(c.members))
	copy(out, c.members)
	return out
}

// Path returns the visiting order as indices into Members.
func (c Cluster) Path() []int {
	out := make([]int, len(c.path))
	copy(out, c.path)
	return out
}

// PathMembers returns the members in visiting order.
func (c Cluster) PathMembers() []*model.Peripheral {
	out := make([]*model.Peripheral, len(c.path))
	for i, idx := range c.path {
		out[i] = c.members[idx]
	}
	return out
}

func (c Cluster) Size() int { return len(c.members) }

// Contains reports whether the peripheral id belongs to the cluster.
func (c Cluster) Contains(id model.EntityID) bool {
	for _, p := range c.members {
		if p.ID == id {
			return true
		}
	}
	return false
}

// WithCharger returns a copy of c served by a dedicated charging node.
func (c Cluster) WithCharger(node *model.ChargingNode) Cluster {
	c.Charger = node
	if node != nil {
		node.Cluster = c.ID
	}
	return c
}
