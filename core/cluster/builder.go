package cluster

import (
	"math"

	"github.com/kilianp07/wrsn/core/model"
)

// Build partitions peripherals with a single greedy pass: the first remaining
// peripheral becomes a centroid and takes every remaining peripheral within
// radius. The pass does not minimise the number of clusters and never
// re-centres. The input slice is left untouched; a nil or repeated
// peripheral is an invariant violation.
func Build(peripherals []*model.Peripheral, radius float64) ([]Cluster, error) {
	if radius < 0 || math.IsNaN(radius) {
		return nil, model.Configurationf("cluster radius must be non-negative, got %v", radius)
	}
	remaining := make([]*model.Peripheral, 0, len(peripherals))
	seen := make(map[*model.Peripheral]struct{}, len(peripherals))
	for i, p := range peripherals {
		if p == nil {
			return nil, model.Invariantf("element %d is not a peripheral", i)
		}
		if _, dup := seen[p]; dup {
			return nil, model.Invariantf("peripheral %d appears twice at element %d", p.ID, i)
		}
		seen[p] = struct{}{}
		remaining = append(remaining, p)
	}

	var clusters []Cluster
	for len(remaining) > 0 {
		centroid := remaining[0]
		members := []*model.Peripheral{centroid}
		rest := make([]*model.Peripheral, 0, len(remaining)-1)
		for _, p := range remaining[1:] {
			if centroid.Location.DistanceTo(p.Location) <= radius {
				members = append(members, p)
			} else {
				rest = append(rest, p)
			}
		}
		c, err := New(model.ClusterID(len(clusters)), members)
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, c)
		remaining = rest
	}
	return clusters, nil
}

// Assign records on every member the cluster it belongs to.
func Assign(clusters []Cluster) {
	for _, c := range clusters {
		for _, p := range c.members {
			p.Cluster = c.ID
		}
	}
}

// Lookup finds a cluster by id. A missing id is a normal outcome.
func Lookup(clusters []Cluster, id model.ClusterID) (Cluster, bool) {
	for _, c := range clusters {
		if c.ID == id {
			return c, true
		}
	}
	return Cluster{}, false
}

// Of returns the cluster owning a peripheral.
func Of(clusters []Cluster, p *model.Peripheral) (Cluster, bool) {
	if p == nil {
		return Cluster{}, false
	}
	if p.Cluster != model.NoCluster {
		if c, ok := Lookup(clusters, p.Cluster); ok && c.Contains(p.ID) {
			return c, true
		}
	}
	for _, c := range clusters {
		for _, m := range c.members {
			if m == p {
				return c, true
			}
		}
	}
	return Cluster{}, false
}
