package scheduler

import (
	"github.com/kilianp07/wrsn/core/cluster"
	"github.com/kilianp07/wrsn/core/model"
)

// noTrigger marks a dispatch that no admission caused.
const noTrigger model.EntityID = -1

// Policy picks the cluster the charger visits in the next cycle. ok is false
// when the field should idle instead.
type Policy interface {
	Name() string
	Next(peripherals []*model.Peripheral, clusters []cluster.Cluster) (c cluster.Cluster, trigger model.EntityID, ok bool)
	// QueueLength reports pending admissions; zero for policies without a queue.
	QueueLength() int
}

// NewPolicy builds the policy named in cfg.
func NewPolicy(cfg Config) (Policy, error) {
	switch cfg.Policy {
	case PolicyRoundRobin:
		return &RoundRobin{}, nil
	case PolicyThreshold:
		return NewThreshold(cfg.Threshold()), nil
	default:
		return nil, model.Configurationf("unknown policy %q", cfg.Policy)
	}
}

// RoundRobin visits every cluster in a fixed repeating order.
type RoundRobin struct {
	next int
}

func (r *RoundRobin) Name() string     { return PolicyRoundRobin }
func (r *RoundRobin) QueueLength() int { return 0 }

func (r *RoundRobin) Next(_ []*model.Peripheral, clusters []cluster.Cluster) (cluster.Cluster, model.EntityID, bool) {
	if len(clusters) == 0 {
		return cluster.Cluster{}, noTrigger, false
	}
	c := clusters[r.next%len(clusters)]
	r.next = (r.next + 1) % len(clusters)
	return c, noTrigger, true
}

// Threshold admits peripherals whose charge ratio fell to or below the
// threshold into a FIFO queue and dispatches the head's cluster.
type Threshold struct {
	threshold float64
	queue     []*model.Peripheral
	queued    map[*model.Peripheral]struct{}
}

// NewThreshold returns a policy admitting at ratio <= threshold.
func NewThreshold(threshold float64) *Threshold {
	return &Threshold{threshold: threshold, queued: make(map[*model.Peripheral]struct{})}
}

func (t *Threshold) Name() string     { return PolicyThreshold }
func (t *Threshold) QueueLength() int { return len(t.queue) }

// Queue returns the ids waiting for a dispatch, head first.
func (t *Threshold) Queue() []model.EntityID {
	out := make([]model.EntityID, len(t.queue))
	for i, p := range t.queue {
		out[i] = p.ID
	}
	return out
}

// Admit scans peripherals in registration order and enqueues those newly
// at or below the threshold.
func (t *Threshold) Admit(peripherals []*model.Peripheral) {
	for _, p := range peripherals {
		if p == nil {
			continue
		}
		if _, ok := t.queued[p]; ok {
			continue
		}
		if p.Below(t.threshold) {
			t.queue = append(t.queue, p)
			t.queued[p] = struct{}{}
		}
	}
}

func (t *Threshold) Next(peripherals []*model.Peripheral, clusters []cluster.Cluster) (cluster.Cluster, model.EntityID, bool) {
	t.Admit(peripherals)
	for len(t.queue) > 0 {
		head := t.queue[0]
		t.queue = t.queue[1:]
		delete(t.queued, head)
		if head.Failed {
			continue
		}
		c, ok := cluster.Of(clusters, head)
		if !ok {
			continue
		}
		t.purge(c)
		return c, head.ID, true
	}
	return cluster.Cluster{}, noTrigger, false
}

// purge drops every member of c, and every failed peripheral, from the queue.
func (t *Threshold) purge(c cluster.Cluster) {
	members := make(map[*model.Peripheral]struct{}, c.Size())
	for _, m := range c.Members() {
		members[m] = struct{}{}
	}
	kept := t.queue[:0]
	for _, p := range t.queue {
		if _, in := members[p]; in || p.Failed {
			delete(t.queued, p)
			continue
		}
		kept = append(kept, p)
	}
	t.queue = kept
}
