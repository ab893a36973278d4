// Package runstatus keeps the latest known state of simulation runs, fed
// from the event bus.
package runstatus

import (
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/wrsn/core/events"
	"github.com/kilianp07/wrsn/core/model"
)

// Run states reported by Status.
const (
	StateRunning    = "running"
	StateTerminated = "terminated"
)

// LastDispatch summarises the most recent cluster visit.
type LastDispatch struct {
	Cycle          int             `json:"cycle"`
	Cluster        model.ClusterID `json:"cluster"`
	TravelEnergy   float64         `json:"travel_energy"`
	TransferEnergy float64         `json:"transfer_energy"`
	QueueLength    int             `json:"queue_length"`
	At             time.Duration   `json:"at"`
}

// Status captures the current known state of a run.
type Status struct {
	RunID          string           `json:"run_id"`
	Policy         string           `json:"policy,omitempty"`
	State          string           `json:"state"`
	Cycles         int              `json:"cycles"`
	Dispatches     int              `json:"dispatches"`
	TravelEnergy   float64          `json:"travel_energy"`
	TransferEnergy float64          `json:"transfer_energy"`
	Failed         []model.EntityID `json:"failed,omitempty"`
	FirstFailure   time.Duration    `json:"first_failure,omitempty"`
	CheckpointAt   int              `json:"checkpoint_at,omitempty"`
	Elapsed        time.Duration    `json:"elapsed"`
	Reason         string           `json:"reason,omitempty"`
	LastDispatch   *LastDispatch    `json:"last_dispatch,omitempty"`
}

type Filter struct {
	State  string
	Policy string
}

type Store interface {
	Apply(events.Event)
	Get(runID string) (Status, bool)
	List(Filter) []Status
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]Status{}}
}

// Apply folds one event into the status of its run. Unknown runs are
// created in the running state.
func (s *MemoryStore) Apply(ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data[ev.RunID()]
	if !ok {
		st = Status{RunID: ev.RunID(), State: StateRunning}
	}
	switch e := ev.(type) {
	case events.DispatchEvent:
		st.Policy = e.Policy
		st.Dispatches++
		st.Cycles = max(st.Cycles, e.Cycle+1)
		st.TravelEnergy += e.TravelEnergy
		st.TransferEnergy += e.TransferEnergy
		st.Elapsed = max(st.Elapsed, e.At)
		st.LastDispatch = &LastDispatch{
			Cycle:          e.Cycle,
			Cluster:        e.Cluster,
			TravelEnergy:   e.TravelEnergy,
			TransferEnergy: e.TransferEnergy,
			QueueLength:    e.QueueLength,
			At:             e.At,
		}
	case events.FailureEvent:
		if e.First || len(st.Failed) == 0 {
			st.FirstFailure = e.At
		}
		st.Failed = append(st.Failed, e.Peripheral)
		st.Elapsed = max(st.Elapsed, e.At)
	case events.CheckpointEvent:
		st.CheckpointAt = e.Cycle
	case events.TerminationEvent:
		st.State = StateTerminated
		st.Cycles = e.Cycles
		st.Elapsed = e.Elapsed
		st.Reason = e.Reason
	}
	s.data[st.RunID] = st
}

func (s *MemoryStore) Get(runID string) (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.data[runID]
	if ok {
		st.Failed = append([]model.EntityID(nil), st.Failed...)
	}
	return st, ok
}

func (s *MemoryStore) List(f Filter) []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Status, 0, len(s.data))
	for _, st := range s.data {
		if f.State != "" && st.State != f.State {
			continue
		}
		if f.Policy != "" && st.Policy != f.Policy {
			continue
		}
		st.Failed = append([]model.EntityID(nil), st.Failed...)
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].RunID < res[j].RunID })
	return res
}
