package events

import (
	"time"

	"github.com/kilianp07/wrsn/core/model"
)

// Event is the closed set of simulation events.
type Event interface {
	RunID() string
}

// DispatchEvent is published after each cluster visit.
type DispatchEvent struct {
	Run            string
	Policy         string
	Cycle          int
	Cluster        model.ClusterID
	TravelEnergy   float64
	TransferEnergy float64
	Replenished    float64
	QueueLength    int
	At             time.Duration
}

// FailureEvent is published once per peripheral when its charge reaches zero.
type FailureEvent struct {
	Run        string
	Peripheral model.EntityID
	Cycle      int
	At         time.Duration
	First      bool
}

// CheckpointEvent carries the snapshot taken at the configured cycle.
type CheckpointEvent struct {
	Run      string
	Cycle    int
	Snapshot []model.PeripheralState
}

// TerminationEvent closes a run.
type TerminationEvent struct {
	Run      string
	Cycles   int
	Failures int
	Elapsed  time.Duration
	Reason   string
}

func (e DispatchEvent) RunID() string    { return e.Run }
func (e FailureEvent) RunID() string     { return e.Run }
func (e CheckpointEvent) RunID() string  { return e.Run }
func (e TerminationEvent) RunID() string { return e.Run }
