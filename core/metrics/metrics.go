package metrics

import (
	"time"

	"github.com/kilianp07/wrsn/core/model"
)

// DispatchRecord describes one cluster visit.
type DispatchRecord struct {
	RunID          string
	Policy         string
	Cycle          int
	Cluster        model.ClusterID
	TravelEnergy   float64
	TransferEnergy float64
	Replenished    float64
	// At is the simulated offset since Start.
	At    time.Duration
	Start time.Time
}

// MetricsSink records dispatches for observability purposes.
type MetricsSink interface {
	RecordDispatch(rec DispatchRecord) error
}

// FailureRecord captures a peripheral running out of charge.
type FailureRecord struct {
	RunID      string
	Policy     string
	Peripheral model.EntityID
	At         time.Duration
	Start      time.Time
	First      bool
}

// FailureRecorder records peripheral failures.
type FailureRecorder interface {
	RecordFailure(rec FailureRecord) error
}

// QueueRecorder records the admission queue length after each cycle.
type QueueRecorder interface {
	RecordQueueLength(policy string, length int) error
}

// RunSummary is recorded once when a run terminates.
type RunSummary struct {
	RunID            string
	Policy           string
	Cycles           int
	TravelEnergy     float64
	TransferEnergy   float64
	TotalEnergy      float64
	Failures         int
	FirstFailure     time.Duration // zero when nothing failed
	AverageChargePct float64
	Elapsed          time.Duration
	Start            time.Time
}

// RunRecorder records run summaries.
type RunRecorder interface {
	RecordRun(sum RunSummary) error
}

// SnapshotRecorder records the peripheral states captured at a checkpoint.
type SnapshotRecorder interface {
	RecordSnapshot(runID string, cycle int, states []model.PeripheralState) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDispatch(DispatchRecord) error { return nil }
func (NopSink) RecordFailure(FailureRecord) error   { return nil }
func (NopSink) RecordQueueLength(string, int) error { return nil }
func (NopSink) RecordRun(RunSummary) error          { return nil }
func (NopSink) RecordSnapshot(string, int, []model.PeripheralState) error {
	return nil
}
