package metrics

import "github.com/kilianp07/wrsn/core/model"

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispatch forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDispatch(rec DispatchRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispatch(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordFailure forwards failures to sinks that record them.
func (m *MultiSink) RecordFailure(rec FailureRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(FailureRecorder); ok {
			if err := r.RecordFailure(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordQueueLength forwards the queue gauge when supported by the sink.
func (m *MultiSink) RecordQueueLength(policy string, length int) error {
	for _, s := range m.Sinks {
		if r, ok := s.(QueueRecorder); ok {
			if err := r.RecordQueueLength(policy, length); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRun forwards run summaries.
func (m *MultiSink) RecordRun(sum RunSummary) error {
	for _, s := range m.Sinks {
		if r, ok := s.(RunRecorder); ok {
			if err := r.RecordRun(sum); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSnapshot forwards checkpoint snapshots.
func (m *MultiSink) RecordSnapshot(runID string, cycle int, states []model.PeripheralState) error {
	for _, s := range m.Sinks {
		if r, ok := s.(SnapshotRecorder); ok {
			if err := r.RecordSnapshot(runID, cycle, states); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes the sinks that hold resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
