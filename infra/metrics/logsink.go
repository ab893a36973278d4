package metrics

import (
	coremetrics "github.com/kilianp07/wrsn/core/metrics"
	"github.com/kilianp07/wrsn/core/model"
	"github.com/kilianp07/wrsn/infra/logger"
)

// LogSink writes records as structured log entries.
type LogSink struct {
	log logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &LogSink{log: log}
}

func (s *LogSink) RecordDispatch(rec coremetrics.DispatchRecord) error {
	s.log.Debugw("dispatch", map[string]any{
		"run_id":   rec.RunID,
		"cycle":    rec.Cycle,
		"cluster":  rec.Cluster,
		"travel":   rec.TravelEnergy,
		"transfer": rec.TransferEnergy,
		"at":       rec.At.String(),
	})
	return nil
}

func (s *LogSink) RecordFailure(rec coremetrics.FailureRecord) error {
	s.log.Infof("run %s: peripheral %d failed at %s (first=%t)", rec.RunID, rec.Peripheral, rec.At, rec.First)
	return nil
}

func (s *LogSink) RecordRun(sum coremetrics.RunSummary) error {
	s.log.Infof("run %s (%s): %d cycles, travel %.2f, transfer %.2f, %d failures, average charge %.1f%%",
		sum.RunID, sum.Policy, sum.Cycles, sum.TravelEnergy, sum.TransferEnergy, sum.Failures, sum.AverageChargePct)
	return nil
}

func (s *LogSink) RecordSnapshot(runID string, cycle int, states []model.PeripheralState) error {
	s.log.Infof("run %s: checkpoint at cycle %d with %d peripherals", runID, cycle, len(states))
	return nil
}
