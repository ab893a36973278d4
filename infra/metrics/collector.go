package metrics

import (
	"context"

	"github.com/kilianp07/wrsn/core/events"
	"github.com/kilianp07/wrsn/core/logger"
	coremetrics "github.com/kilianp07/wrsn/core/metrics"
	"github.com/kilianp07/wrsn/internal/eventbus"
)

// StartEventCollector subscribes to the bus and hands checkpoint snapshots
// to sinks that record them. Dispatches and failures reach sinks directly
// from the scheduler, so they are ignored here. The returned channel is
// closed once the collector stopped, which happens when ctx is canceled or
// the bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.SnapshotRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.CheckpointEvent:
					if err := rec.RecordSnapshot(e.Run, e.Cycle, e.Snapshot); err != nil && log != nil {
						log.Warnf("record snapshot: %v", err)
					}
				case events.TerminationEvent:
					if log != nil {
						log.Debugf("collector saw termination of run %s", e.Run)
					}
				}
			}
		}
	}()
	return done
}
