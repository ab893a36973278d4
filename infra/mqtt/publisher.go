package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kilianp07/wrsn/core/events"
	"github.com/kilianp07/wrsn/core/logger"
	"github.com/kilianp07/wrsn/internal/eventbus"
)

// Publisher is the part of PahoClient the event forwarder needs.
type Publisher interface {
	Publish(topic, kind string, payload []byte) error
}

type dispatchMessage struct {
	Cycle          int     `json:"cycle"`
	Policy         string  `json:"policy"`
	Cluster        int     `json:"cluster"`
	TravelEnergy   float64 `json:"travel_energy"`
	TransferEnergy float64 `json:"transfer_energy"`
	Replenished    float64 `json:"replenished"`
	QueueLength    int     `json:"queue_length"`
	AtMS           int64   `json:"at_ms"`
}

type failureMessage struct {
	Peripheral int   `json:"peripheral"`
	Cycle      int   `json:"cycle"`
	AtMS       int64 `json:"at_ms"`
	First      bool  `json:"first"`
}

type terminationMessage struct {
	Cycles    int    `json:"cycles"`
	Failures  int    `json:"failures"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Reason    string `json:"reason"`
}

// Encode maps an event to its topic below the prefix, its QoS kind and its
// JSON payload. Checkpoints are published whole.
func Encode(e events.Event) (topic, kind string, payload []byte, err error) {
	var body any
	switch ev := e.(type) {
	case events.DispatchEvent:
		kind = "dispatch"
		body = dispatchMessage{
			Cycle:          ev.Cycle,
			Policy:         ev.Policy,
			Cluster:        int(ev.Cluster),
			TravelEnergy:   ev.TravelEnergy,
			TransferEnergy: ev.TransferEnergy,
			Replenished:    ev.Replenished,
			QueueLength:    ev.QueueLength,
			AtMS:           ev.At.Milliseconds(),
		}
	case events.FailureEvent:
		kind = "failure"
		body = failureMessage{Peripheral: int(ev.Peripheral), Cycle: ev.Cycle, AtMS: ev.At.Milliseconds(), First: ev.First}
	case events.CheckpointEvent:
		kind = "checkpoint"
		body = ev.Snapshot
	case events.TerminationEvent:
		kind = "termination"
		body = terminationMessage{Cycles: ev.Cycles, Failures: ev.Failures, ElapsedMS: ev.Elapsed.Milliseconds(), Reason: ev.Reason}
	default:
		return "", "", nil, fmt.Errorf("unsupported event %T", e)
	}
	payload, err = json.Marshal(body)
	if err != nil {
		return "", "", nil, err
	}
	return fmt.Sprintf("runs/%s/%s", e.RunID(), kind), kind, payload, nil
}

// StartEventPublisher forwards bus events to pub until ctx is canceled or
// the bus is closed. The returned channel closes when forwarding stopped.
func StartEventPublisher(ctx context.Context, bus *eventbus.Bus[events.Event], pub Publisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
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
				topic, kind, payload, err := Encode(ev)
				if err == nil {
					err = pub.Publish(topic, kind, payload)
				}
				if err != nil && log != nil {
					log.Warnf("mqtt forward %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}
