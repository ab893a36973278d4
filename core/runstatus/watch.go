package runstatus

import (
	"context"

	"github.com/kilianp07/wrsn/core/events"
	"github.com/kilianp07/wrsn/internal/eventbus"
)

// Watch applies every event published on bus to store until ctx is
// canceled or the bus is closed. The returned channel is closed on exit.
func Watch(ctx context.Context, bus *eventbus.Bus[events.Event], store Store) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil {
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
				store.Apply(ev)
			}
		}
	}()
	return done
}
