// Package clock provides the simulated time source of a run and the
// termination budget evaluated once per scheduling cycle.
package clock

import (
	"sync"
	"time"

	"github.com/kilianp07/wrsn/core/model"
)

// Clock is the time abstraction the scheduler depends on. Simulated clocks
// advance only when told to, which keeps runs deterministic.
type Clock interface {
	// Now returns the current simulated time.
	Now() time.Time
	// Elapsed returns the time advanced since the clock was created.
	Elapsed() time.Duration
	// Advance moves simulated time forward by d.
	Advance(d time.Duration)
}

// SimClock is a manually advanced tick counter.
type SimClock struct {
	mu      sync.RWMutex
	start   time.Time
	elapsed time.Duration
}

// NewSimClock returns a clock starting at start.
func NewSimClock(start time.Time) *SimClock {
	return &SimClock{start: start}
}

func (c *SimClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.start.Add(c.elapsed)
}

func (c *SimClock) Elapsed() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.elapsed
}

// Advance ignores negative durations.
func (c *SimClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.elapsed += d
	c.mu.Unlock()
}

// Budget decides when a run terminates. A positive MaxCycles selects the
// debug mode and caps the number of cycles; otherwise the run stops once
// Duration of simulated time has elapsed.
type Budget struct {
	Duration  time.Duration `json:"duration"`
	MaxCycles int           `json:"max_cycles"`
}

// Validate rejects budgets that would never terminate.
func (b Budget) Validate() error {
	if b.MaxCycles < 0 || b.Duration < 0 {
		return model.Configurationf("termination budget must not be negative: %+v", b)
	}
	if b.MaxCycles == 0 && b.Duration == 0 {
		return model.Configurationf("termination budget needs a duration or a cycle cap")
	}
	return nil
}

// Done reports whether the budget is exhausted after cycles completed cycles.
func (b Budget) Done(c Clock, cycles int) bool {
	if b.MaxCycles > 0 {
		return cycles >= b.MaxCycles
	}
	return c.Elapsed() >= b.Duration
}
