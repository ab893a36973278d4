package scheduler

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/wrsn/core/metrics"
	"github.com/kilianp07/wrsn/core/model"
)

// Failure records when a peripheral ran out of charge, as an offset of
// simulated time since the start of the run.
type Failure struct {
	Peripheral model.EntityID `json:"peripheral"`
	At         time.Duration  `json:"at"`
	Cycle      int            `json:"cycle"`
}

// Dispatch records one cluster visit. Trigger is the peripheral whose
// admission caused the visit, or -1 under round robin.
type Dispatch struct {
	Cycle          int             `json:"cycle"`
	Cluster        model.ClusterID `json:"cluster"`
	Trigger        model.EntityID  `json:"trigger"`
	TravelEnergy   float64         `json:"travel_energy"`
	TransferEnergy float64         `json:"transfer_energy"`
	Replenished    float64         `json:"replenished"`
}

// Run accumulates the outcome of one scheduling run. It is created when the
// loop starts, updated every cycle and final once the loop returns.
type Run struct {
	ID     string    `json:"id"`
	Policy string    `json:"policy"`
	Start  time.Time `json:"start"`

	// TravelEnergy covers the station round trips and the walks between
	// cluster members and back to each walk start.
	TravelEnergy   float64 `json:"travel_energy"`
	TransferEnergy float64 `json:"transfer_energy"`
	TotalEnergy    float64 `json:"total_energy"`

	Failures     []Failure     `json:"failures"`
	FirstFailure time.Duration `json:"first_failure"`
	HasFailure   bool          `json:"has_failure"`

	CheckpointCycle int                     `json:"checkpoint_cycle"`
	Checkpoint      []model.PeripheralState `json:"checkpoint,omitempty"`
	Final           []model.PeripheralState `json:"final"`

	Dispatches []Dispatch    `json:"dispatches"`
	Cycles     int           `json:"cycles"`
	IdleCycles int           `json:"idle_cycles"`
	Elapsed    time.Duration `json:"elapsed"`
	Reason     string        `json:"reason"`
}

func (r *Run) FailureCount() int { return len(r.Failures) }

func (r *Run) addTravel(e float64) {
	r.TravelEnergy += e
	r.TotalEnergy += e
}

func (r *Run) addTransfer(e float64) {
	r.TransferEnergy += e
	r.TotalEnergy += e
}

func (r *Run) recordFailure(id model.EntityID, at time.Duration, cycle int) bool {
	first := !r.HasFailure
	if first {
		r.HasFailure = true
		r.FirstFailure = at
	}
	r.Failures = append(r.Failures, Failure{Peripheral: id, At: at, Cycle: cycle})
	return first
}

// EffectiveRatio is transfer energy over total energy.
func (r *Run) EffectiveRatio() float64 {
	if r.TotalEnergy == 0 {
		return 0
	}
	return r.TransferEnergy / r.TotalEnergy
}

// IneffectiveRatio is travel energy over total energy. Leakage is not part
// of the total, so the two ratios sum to one.
func (r *Run) IneffectiveRatio() float64 {
	if r.TotalEnergy == 0 {
		return 0
	}
	return r.TravelEnergy / r.TotalEnergy
}

// AverageChargePct is the mean state of charge of the final snapshot in
// percent. Failed peripherals count as empty.
func (r *Run) AverageChargePct() float64 {
	return averageChargePct(r.Final)
}

func averageChargePct(states []model.PeripheralState) float64 {
	if len(states) == 0 {
		return 0
	}
	pct := make([]float64, len(states))
	for i, s := range states {
		if s.Capacity > 0 {
			pct[i] = 100 * s.Charge / s.Capacity
		}
	}
	return stat.Mean(pct, nil)
}

// Summary converts the run into the record handed to metrics sinks.
func (r *Run) Summary() metrics.RunSummary {
	return metrics.RunSummary{
		RunID:            r.ID,
		Policy:           r.Policy,
		Cycles:           r.Cycles,
		TravelEnergy:     r.TravelEnergy,
		TransferEnergy:   r.TransferEnergy,
		TotalEnergy:      r.TotalEnergy,
		Failures:         r.FailureCount(),
		FirstFailure:     r.FirstFailure,
		AverageChargePct: r.AverageChargePct(),
		Elapsed:          r.Elapsed,
		Start:            r.Start,
	}
}
