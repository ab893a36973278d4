// Package ledger moves energy between charging nodes and peripherals and
// applies passive leakage. Transfer is exact: the source loses what the
// receiver gains. Leakage is a separate, explicit step.
package ledger

import (
	"math"

	"github.com/kilianp07/wrsn/core/model"
)

// Transfer debits src and credits dst by amount. Sizing the amount so that
// 0 <= amount <= min(src.Available(), dst.Need()) is the caller's job; only
// amounts that can never be valid are rejected.
func Transfer(src model.Source, dst model.Receiver, amount float64) error {
	if src == nil || dst == nil {
		return model.Invariantf("transfer needs a source and a receiver")
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return model.Invariantf("transfer amount %v", amount)
	}
	src.Debit(amount)
	dst.Receive(amount)
	return nil
}

// Replenish tops node up to its capacity and returns the amount restored.
func Replenish(node *model.ChargingNode) float64 {
	if node == nil {
		return 0
	}
	return node.Refill()
}

// Grant returns how much a source may hand to dst while keeping reserve for
// its own trip home.
func Grant(src model.Source, dst model.Receiver, reserve float64) float64 {
	budget := src.Available() - reserve
	if budget <= 0 {
		return 0
	}
	return math.Min(dst.Need(), budget)
}

// Leak subtracts quantity*multiplier from every live peripheral not listed in
// exclude. Charges are clamped at zero; the peripherals that reached zero
// are returned so the caller can record their failure.
func Leak(peripherals []*model.Peripheral, exclude map[model.EntityID]struct{}, quantity, multiplier float64) []*model.Peripheral {
	decay := quantity * multiplier
	if decay <= 0 || math.IsNaN(decay) {
		return nil
	}
	var drained []*model.Peripheral
	for _, p := range peripherals {
		if p == nil || p.Failed {
			continue
		}
		if _, skip := exclude[p.ID]; skip {
			continue
		}
		if drain(p, decay) {
			drained = append(drained, p)
		}
	}
	return drained
}

// Decay removes a fixed unit from every live peripheral. The scheduler uses
// it while the admission queue is empty.
func Decay(peripherals []*model.Peripheral, unit float64) []*model.Peripheral {
	return Leak(peripherals, nil, unit, 1)
}

func drain(p *model.Peripheral, amount float64) bool {
	p.Charge -= amount
	if p.Charge <= 0 {
		p.Charge = 0
		return true
	}
	return false
}

// Only returns an exclusion set holding a single peripheral.
func Only(id model.EntityID) map[model.EntityID]struct{} {
	return map[model.EntityID]struct{}{id: {}}
}
