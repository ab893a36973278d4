// Package placement scatters peripherals over a field at random, free
// cells. The random source is injected so runs can be reproduced from a
// seed.
package placement

import (
	"errors"
	"math/rand"

	"github.com/kilianp07/wrsn/core/model"
)

// Registrar is the part of a field the placer writes to.
type Registrar interface {
	Register(e model.Entity, x, y int) error
	Width() int
	Height() int
}

// Config bounds the generated peripherals. Coordinate ranges are inclusive
// and clipped to the field.
type Config struct {
	Count       int     `json:"count" yaml:"count"`
	MinCapacity float64 `json:"min_capacity" yaml:"min_capacity"`
	MaxCapacity float64 `json:"max_capacity" yaml:"max_capacity"`
	// MinChargePct..MaxChargePct is the initial state of charge in percent.
	MinChargePct float64 `json:"min_charge_pct" yaml:"min_charge_pct"`
	MaxChargePct float64 `json:"max_charge_pct" yaml:"max_charge_pct"`
	MinX         int     `json:"min_x" yaml:"min_x"`
	MaxX         int     `json:"max_x" yaml:"max_x"`
	MinY         int     `json:"min_y" yaml:"min_y"`
	MaxY         int     `json:"max_y" yaml:"max_y"`
	// Threshold is copied onto every peripheral when positive.
	Threshold   float64 `json:"threshold" yaml:"threshold"`
	Seed        int64   `json:"seed" yaml:"seed"`
	MaxAttempts int     `json:"max_attempts" yaml:"max_attempts"`
}

// SetDefaults mirrors the reference experiment: 15 peripherals with 10 to
// 30 units of capacity, fully charged.
func (c *Config) SetDefaults() {
	if c.Count == 0 {
		c.Count = 15
	}
	if c.MinCapacity == 0 && c.MaxCapacity == 0 {
		c.MinCapacity, c.MaxCapacity = 10, 30
	}
	if c.MinChargePct == 0 && c.MaxChargePct == 0 {
		c.MinChargePct, c.MaxChargePct = 100, 100
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 1000
	}
}

// Validate checks the ranges.
func (c Config) Validate() error {
	switch {
	case c.Count < 0:
		return model.Configurationf("placement count must not be negative")
	case c.MinCapacity <= 0 || c.MaxCapacity < c.MinCapacity:
		return model.Configurationf("capacity range [%v,%v] is invalid", c.MinCapacity, c.MaxCapacity)
	case c.MinChargePct < 0 || c.MaxChargePct > 100 || c.MaxChargePct < c.MinChargePct:
		return model.Configurationf("charge range [%v,%v]%% is invalid", c.MinChargePct, c.MaxChargePct)
	case c.MaxX < c.MinX || c.MaxY < c.MinY:
		return model.Configurationf("coordinate range is empty")
	case c.Threshold < 0 || c.Threshold > 1:
		return model.Configurationf("threshold must be in [0,1]")
	case c.MaxAttempts <= 0:
		return model.Configurationf("max_attempts must be positive")
	}
	return nil
}

// Placer registers random peripherals until the requested count is reached.
type Placer struct {
	cfg Config
	rng *rand.Rand
}

// New returns a placer seeded from cfg.Seed.
func New(cfg Config) (*Placer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewWithRand(cfg, rand.New(rand.NewSource(cfg.Seed))), nil
}

// NewWithRand uses rng as the random source. cfg must already be valid.
func NewWithRand(cfg Config, rng *rand.Rand) *Placer {
	return &Placer{cfg: cfg, rng: rng}
}

// Place registers cfg.Count peripherals on r. Occupied cells are retried
// with a fresh draw; any other registration error aborts. After
// MaxAttempts draws in total the placer gives up with a configuration
// error, returning what it placed so far.
func (p *Placer) Place(r Registrar) ([]*model.Peripheral, error) {
	minX, maxX := clip(p.cfg.MinX, p.cfg.MaxX, r.Width())
	minY, maxY := clip(p.cfg.MinY, p.cfg.MaxY, r.Height())
	if maxX < minX || maxY < minY {
		return nil, model.Configurationf("placement area lies outside the %dx%d field", r.Width(), r.Height())
	}
	out := make([]*model.Peripheral, 0, p.cfg.Count)
	for attempt := 0; len(out) < p.cfg.Count; attempt++ {
		if attempt >= p.cfg.MaxAttempts {
			return out, model.Configurationf("placed %d of %d peripherals in %d attempts", len(out), p.cfg.Count, attempt)
		}
		capacity := p.between(p.cfg.MinCapacity, p.cfg.MaxCapacity)
		charge := chargeFor(capacity, p.between(p.cfg.MinChargePct, p.cfg.MaxChargePct))
		per := model.NewPeripheral(capacity, charge)
		per.Threshold = p.cfg.Threshold
		x := minX + p.rng.Intn(maxX-minX+1)
		y := minY + p.rng.Intn(maxY-minY+1)
		err := r.Register(per, x, y)
		if errors.Is(err, model.ErrLocationOccupied) {
			continue
		}
		if err != nil {
			return out, err
		}
		out = append(out, per)
	}
	return out, nil
}

func (p *Placer) between(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + p.rng.Float64()*(hi-lo)
}

// chargeFor converts a percentage into a charge. A full battery is exactly
// capacity; scaling by 100/100 can land one ulp short.
func chargeFor(capacity, pct float64) float64 {
	if pct >= 100 {
		return capacity
	}
	return capacity * pct / 100
}

// clip bounds [lo,hi] to [0,size). A zero range means the whole axis.
func clip(lo, hi, size int) (int, int) {
	if lo == 0 && hi == 0 {
		return 0, size - 1
	}
	if lo < 0 {
		lo = 0
	}
	if hi > size-1 {
		hi = size - 1
	}
	return lo, hi
}
