package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/wrsn/core/clock"
	"github.com/kilianp07/wrsn/core/model"
)

// Policy names accepted in configuration.
const (
	PolicyRoundRobin = "round_robin"
	PolicyThreshold  = "threshold"
)

// Config defines scheduling parameters loaded from configuration.
type Config struct {
	Policy            string  `json:"policy" yaml:"policy"`
	LeakageMultiplier float64 `json:"leakage_multiplier" yaml:"leakage_multiplier"`
	// ThresholdPct is the admission threshold in percent of capacity.
	ThresholdPct float64 `json:"threshold_pct" yaml:"threshold_pct"`
	// IdleDecay is removed from every peripheral on a cycle without dispatch.
	IdleDecay float64 `json:"idle_decay" yaml:"idle_decay"`
	// DurationMS bounds the run in simulated milliseconds.
	DurationMS int64 `json:"duration_ms" yaml:"duration_ms"`
	// MaxCycles > 0 switches to the debug budget: a fixed number of cycles.
	MaxCycles       int `json:"max_cycles" yaml:"max_cycles"`
	CheckpointCycle int `json:"checkpoint_cycle" yaml:"checkpoint_cycle"`
	// UnitMS is the simulated time one unit of distance or energy takes.
	UnitMS float64 `json:"unit_ms" yaml:"unit_ms"`
	// DedicatedChargers places one charging node per cluster which the
	// master refills.
	DedicatedChargers bool    `json:"dedicated_chargers" yaml:"dedicated_chargers"`
	DedicatedCapacity float64 `json:"dedicated_capacity" yaml:"dedicated_capacity"`
	// StopWhenAllFailed ends the run early once no live peripheral is left.
	StopWhenAllFailed bool `json:"stop_when_all_failed" yaml:"stop_when_all_failed"`
}

// SetDefaults applies the defaults of the original experiments.
func (c *Config) SetDefaults() {
	if c.Policy == "" {
		c.Policy = PolicyRoundRobin
	}
	if c.IdleDecay == 0 {
		c.IdleDecay = 1
	}
	if c.CheckpointCycle == 0 {
		c.CheckpointCycle = 15
	}
	if c.UnitMS == 0 {
		c.UnitMS = 1
	}
	if c.DedicatedChargers && c.DedicatedCapacity == 0 {
		c.DedicatedCapacity = 60
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Policy != PolicyRoundRobin && c.Policy != PolicyThreshold {
		return model.Configurationf("unknown policy %q", c.Policy)
	}
	if c.LeakageMultiplier < 0 || math.IsNaN(c.LeakageMultiplier) {
		return model.Configurationf("leakage_multiplier must be non-negative")
	}
	if c.Policy == PolicyThreshold && (c.ThresholdPct <= 0 || c.ThresholdPct > 100) {
		return model.Configurationf("threshold_pct must be in (0,100], got %v", c.ThresholdPct)
	}
	if c.IdleDecay < 0 {
		return model.Configurationf("idle_decay must be non-negative")
	}
	if c.UnitMS <= 0 {
		return model.Configurationf("unit_ms must be positive")
	}
	if c.CheckpointCycle < 0 {
		return model.Configurationf("checkpoint_cycle must be non-negative")
	}
	if c.DedicatedChargers && c.DedicatedCapacity <= 0 {
		return model.Configurationf("dedicated_capacity must be positive")
	}
	return c.Budget().Validate()
}

// Budget returns the termination budget described by the config.
func (c Config) Budget() clock.Budget {
	return clock.Budget{
		Duration:  time.Duration(c.DurationMS) * time.Millisecond,
		MaxCycles: c.MaxCycles,
	}
}

// Threshold returns the admission threshold as a fraction.
func (c Config) Threshold() float64 { return c.ThresholdPct / 100 }

// unit converts a quantity of distance or energy into simulated time.
func (c Config) unit(q float64) time.Duration {
	return time.Duration(q * c.UnitMS * float64(time.Millisecond))
}

// LoadConfig loads a scheduler Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeConfig(f, ext)
}

// DecodeConfig reads from r to decode a Config. Defaults are applied before
// validation.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config format: %s", format)
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}
