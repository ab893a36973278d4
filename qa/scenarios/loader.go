package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/wrsn/config"
	"github.com/kilianp07/wrsn/core/scheduler"
)

// Expected lists the assertions checked after a scenario ran. Zero values
// are not checked, except for Failures which is checked when set.
type Expected struct {
	Clusters int `yaml:"clusters"`
	// Dispatches is the expected prefix of visited cluster ids.
	Dispatches []int `yaml:"dispatches"`
	// FirstTravel is the travel energy of the first dispatch.
	FirstTravel float64 `yaml:"first_travel"`
	// MaxFirstTransfer bounds the transfer energy of the first dispatch.
	MaxFirstTransfer float64 `yaml:"max_first_transfer"`
	Failures         *int    `yaml:"failures"`
}

// Scenario is a self-contained simulation with its expected outcome.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	Field       config.FieldConfig `yaml:"field"`
	Simulation  scheduler.Config   `yaml:"simulation"`
	Expected    Expected           `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario without name", path)
	}
	return &sc, nil
}

// Config returns the application configuration the scenario describes.
func (sc *Scenario) Config() *config.Config {
	cfg := &config.Config{Field: sc.Field, Simulation: sc.Simulation}
	cfg.Field.SetDefaults()
	return cfg
}
