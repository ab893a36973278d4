package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/wrsn/core/metrics"
	"github.com/kilianp07/wrsn/core/model"
	"github.com/kilianp07/wrsn/core/placement"
	"github.com/kilianp07/wrsn/core/scheduler"
	"github.com/kilianp07/wrsn/infra/mqtt"
)

type Config struct {
	Field      FieldConfig      `json:"field"`
	Placement  placement.Config `json:"placement"`
	Simulation scheduler.Config `json:"simulation"`
	Metrics    metrics.Config   `json:"metrics"`
	MQTT       mqtt.Config      `json:"mqtt"`
	Logging    LoggingConfig    `json:"logging"`
	API        APIConfig        `json:"api"`
}

// Load reads a YAML or JSON file, applies K_ prefixed environment
// overrides (K_SIMULATION__POLICY=threshold), then defaults, then
// validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies every section's defaults.
func (c *Config) SetDefaults() {
	c.Field.SetDefaults()
	c.Placement.SetDefaults()
	c.Simulation.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section. Errors are ConfigurationErrors naming the
// section.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"field", c.Field.Validate},
		{"simulation", c.Simulation.Validate},
		{"mqtt", c.MQTT.Validate},
		{"logging", c.Logging.Validate},
	}
	if len(c.Field.Peripherals) == 0 {
		checks = append(checks, struct {
			name string
			fn   func() error
		}{"placement", c.Placement.Validate})
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			return model.Configurationf("%s: %v", chk.name, err)
		}
	}
	return nil
}
