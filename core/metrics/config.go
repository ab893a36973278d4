package metrics

import "github.com/kilianp07/wrsn/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusPort is the listen address, such as ":2112", of the
	// /metrics and /api/runs endpoints. Empty disables the server.
	PrometheusPort string `json:"prometheus_port" yaml:"prometheus_port"`
}
