package metrics

import (
	"fmt"

	"github.com/kilianp07/wrsn/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink makes a sink type available to configuration.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewMetricsSink builds the sinks listed in cfgs. No entry yields a NopSink,
// a single entry its sink, several entries a MultiSink in listed order.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	sinks := make([]MetricsSink, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, fmt.Errorf("metrics sink %d (%s): %w", i, c.Type, err)
		}
		sinks = append(sinks, s)
	}
	switch len(sinks) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}

// RegisteredSinks lists the sink types available to configuration.
func RegisteredSinks() []string {
	return sinkRegistry.Names()
}
