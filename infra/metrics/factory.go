package metrics

import (
	"github.com/kilianp07/wrsn/core/factory"
	coremetrics "github.com/kilianp07/wrsn/core/metrics"
	"github.com/kilianp07/wrsn/infra/logger"
)

// init registers the built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("log", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewLogSink(logger.New("metrics")), nil
	})

	// The HTTP endpoint is started separately from metrics.prometheus_port.
	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})
}
