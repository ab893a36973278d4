// Package metrics defines the sinks recording what a simulation run does:
// dispatches, peripheral failures, admission queue length and the final run
// summary. Sinks like PromSink and InfluxSink live in infra/metrics and
// register themselves by name; NewMetricsSink builds them from
// configuration and returns a MultiSink when several are configured.
package metrics
