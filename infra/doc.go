// Package infra holds the adapters that connect a simulation to the outside:
// zerolog logging, Prometheus and InfluxDB metrics sinks, and the MQTT event
// publisher. Adapters implement interfaces from the core packages and are
// never imported by them.
package infra
