// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - DispatchEvent: a charger visit to a cluster completed
//   - FailureEvent: a peripheral ran out of charge
//   - CheckpointEvent: the peripheral snapshot was taken
//   - TerminationEvent: the run ended
package events
