// Package scheduler drives simulated charging cycles.
//
// Each cycle the configured Policy picks a cluster, or none. A visit walks
// the state machine Idle -> Traveling -> Transferring -> Replenishing and
// back to Idle; the termination budget is checked once at the top of every
// cycle. Every quantity of distance travelled, energy transferred and energy
// replenished advances the injected clock and drains the peripherals that
// are not being charged. A peripheral whose charge reaches zero fails for
// good.
//
// The loop is strictly sequential; the only collaborators are the clock,
// the logger, the metrics sink and an optional event publisher.
package scheduler
