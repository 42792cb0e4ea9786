// Package trace records the structured execution history of one run: agent
// activations, model-call iterations, tool invocations (successes and
// failures alike) and handoff transitions.
//
// A Recorder is a passive observer scoped to a single runner invocation,
// never a shared process-wide log, so concurrent runs cannot interleave
// records. It never alters control flow: failures are recorded and surfaced
// in the returned trace instead of being silently dropped.
package trace
