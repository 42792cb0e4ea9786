// Package agent defines the static agent configuration consumed by the
// runner: a named bundle of instructions, model identifier, sampling
// parameters, tool set and handoff targets.
//
// Agents form a directed graph through their handoff sets. The graph is
// static configuration: agents are constructed once, are read-only during
// execution and hold no state between runs, which makes them safe for
// concurrent reads across parallel runs. Runaway delegation through cyclic
// graphs is bounded at run time by the runner's cumulative handoff limit,
// not here.
package agent
