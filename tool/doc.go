// Package tool implements the function calling subsystem that lets agents
// invoke structured capabilities (detectors, notifications, computations)
// with schema validated arguments and consistent error handling.
//
// Tools are constructed once at agent definition time and are immutable
// thereafter. The schema for a FunctionTool is derived from an explicit typed
// argument struct, so it is statically verifiable and deterministic:
// registering the same struct twice produces structurally identical schemas.
//
// The package also owns the synthetic transfer tools that model handoffs
// between agents. These are generated from an agent's handoff set and never
// hand-authored; see NewTransferTool.
package tool
