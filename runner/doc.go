// Package runner implements the execution loop at the center of SafetyMesh:
// call the model, interpret the response, execute requested tools or switch
// agents via handoff, repeat until a terminal answer or a limit is reached.
//
// The loop is single-threaded and synchronous per invocation. Tool calls
// within one model turn execute sequentially in the order the model listed
// them: tools have side effects (dispatching emergency services, sending
// alerts) whose ordering matters. Concurrent independent runs are isolated:
// each run owns its Context and trace Recorder, and only the read-only
// agent/tool definitions are shared.
//
// Error handling follows a strict taxonomy: tool failures and unresolvable
// handoffs are recovered locally as tool-result messages so the model can
// react; exhausted model-call retries are fatal and surface together with
// the trace accumulated so far; iteration and handoff limits are designed
// terminal states that return a truncated Result, not errors.
package runner
