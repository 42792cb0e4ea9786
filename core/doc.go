// Package core contains the conversation primitives shared by every other
// SafetyMesh package: message roles, tool call references and the ordered,
// append-only conversation Context exchanged with a model endpoint.
//
// Design principles:
//   - Message order is meaningful and is never reordered; a tool-result
//     message always follows the assistant message that requested it so the
//     history can be replayed to any provider verbatim.
//   - A Context is owned by exactly one run. Branching or continuation uses
//     an explicit Clone; contexts are never implicitly aliased across runs.
//
// Provider-specific serialization (OpenAI chat messages, Anthropic content
// blocks) lives in the model adapters, which consume Messages() as-is.
package core
