// Package model defines the provider-neutral request/response contract
// between the runner and a language model endpoint, so downstream logic
// never needs per-vendor branching.
//
// A Request carries the full ordered conversation, the callable tool schemas
// and the active agent's model identifier and sampling parameters. A
// Response is either free text or an ordered set of requested tool
// invocations, distinguished by finish reason. Generation is synchronous:
// one call, one response. Retries, timeouts and looping are the runner's
// concern.
//
// Concrete adapters live in the subpackages model/openai (Chat Completions,
// including OpenAI-compatible endpoints such as NVIDIA NIM) and
// model/anthropic (Messages API). MockModel and ScriptModel support tests
// and examples without network access.
package model
