package model

import (
	"context"
	"fmt"

	"github.com/safetymesh/safetymesh/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (minimal subset).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by the runner: the
// ordered conversation plus the active agent's tool schemas, model
// identifier and sampling parameters.
type Request struct {
	Model       string           `json:"model"`
	Messages    []core.Message   `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int64            `json:"max_tokens"`
}

// Finish reasons normalized across providers.
const (
	// FinishText means the model produced a terminal text answer.
	FinishText = "stop"
	// FinishToolCalls means the model requested one or more tool invocations.
	FinishToolCalls = "tool_calls"
)

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the unified model output: free text, requested tool calls, or
// both (some providers emit commentary text alongside tool calls).
type Response struct {
	Content      string          `json:"content,omitempty"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason"`
	Usage        *TokenUsage     `json:"usage,omitempty"`
}

// HasToolCalls reports whether the model requested any tool invocations.
func (r *Response) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the runner requires to drive generation.
// Implementations must honor ctx cancellation and be safe for concurrent
// use: one Model instance serves all concurrent runs.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// CallError is a transport or provider failure surfaced after the runner
// exhausted its retry budget. It is fatal for the run: the caller receives
// it together with whatever trace accumulated up to that point.
type CallError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("model call failed after %d attempt(s) (%s): %v", e.Attempts, e.Provider, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }
