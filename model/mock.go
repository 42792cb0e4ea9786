package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/safetymesh/safetymesh/core"
)

// MockModel is a lightweight in-memory Model useful for tests and examples.
// It answers with canned completions keyed by the last user message, or an
// echo when no canned response matches.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock", SupportsTools: true},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input.
func (m *MockModel) AddResponse(input, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = response
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var input string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == core.RoleUser {
			input = req.Messages[i].Content
			break
		}
	}

	m.mu.Lock()
	text, ok := m.responses[input]
	m.mu.Unlock()
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", input)
	}
	return &Response{Content: text, FinishReason: FinishText}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

// Step is one scripted model turn: it receives the request the runner built
// and returns the canned response (or error) for that call.
type Step func(req Request) (*Response, error)

// ScriptModel replays an ordered script of Steps, one per Generate call, and
// records every request it receives so tests can assert on the exact message
// lists sent to the model. Calling past the end of the script is an error.
type ScriptModel struct {
	mu       sync.Mutex
	name     string
	steps    []Step
	requests []Request
}

// NewScriptModel constructs a ScriptModel from an ordered list of steps.
func NewScriptModel(name string, steps ...Step) *ScriptModel {
	return &ScriptModel{name: name, steps: steps}
}

// Enqueue appends further steps to the script.
func (m *ScriptModel) Enqueue(steps ...Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, steps...)
}

// Generate implements Model by consuming the next scripted step.
func (m *ScriptModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	idx := len(m.requests) - 1
	var step Step
	if idx < len(m.steps) {
		step = m.steps[idx]
	}
	m.mu.Unlock()

	if step == nil {
		return nil, fmt.Errorf("script exhausted: call %d has no step", idx+1)
	}
	return step(req)
}

// Info implements Model.
func (m *ScriptModel) Info() Info {
	return Info{Name: m.name, Provider: "mock", SupportsTools: true}
}

// Requests returns the requests received so far, in call order.
func (m *ScriptModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns how many times Generate was invoked.
func (m *ScriptModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// TextStep builds a step that answers with terminal text.
func TextStep(text string) Step {
	return func(Request) (*Response, error) {
		return &Response{Content: text, FinishReason: FinishText}, nil
	}
}

// ToolCallStep builds a step that requests the given tool invocations, in
// order. Call IDs are generated when left empty.
func ToolCallStep(calls ...core.ToolCall) Step {
	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = "call_" + uuid.NewString()[:8]
		}
		if calls[i].Arguments == "" {
			calls[i].Arguments = "{}"
		}
	}
	return func(Request) (*Response, error) {
		return &Response{ToolCalls: calls, FinishReason: FinishToolCalls}, nil
	}
}

// ErrorStep builds a step that fails with err, simulating a transport or
// provider error.
func ErrorStep(err error) Step {
	return func(Request) (*Response, error) { return nil, err }
}
