package agent

import (
	"strings"

	"github.com/safetymesh/safetymesh/model"
	"github.com/safetymesh/safetymesh/tool"
)

// Default sampling configuration applied when options leave them unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
)

// Options configures an Agent. Use functional options with New.
type Options struct {
	// Model is the provider model identifier. Empty means the model
	// adapter's configured default.
	Model string
	// Temperature is the sampling temperature.
	Temperature float64
	// MaxTokens caps the completion length.
	MaxTokens int64
	// Tools the agent may invoke. Names must be unique within the set and
	// must not collide with the reserved transfer_to_ prefix.
	Tools []tool.Tool
	// Handoffs lists the agents this agent may delegate to.
	Handoffs []*Agent
	// HandoffDescription tells a routing agent when to delegate to this
	// agent. It becomes the description of the synthetic transfer tool.
	HandoffDescription string
}

// Agent is a named, immutable configuration of instructions, model target,
// tools and possible handoff targets. It exposes read-only lookups only; no
// mutable state survives between runs.
type Agent struct {
	name               string
	instructions       string
	modelID            string
	temperature        float64
	maxTokens          int64
	tools              []tool.Tool
	toolIndex          map[string]tool.Tool
	handoffs           []*Agent
	handoffDescription string
}

// New constructs an Agent. name must be unique within the graph reachable
// from the entry agent; instructions become the system prompt.
func New(name, instructions string, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &Agent{
		name:               name,
		instructions:       instructions,
		modelID:            opts.Model,
		temperature:        opts.Temperature,
		maxTokens:          opts.MaxTokens,
		tools:              opts.Tools,
		toolIndex:          make(map[string]tool.Tool, len(opts.Tools)),
		handoffs:           opts.Handoffs,
		handoffDescription: opts.HandoffDescription,
	}
	for _, t := range opts.Tools {
		a.toolIndex[t.Name()] = t
	}
	return a
}

// Name returns the agent's unique name.
func (a *Agent) Name() string { return a.name }

// Instructions returns the system prompt text.
func (a *Agent) Instructions() string { return a.instructions }

// Model returns the provider model identifier ("" = adapter default).
func (a *Agent) Model() string { return a.modelID }

// Temperature returns the sampling temperature.
func (a *Agent) Temperature() float64 { return a.temperature }

// MaxTokens returns the completion length cap.
func (a *Agent) MaxTokens() int64 { return a.maxTokens }

// HandoffDescription returns the routing hint for delegating to this agent.
func (a *Agent) HandoffDescription() string { return a.handoffDescription }

// HasTools reports whether the agent declares any tools.
func (a *Agent) HasTools() bool { return len(a.tools) > 0 }

// HasHandoffs reports whether the agent can delegate to other agents.
func (a *Agent) HasHandoffs() bool { return len(a.handoffs) > 0 }

// Tools returns the declared tools in declaration order.
func (a *Agent) Tools() []tool.Tool {
	out := make([]tool.Tool, len(a.tools))
	copy(out, a.tools)
	return out
}

// Handoffs returns the handoff targets in declaration order.
func (a *Agent) Handoffs() []*Agent {
	out := make([]*Agent, len(a.handoffs))
	copy(out, a.handoffs)
	return out
}

// Tool looks up a declared tool by name.
func (a *Agent) Tool(name string) (tool.Tool, bool) {
	t, ok := a.toolIndex[name]
	return t, ok
}

// Handoff looks up a handoff target by agent name, case-insensitively.
func (a *Agent) Handoff(name string) (*Agent, bool) {
	for _, h := range a.handoffs {
		if strings.EqualFold(h.name, name) {
			return h, true
		}
	}
	return nil, false
}

// HandoffByToolName resolves a synthetic transfer tool name back to its
// target agent. Resolution uses the same deterministic derivation as tool
// generation, so any tool the model was offered resolves; anything else is a
// HandoffResolutionError at the runner level.
func (a *Agent) HandoffByToolName(toolName string) (*Agent, bool) {
	if !tool.IsTransferToolName(toolName) {
		return nil, false
	}
	for _, h := range a.handoffs {
		if tool.TransferToolName(h.name) == toolName {
			return h, true
		}
	}
	return nil, false
}

// EffectiveTools returns the tool set presented to the model: the declared
// tools plus, when handoffs are enabled, one synthetic transfer tool per
// handoff target. The synthetic tools are generated here and never
// hand-authored.
func (a *Agent) EffectiveTools(withHandoffs bool) []tool.Tool {
	out := make([]tool.Tool, 0, len(a.tools)+len(a.handoffs))
	out = append(out, a.tools...)
	if withHandoffs {
		for _, h := range a.handoffs {
			out = append(out, tool.NewTransferTool(h.name, h.handoffDescription))
		}
	}
	return out
}

// ToolDefinitions renders the effective tool set into the schema form
// included in a model request.
func (a *Agent) ToolDefinitions(withHandoffs bool) []model.ToolDefinition {
	tools := a.EffectiveTools(withHandoffs)
	if len(tools) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		}
	}
	return defs
}
