package agent

import (
	"context"
	"testing"

	"github.com/safetymesh/safetymesh/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopTool(name string) tool.Tool {
	return tool.New(name, "noop", map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) { return "ok", nil })
}

func TestNew_Defaults(t *testing.T) {
	a := New("Test Agent", "You are a test agent.")
	assert.Equal(t, "Test Agent", a.Name())
	assert.Equal(t, "You are a test agent.", a.Instructions())
	assert.Equal(t, DefaultTemperature, a.Temperature())
	assert.Equal(t, int64(DefaultMaxTokens), a.MaxTokens())
	assert.False(t, a.HasTools())
	assert.False(t, a.HasHandoffs())
}

func TestAgent_ToolLookup(t *testing.T) {
	a := New("A", "instructions", func(o *Options) {
		o.Tools = []tool.Tool{noopTool("alpha"), noopTool("beta")}
	})

	got, ok := a.Tool("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", got.Name())

	_, ok = a.Tool("missing")
	assert.False(t, ok)
}

func TestAgent_HandoffLookupCaseInsensitive(t *testing.T) {
	specialist := New("Fire Safety Agent", "fire instructions")
	router := New("Router", "route", func(o *Options) {
		o.Handoffs = []*Agent{specialist}
	})

	got, ok := router.Handoff("fire safety agent")
	require.True(t, ok)
	assert.Equal(t, "Fire Safety Agent", got.Name())

	_, ok = router.Handoff("Unknown Agent")
	assert.False(t, ok)
}

func TestAgent_HandoffByToolName(t *testing.T) {
	ems := New("EMS Safety Agent", "ems")
	fire := New("Fire Safety Agent", "fire")
	router := New("Router", "route", func(o *Options) {
		o.Handoffs = []*Agent{ems, fire}
	})

	got, ok := router.HandoffByToolName("transfer_to_fire_safety_agent")
	require.True(t, ok)
	assert.Equal(t, "Fire Safety Agent", got.Name())

	_, ok = router.HandoffByToolName("transfer_to_compliance_agent")
	assert.False(t, ok)

	// Not a transfer tool name at all.
	_, ok = router.HandoffByToolName("detect_fire_hazard")
	assert.False(t, ok)
}

func TestAgent_EffectiveTools(t *testing.T) {
	specialist := New("PPE Compliance Agent", "ppe", func(o *Options) {
		o.HandoffDescription = "Use for PPE violations"
	})
	a := New("Router", "route", func(o *Options) {
		o.Tools = []tool.Tool{noopTool("lookup")}
		o.Handoffs = []*Agent{specialist}
	})

	// Handoffs disabled: declared tools only.
	tools := a.EffectiveTools(false)
	require.Len(t, tools, 1)
	assert.Equal(t, "lookup", tools[0].Name())

	// Handoffs enabled: one synthetic transfer tool per target, appended
	// after the declared tools.
	tools = a.EffectiveTools(true)
	require.Len(t, tools, 2)
	assert.Equal(t, "lookup", tools[0].Name())
	assert.Equal(t, "transfer_to_ppe_compliance_agent", tools[1].Name())
	assert.Equal(t, "Use for PPE violations", tools[1].Description())
}

func TestAgent_ToolDefinitions(t *testing.T) {
	a := New("A", "instructions", func(o *Options) {
		o.Tools = []tool.Tool{noopTool("alpha")}
	})

	defs := a.ToolDefinitions(false)
	require.Len(t, defs, 1)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, "alpha", defs[0].Function.Name)
	assert.NotNil(t, defs[0].Function.Parameters)

	empty := New("B", "instructions")
	assert.Nil(t, empty.ToolDefinitions(true))
}
