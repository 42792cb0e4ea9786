package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_AppendOrder(t *testing.T) {
	c := NewContext()
	c.AddSystem("instructions")
	c.AddUser("hello")
	c.AddAssistantToolCalls("", []ToolCall{{ID: "call-1", Name: "lookup", Arguments: `{"q":"x"}`}})
	c.AddToolResult("call-1", "lookup", "result")
	c.AddAssistant("done")

	msgs := c.Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, RoleAssistant, msgs[2].Role)
	assert.Equal(t, "call-1", msgs[2].ToolCalls[0].ID)
	// Tool result immediately follows the assistant message that requested it.
	assert.Equal(t, RoleTool, msgs[3].Role)
	assert.Equal(t, "call-1", msgs[3].ToolCallID)
	assert.Equal(t, "lookup", msgs[3].Name)
	assert.Equal(t, RoleAssistant, msgs[4].Role)
}

func TestContext_CloneIsIndependent(t *testing.T) {
	c := NewContext()
	c.AddSystem("sys")
	c.AddAssistantToolCalls("", []ToolCall{{ID: "a", Name: "t"}})

	cp := c.Clone()
	cp.AddUser("extra")
	cp.Messages()[1].ToolCalls[0].Name = "mutated"

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 3, cp.Len())
	assert.Equal(t, "t", c.Messages()[1].ToolCalls[0].Name)
}

func TestContext_MessagesReturnsCopy(t *testing.T) {
	c := NewContext()
	c.AddUser("hi")

	msgs := c.Messages()
	msgs[0].Content = "changed"

	assert.Equal(t, "hi", c.Messages()[0].Content)
}

func TestContext_LeadsWithSystem(t *testing.T) {
	c := NewContext()
	assert.False(t, c.LeadsWithSystem())
	c.AddUser("hi")
	assert.False(t, c.LeadsWithSystem())

	c2 := NewContext()
	c2.AddSystem("sys")
	assert.True(t, c2.LeadsWithSystem())
}

func TestContext_LastAssistantText(t *testing.T) {
	c := NewContext()
	assert.Equal(t, "", c.LastAssistantText())

	c.AddUser("hi")
	c.AddAssistant("first")
	c.AddAssistantToolCalls("", []ToolCall{{ID: "x", Name: "t"}})
	assert.Equal(t, "first", c.LastAssistantText())

	c.AddAssistant("second")
	assert.Equal(t, "second", c.LastAssistantText())
}

func TestNewContextFromMessages_CopiesInput(t *testing.T) {
	seed := []Message{{Role: RoleUser, Content: "hi"}}
	c := NewContextFromMessages(seed)
	seed[0].Content = "changed"
	assert.Equal(t, "hi", c.Messages()[0].Content)
}
