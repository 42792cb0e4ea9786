package core

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem carries agent instructions.
	RoleSystem Role = "system"
	// RoleUser carries caller input.
	RoleUser Role = "user"
	// RoleAssistant carries model output (text and/or tool call requests).
	RoleAssistant Role = "assistant"
	// RoleTool carries the result of a single tool invocation.
	RoleTool Role = "tool"
)

// ToolCall is a tool invocation requested by the model within an assistant
// message. Arguments is the raw JSON payload exactly as the provider
// returned it; parsing is deferred to the execution layer.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// Message is one turn in a conversation.
//
// Field usage by role:
//   - system / user: Content only
//   - assistant: Content and/or ToolCalls
//   - tool: Content (result text), Name (tool name) and ToolCallID linking
//     back to the originating ToolCall
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}
