package core

// Context is the ordered conversation history exchanged with a model.
//
// It is append-only during a run: the runner adds system, user, assistant and
// tool-result messages but never removes or reorders existing ones. A Context
// is not safe for concurrent use; each run owns its own instance.
type Context struct {
	messages []Message
}

// NewContext creates an empty conversation context.
func NewContext() *Context { return &Context{} }

// NewContextFromMessages creates a context seeded with an existing history.
// The slice is copied so the caller retains ownership of its input.
func NewContextFromMessages(messages []Message) *Context {
	c := &Context{messages: make([]Message, len(messages))}
	copy(c.messages, messages)
	return c
}

// Append adds a message to the history.
func (c *Context) Append(msg Message) { c.messages = append(c.messages, msg) }

// AddSystem appends a system message carrying agent instructions.
func (c *Context) AddSystem(content string) {
	c.Append(Message{Role: RoleSystem, Content: content})
}

// AddUser appends a user message.
func (c *Context) AddUser(content string) {
	c.Append(Message{Role: RoleUser, Content: content})
}

// AddAssistant appends a plain assistant text message.
func (c *Context) AddAssistant(content string) {
	c.Append(Message{Role: RoleAssistant, Content: content})
}

// AddAssistantToolCalls appends an assistant message that requests one or
// more tool invocations. The calls keep the order the model returned them in.
func (c *Context) AddAssistantToolCalls(content string, calls []ToolCall) {
	cp := make([]ToolCall, len(calls))
	copy(cp, calls)
	c.Append(Message{Role: RoleAssistant, Content: content, ToolCalls: cp})
}

// AddToolResult appends the result of a single tool invocation, tagged with
// the originating call ID so providers can pair request and response.
func (c *Context) AddToolResult(toolCallID, toolName, content string) {
	c.Append(Message{Role: RoleTool, Content: content, Name: toolName, ToolCallID: toolCallID})
}

// Messages returns a defensive copy of the history in order.
func (c *Context) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the history.
func (c *Context) Len() int { return len(c.messages) }

// LeadsWithSystem reports whether the first message is a system message.
// The runner uses this to avoid stacking instructions when a context is
// reused across agent activations.
func (c *Context) LeadsWithSystem() bool {
	return len(c.messages) > 0 && c.messages[0].Role == RoleSystem
}

// LastAssistantText returns the content of the most recent assistant message
// that carried text, or "" if none exists. Used for degraded results when a
// run hits an iteration or handoff limit.
func (c *Context) LastAssistantText() string {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant && c.messages[i].Content != "" {
			return c.messages[i].Content
		}
	}
	return ""
}

// Clone produces an independent deep copy for branching or continuation.
func (c *Context) Clone() *Context {
	cp := &Context{messages: make([]Message, len(c.messages))}
	copy(cp.messages, c.messages)
	for i := range cp.messages {
		if len(c.messages[i].ToolCalls) > 0 {
			cp.messages[i].ToolCalls = make([]ToolCall, len(c.messages[i].ToolCalls))
			copy(cp.messages[i].ToolCalls, c.messages[i].ToolCalls)
		}
	}
	return cp
}
