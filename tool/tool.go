package tool

import (
	"context"
	"fmt"

	"github.com/safetymesh/safetymesh/internal/schemautil"
)

// Tool is a named, schema-described callable a model may request to invoke.
//
// Implementations should provide clear descriptions (the model reads them to
// decide when to call the tool), a minimal JSON schema for Parameters, and
// must be safe for concurrent use: tool definitions are shared read-only
// across concurrent runs.
type Tool interface {
	// Name returns the unique identifier for this tool. Names are unique
	// within any agent's tool set; snake_case is the convention.
	Name() string

	// Description returns a human-readable description shown to the model.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with already-parsed arguments. Errors are
	// returned, never panicked; the runner converts them into tool-result
	// messages so a failing tool cannot abort a run.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ValidationError reports a single argument that failed schema validation.
type ValidationError = schemautil.ValidationError

// SchemaError means a tool's parameters could not be mapped to a JSON
// schema. It is fatal at registration time and can never occur at run time.
type SchemaError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error in %s: %s", e.Tool, e.Message)
}

// Error codes attached to ToolError for categorization.
const (
	// CodeValidation marks schema / argument mismatches.
	CodeValidation = "VALIDATION_ERROR"
	// CodeExecution marks failures inside the wrapped function.
	CodeExecution = "EXECUTION_ERROR"
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
