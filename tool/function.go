package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/safetymesh/safetymesh/internal/schemautil"
)

// Func is the signature of a wrapped tool implementation. Arguments arrive
// already parsed from the model's JSON payload and validated against the
// tool's schema.
type Func func(ctx context.Context, args map[string]any) (any, error)

// FunctionTool adapts a plain Go function into a Tool.
//
// It validates arguments against its schema before execution and normalizes
// failures into *ToolError with consistent codes (CodeValidation for schema
// mismatches, CodeExecution for function failures, custom codes preserved
// when the function returns *ToolError directly). A FunctionTool has no
// mutable state after construction and is safe for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          Func
}

// New constructs a FunctionTool from an explicit JSON schema. Most callers
// should prefer NewFromStruct, which derives the schema from a typed
// argument struct.
func New(name, description string, parameters map[string]any, fn Func) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFromStruct derives the parameter schema from a struct's exported fields
// at registration time.
//
// Field names come from json tags, descriptions from description tags, and a
// field is required unless it is a pointer or tagged omitempty. Unsupported
// field types fail with *SchemaError.
//
// Example:
//
//	type AlertArgs struct {
//	  AlertMessage string `json:"alert_message" description:"Message broadcast to site personnel"`
//	  UrgencyLevel string `json:"urgency_level,omitempty" description:"CRITICAL, HIGH, MODERATE or LOW"`
//	}
//
//	alertTool, err := tool.NewFromStruct(
//	  "send_site_alert",
//	  "Send SMS notification to all site personnel about a safety hazard",
//	  AlertArgs{},
//	  sendSiteAlert,
//	)
func NewFromStruct(name, description string, argsStruct any, fn Func) (*FunctionTool, error) {
	schema, err := schemautil.CreateSchema(argsStruct)
	if err != nil {
		return nil, &SchemaError{Tool: name, Message: err.Error()}
	}
	return New(name, description, schema, fn), nil
}

// MustFromStruct is NewFromStruct for statically known argument structs; it
// panics on a SchemaError. Intended for package-level tool construction
// where a bad schema is a programming error.
func MustFromStruct(name, description string, argsStruct any, fn Func) *FunctionTool {
	t, err := NewFromStruct(name, description, argsStruct, fn)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the unique tool name used in function call declarations.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the declared schema then invokes the wrapped
// function. A panic inside the function is recovered into a CodeExecution
// ToolError: tools are model-driven and must never take down the run loop.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (result any, err error) {
	if vErr := schemautil.ValidateParameters(args, t.parameters); vErr != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", vErr),
			Code:    CodeValidation,
			Details: vErr,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ToolError{
				Tool:    t.name,
				Message: fmt.Sprintf("panic: %v", r),
				Code:    CodeExecution,
			}
		}
	}()

	result, err = t.fn(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return nil, toolErr
		}
		return nil, &ToolError{Tool: t.name, Message: err.Error(), Code: CodeExecution}
	}
	return result, nil
}

// ResultText coerces a tool result into the text form appended to the
// conversation: strings pass through, structured values are JSON encoded,
// anything unencodable goes through fmt.
func ResultText(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	if b, err := json.Marshal(result); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", result)
}
