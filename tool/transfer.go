package tool

import (
	"context"
	"fmt"
	"strings"
)

// transferPrefix is the naming scheme for synthetic handoff tools. The
// runner classifies tool call requests by this prefix, so the prefix is
// reserved: user tools must not use it.
const transferPrefix = "transfer_to_"

// NormalizeAgentName maps an agent display name to its tool-name form:
// lowercased with spaces collapsed to underscores ("PPE Compliance Agent"
// -> "ppe_compliance_agent").
func NormalizeAgentName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// TransferToolName derives the synthetic handoff tool name for a target
// agent. The derivation is deterministic so both sides (tool generation and
// call classification) always agree.
func TransferToolName(agentName string) string {
	return transferPrefix + NormalizeAgentName(agentName)
}

// IsTransferToolName reports whether a requested tool name is a synthetic
// handoff tool.
func IsTransferToolName(toolName string) bool {
	return strings.HasPrefix(toolName, transferPrefix)
}

// NewTransferTool builds the synthetic handoff tool for a target agent.
//
// description is the target's handoff-selection description (when to
// delegate to it); when empty a generic fallback is used. The tool takes a
// single optional reason argument so the model can state why it is
// delegating; the rationale ends up in the conversation, not in control
// flow.
func NewTransferTool(targetName, description string) *FunctionTool {
	if description == "" {
		description = fmt.Sprintf("Transfer the conversation to the %s agent.", targetName)
	}

	parameters := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reason": map[string]any{
				"type":        "string",
				"description": "Reason for the handoff",
			},
		},
		"required": []string{},
	}

	return New(TransferToolName(targetName), description, parameters,
		func(_ context.Context, args map[string]any) (any, error) {
			reason, _ := args["reason"].(string)
			if reason != "" {
				return fmt.Sprintf("Transferring to %s: %s", targetName, reason), nil
			}
			return fmt.Sprintf("Transferring to %s", targetName), nil
		})
}
