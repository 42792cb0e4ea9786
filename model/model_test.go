package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetymesh/safetymesh/core"
)

func TestMockModel_CannedAndEchoResponses(t *testing.T) {
	m := NewMockModel("test-mock")
	m.AddResponse("hello", "hi there")

	resp, err := m.Generate(context.Background(), Request{
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: "instructions"},
			{Role: core.RoleUser, Content: "hello"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Content)
	assert.Equal(t, FinishText, resp.FinishReason)
	assert.False(t, resp.HasToolCalls())

	resp, err = m.Generate(context.Background(), Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "unknown"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: unknown", resp.Content)
}

func TestMockModel_AnswersToLastUserMessage(t *testing.T) {
	m := NewMockModel("test-mock")
	m.AddResponse("second", "matched")

	resp, err := m.Generate(context.Background(), Request{
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "first"},
			{Role: core.RoleAssistant, Content: "reply"},
			{Role: core.RoleUser, Content: "second"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "matched", resp.Content)
}

func TestScriptModel_ReplaysStepsInOrder(t *testing.T) {
	m := NewScriptModel("scripted",
		ToolCallStep(core.ToolCall{Name: "lookup"}),
		TextStep("done"),
	)

	resp, err := m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	require.True(t, resp.HasToolCalls())
	assert.Equal(t, "lookup", resp.ToolCalls[0].Name)
	assert.NotEmpty(t, resp.ToolCalls[0].ID)
	assert.Equal(t, "{}", resp.ToolCalls[0].Arguments)
	assert.Equal(t, FinishToolCalls, resp.FinishReason)

	resp, err = m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Content)

	assert.Equal(t, 2, m.Calls())
}

func TestScriptModel_ExhaustedScriptFails(t *testing.T) {
	m := NewScriptModel("scripted", TextStep("only step"))

	_, err := m.Generate(context.Background(), Request{})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script exhausted")
}

func TestScriptModel_RecordsRequests(t *testing.T) {
	m := NewScriptModel("scripted", TextStep("a"), TextStep("b"))

	_, err := m.Generate(context.Background(), Request{Model: "m1"})
	require.NoError(t, err)
	_, err = m.Generate(context.Background(), Request{Model: "m2"})
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "m1", reqs[0].Model)
	assert.Equal(t, "m2", reqs[1].Model)
}

func TestErrorStep(t *testing.T) {
	boom := errors.New("boom")
	m := NewScriptModel("scripted", ErrorStep(boom))

	_, err := m.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
}

func TestCallError_Unwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := &CallError{Provider: "openai", Attempts: 3, Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "openai")
	assert.Contains(t, err.Error(), "3")
}
