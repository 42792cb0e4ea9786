package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_TerminalAnswer(t *testing.T) {
	r := NewRecorder()
	r.StartAgent("Safety Router Agent")
	r.SetIterations(1)
	r.EndAgent("All clear.")

	traces := r.Traces()
	require.Len(t, traces, 1)
	tr := traces[0]
	assert.Equal(t, "Safety Router Agent", tr.AgentName)
	assert.Equal(t, 1, tr.Iterations)
	require.NotNil(t, tr.FinalOutput)
	assert.Equal(t, "All clear.", *tr.FinalOutput)
	assert.Empty(t, tr.HandoffTo)
	assert.False(t, tr.Truncated)
	assert.False(t, tr.EndTime.Before(tr.StartTime))
}

func TestRecorder_Handoff(t *testing.T) {
	r := NewRecorder()
	r.StartAgent("Safety Router Agent")
	r.EndAgentHandoff("PPE Compliance Agent")

	traces := r.Traces()
	require.Len(t, traces, 1)
	assert.Equal(t, "PPE Compliance Agent", traces[0].HandoffTo)
	// The answer belongs to a later activation.
	assert.Nil(t, traces[0].FinalOutput)
}

func TestRecorder_ToolCallsRecordedInOrder(t *testing.T) {
	r := NewRecorder()
	r.StartAgent("Fire Safety Agent")
	r.RecordToolCall(ToolCallTrace{ToolName: "detect_fire_hazard", Success: true, Result: "ok"})
	r.RecordToolCall(ToolCallTrace{ToolName: "send_site_alert", Success: false, Error: "sms gateway down"})
	r.EndAgent("done")

	traces := r.Traces()
	require.Len(t, traces, 1)
	calls := traces[0].ToolCalls
	require.Len(t, calls, 2)
	assert.Equal(t, "detect_fire_hazard", calls[0].ToolName)
	assert.True(t, calls[0].Success)
	assert.Equal(t, "send_site_alert", calls[1].ToolName)
	assert.False(t, calls[1].Success)
	assert.Equal(t, "sms gateway down", calls[1].Error)
	assert.False(t, calls[0].Timestamp.IsZero())
}

func TestRecorder_Truncated(t *testing.T) {
	r := NewRecorder()
	r.StartAgent("Loop Agent")
	r.SetIterations(10)
	r.EndAgentTruncated("partial answer")

	traces := r.Traces()
	require.Len(t, traces, 1)
	assert.True(t, traces[0].Truncated)
	require.NotNil(t, traces[0].FinalOutput)
	assert.Equal(t, "partial answer", *traces[0].FinalOutput)
}

func TestRecorder_RevisitedAgentProducesTwoRecords(t *testing.T) {
	r := NewRecorder()
	r.StartAgent("A")
	r.EndAgentHandoff("B")
	r.StartAgent("B")
	r.EndAgentHandoff("A")
	r.StartAgent("A")
	r.EndAgent("final")

	traces := r.Traces()
	require.Len(t, traces, 3)
	assert.Equal(t, []string{"A", "B", "A"}, []string{traces[0].AgentName, traces[1].AgentName, traces[2].AgentName})
}

func TestRecorder_EventsWithoutOpenActivationIgnored(t *testing.T) {
	r := NewRecorder()
	r.RecordToolCall(ToolCallTrace{ToolName: "orphan"})
	r.SetIterations(3)
	r.EndAgent("nothing open")
	assert.Empty(t, r.Traces())
}

func TestRecorder_Summary(t *testing.T) {
	r := NewRecorder()
	r.StartAgent("Safety Router Agent")
	r.EndAgentHandoff("Fire Safety Agent")
	r.StartAgent("Fire Safety Agent")
	r.RecordToolCall(ToolCallTrace{ToolName: "detect_fire_hazard", Success: true})
	r.SetIterations(2)
	r.EndAgent("Evacuated.")

	s := r.Summary()
	assert.Contains(t, s, "EXECUTION SUMMARY")
	assert.Contains(t, s, "Safety Router Agent")
	assert.Contains(t, s, "-> Fire Safety Agent")
	assert.Contains(t, s, "detect_fire_hazard")
}
