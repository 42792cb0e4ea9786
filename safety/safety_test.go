package safety

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetymesh/safetymesh/core"
	"github.com/safetymesh/safetymesh/model"
	"github.com/safetymesh/safetymesh/runner"
)

func callTool(t *testing.T, fn interface {
	Call(ctx context.Context, args map[string]any) (any, error)
}, args map[string]any) string {
	t.Helper()
	result, err := fn.Call(context.Background(), args)
	require.NoError(t, err)
	text, ok := result.(string)
	require.True(t, ok)
	return text
}

func TestEMSHazardTool_Severities(t *testing.T) {
	ems := NewEMSHazardTool(NewMockServices())

	out := callTool(t, ems, map[string]any{"description": "Crew on break, all workers fine"})
	assert.Contains(t, out, "No immediate medical emergency")

	// pale (5) alone stays MODERATE: no dispatch.
	out = callTool(t, ems, map[string]any{"description": "Worker looks pale"})
	assert.Contains(t, out, "Severity: MODERATE")
	assert.NotContains(t, out, "911 DISPATCHED")

	// chest pain (10) + unconscious (10) crosses CRITICAL and dispatches.
	out = callTool(t, ems, map[string]any{"description": "Worker with chest pain, now unconscious"})
	assert.Contains(t, out, "Severity: CRITICAL")
	assert.Contains(t, out, "911 DISPATCHED - Call ID: 911-")
	assert.Contains(t, out, "Incident logged: INC-")
	assert.Contains(t, out, "chest pain")
	assert.Contains(t, out, "unconscious")
}

func TestFireHazardTool_Severities(t *testing.T) {
	fire := NewFireHazardTool(NewMockServices())

	out := callTool(t, fire, map[string]any{"description": "Clean site, no issues"})
	assert.Contains(t, out, "No active fire hazards")

	// welding (5) alone stays MODERATE.
	out = callTool(t, fire, map[string]any{"description": "Welding in progress"})
	assert.Contains(t, out, "Risk Level: MODERATE")
	assert.NotContains(t, out, "FIRE DEPARTMENT DISPATCHED")

	// fire (10) + gas leak (10) crosses CRITICAL; fire engine included.
	out = callTool(t, fire, map[string]any{"description": "Open fire near a gas leak"})
	assert.Contains(t, out, "Risk Level: CRITICAL")
	assert.Contains(t, out, "FIRE DEPARTMENT DISPATCHED")
	assert.Contains(t, out, "EVACUATE immediate area")
}

func TestComplianceTool_Severities(t *testing.T) {
	compliance := NewComplianceTool(NewMockServices())

	out := callTool(t, compliance, map[string]any{"description": "Everyone properly equipped"})
	assert.Contains(t, out, "PPE compliance satisfactory")

	// no hearing protection (6) is HIGH; logged but no stoppage.
	out = callTool(t, compliance, map[string]any{"description": "Operator with no hearing protection"})
	assert.Contains(t, out, "Severity: HIGH")
	assert.Contains(t, out, "Violation logged: INC-")
	assert.NotContains(t, out, "WORK STOPPAGE ISSUED")

	// no harness (10) is CRITICAL and stops work.
	out = callTool(t, compliance, map[string]any{"description": "Worker on the edge with no harness"})
	assert.Contains(t, out, "Severity: CRITICAL")
	assert.Contains(t, out, "WORK STOPPAGE ISSUED")
}

func TestSiteAlertTool(t *testing.T) {
	alert := NewSiteAlertTool(NewMockServices())

	out := callTool(t, alert, map[string]any{"alert_message": "Evacuate zone 3"})
	assert.Contains(t, out, "SITE-WIDE ALERT SENT")
	assert.Contains(t, out, "Batch ID: SMS-")
	assert.Contains(t, out, `"Evacuate zone 3"`)

	// Missing required argument is a validation error.
	_, err := alert.Call(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alert_message")
}

func TestMockNotifier_RecipientTiers(t *testing.T) {
	n := MockNotifier{}

	critical := n.SendAlert("msg", "CRITICAL", "ALERT")
	high := n.SendAlert("msg", "HIGH", "ALERT")
	low := n.SendAlert("msg", "LOW", "ALERT")

	assert.Equal(t, len(sitePersonnel), critical.TotalSent)
	assert.Greater(t, critical.TotalSent, high.TotalSent)
	assert.Greater(t, high.TotalSent, low.TotalSent)
	assert.Contains(t, critical.Message, "EMERGENCY")
	assert.Contains(t, low.Message, "NOTICE")
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{
		"video_id": "vid-42",
		"location_description": "Level 3 scaffold, east wing",
		"hazards": [{
			"hazard_type": "PPE Violation (Missing/Incorrect)",
			"description": "Worker without hard hat",
			"risk_level": "HIGH",
			"recommended_actions": ["Stop worker", "Provide hard hat"]
		}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "vid-42", ev.VideoID)
	require.Len(t, ev.Hazards, 1)
	assert.Equal(t, HazardPPEViolation, ev.Hazards[0].HazardType)
	assert.Equal(t, RiskHigh, ev.MaxRiskLevel())

	_, err = ParseEvent([]byte(`{"location_description": "no id"}`))
	assert.Error(t, err)

	_, err = ParseEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestAgentGraph_Wiring(t *testing.T) {
	g := NewAgentGraph(NewMockServices(), func(o *GraphOptions) {
		o.Model = "meta/llama-3.1-70b-instruct"
	})

	assert.Equal(t, "Safety Router Agent", g.Router.Name())
	assert.Equal(t, "meta/llama-3.1-70b-instruct", g.Router.Model())
	require.Len(t, g.Router.Handoffs(), 3)
	assert.False(t, g.Router.HasTools())

	for _, specialist := range []struct {
		name     string
		toolName string
	}{
		{"EMS Safety Agent", "detect_ems_hazard"},
		{"Fire Safety Agent", "detect_fire_hazard"},
		{"PPE Compliance Agent", "detect_compliance_violation"},
	} {
		a, ok := g.Router.Handoff(specialist.name)
		require.True(t, ok, specialist.name)
		_, ok = a.Tool(specialist.toolName)
		assert.True(t, ok, specialist.toolName)
		_, ok = a.Tool("send_site_alert")
		assert.True(t, ok)
		assert.NotEmpty(t, a.HandoffDescription())
	}

	assert.Equal(t, g.Fire, g.Agent("Fire Safety Agent"))
	assert.Equal(t, g.Router, g.Agent("unknown"))
}

func TestAnalyzer_RoutesEventToSpecialist(t *testing.T) {
	m := model.NewScriptModel("scripted",
		model.ToolCallStep(core.ToolCall{
			Name:      "transfer_to_ppe_compliance_agent",
			Arguments: `{"reason":"missing hard hat"}`,
		}),
		model.ToolCallStep(core.ToolCall{
			Name:      "detect_compliance_violation",
			Arguments: `{"description":"Worker without hard hat on level 3"}`,
		}),
		model.TextStep("Stop work order issued."),
	)
	r := runner.New(m)
	graph := NewAgentGraph(NewMockServices())
	analyzer := NewAnalyzer(r, graph)

	event := &Event{
		VideoID:             "vid-100",
		LocationDescription: "Level 3, east wing",
		Hazards: []Hazard{{
			HazardType:  HazardPPEViolation,
			Description: "Worker without hard hat",
			RiskLevel:   RiskHigh,
		}},
	}

	analysis := analyzer.Analyze(context.Background(), event)
	assert.Equal(t, "success", analysis.Status)
	assert.Equal(t, "vid-100", analysis.VideoID)
	assert.Equal(t, "Stop work order issued.", analysis.AgentOutput)
	assert.False(t, analysis.Truncated)

	require.Len(t, analysis.Trace, 2)
	assert.Equal(t, "Safety Router Agent", analysis.Trace[0].AgentName)
	assert.Equal(t, "PPE Compliance Agent", analysis.Trace[0].HandoffTo)
	assert.Empty(t, analysis.Trace[0].ToolCalls)
	require.Len(t, analysis.Trace[1].ToolCalls, 1)
	assert.Equal(t, "detect_compliance_violation", analysis.Trace[1].ToolCalls[0].ToolName)
	assert.True(t, strings.Contains(analysis.Trace[1].ToolCalls[0].Result, "PPE VIOLATION DETECTED"))

	// The router saw the event JSON in its prompt.
	first := m.Requests()[0]
	var userMsg string
	for _, msg := range first.Messages {
		if msg.Role == core.RoleUser {
			userMsg = msg.Content
		}
	}
	assert.Contains(t, userMsg, "vid-100")
	assert.Contains(t, userMsg, "Analyze this construction site scenario")
}

func TestAnalyzer_FollowUpContinuesSession(t *testing.T) {
	m := model.NewScriptModel("scripted",
		model.TextStep("All clear."),
		model.TextStep("No, the area was empty."),
	)
	r := runner.New(m)
	graph := NewAgentGraph(NewMockServices())
	analyzer := NewAnalyzer(r, graph)

	event := &Event{VideoID: "vid-200", LocationDescription: "Gate A"}
	analysis := analyzer.Analyze(context.Background(), event)
	require.Equal(t, "success", analysis.Status)

	followUp, err := analyzer.FollowUp(context.Background(), "vid-200", "Were any workers nearby?")
	require.NoError(t, err)
	assert.Equal(t, "No, the area was empty.", followUp.AgentOutput)

	// The follow-up request carried the original conversation.
	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.Greater(t, len(reqs[1].Messages), len(reqs[0].Messages))

	_, err = analyzer.FollowUp(context.Background(), "vid-missing", "anything?")
	assert.Error(t, err)
}

func TestAnalyzer_ModelFailureReturnsErrorEnvelope(t *testing.T) {
	m := model.NewScriptModel("scripted") // empty script: every call fails
	r := runner.New(m, func(o *runner.Options) {
		o.MaxRetries = 0
	})
	analyzer := NewAnalyzer(r, NewAgentGraph(NewMockServices()))

	analysis := analyzer.Analyze(context.Background(), &Event{VideoID: "vid-300"})
	assert.Equal(t, "error", analysis.Status)
	assert.Contains(t, analysis.Error, "Analysis failed")
	assert.NotEmpty(t, analysis.Trace)
}
