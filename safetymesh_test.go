package safetymesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetymesh/safetymesh/agent"
	"github.com/safetymesh/safetymesh/config"
	"github.com/safetymesh/safetymesh/core"
	"github.com/safetymesh/safetymesh/model"
	"github.com/safetymesh/safetymesh/safety"
)

func TestNew_MockProviderFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Model.Provider = "mock"

	mesh, err := New(func(o *Options) { o.Config = cfg })
	require.NoError(t, err)
	assert.Equal(t, "mock", mesh.Model().Info().Provider)

	a := agent.New("Greeter", "Greet people.")
	res, err := mesh.Run(context.Background(), a, "hello", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Output)
}

func TestNew_RejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Model.Provider = "unknown"

	_, err := New(func(o *Options) { o.Config = cfg })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model provider")
}

func TestNew_ModelOverrideWinsOverConfig(t *testing.T) {
	scripted := model.NewScriptModel("scripted", model.TextStep("scripted answer"))

	mesh, err := New(func(o *Options) { o.Model = scripted })
	require.NoError(t, err)

	a := agent.New("A", "instructions")
	res, err := mesh.Run(context.Background(), a, "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, "scripted answer", res.Output)
	assert.Equal(t, 1, scripted.Calls())
}

func TestSafetyAnalyzer_EndToEnd(t *testing.T) {
	scripted := model.NewScriptModel("scripted",
		model.ToolCallStep(core.ToolCall{Name: "transfer_to_fire_safety_agent"}),
		model.ToolCallStep(core.ToolCall{
			Name:      "detect_fire_hazard",
			Arguments: `{"description":"smoke visible near fuel storage"}`,
		}),
		model.TextStep("Area evacuated, fire department en route."),
	)

	mesh, err := New(func(o *Options) { o.Model = scripted })
	require.NoError(t, err)

	analyzer := mesh.NewSafetyAnalyzer()
	analysis := analyzer.Analyze(context.Background(), &safety.Event{
		VideoID:             "vid-500",
		LocationDescription: "Fuel storage area",
		Hazards: []safety.Hazard{{
			HazardType:  safety.HazardFire,
			Description: "Smoke visible near fuel drums",
			RiskLevel:   safety.RiskCritical,
		}},
	})

	assert.Equal(t, "success", analysis.Status)
	assert.Equal(t, "Area evacuated, fire department en route.", analysis.AgentOutput)
	require.Len(t, analysis.Trace, 2)
	assert.Equal(t, "Fire Safety Agent", analysis.Trace[0].HandoffTo)

	// The session store on the façade holds the finished run.
	sess, err := mesh.Sessions().Get("vid-500")
	require.NoError(t, err)
	assert.Equal(t, "Fire Safety Agent", sess.AgentName)
}
