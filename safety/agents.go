package safety

import (
	"github.com/safetymesh/safetymesh/agent"
	"github.com/safetymesh/safetymesh/tool"
)

// AgentGraph is the wired specialist graph with the router as entry point.
type AgentGraph struct {
	Router     *agent.Agent
	EMS        *agent.Agent
	Fire       *agent.Agent
	Compliance *agent.Agent
}

// GraphOptions configures agent construction.
type GraphOptions struct {
	// Model is the provider model identifier applied to every agent in the
	// graph. Empty means the model adapter's default.
	Model string
}

// NewAgentGraph builds the safety specialist agents and the router that
// delegates to them. Every agent in the graph shares the given services.
func NewAgentGraph(svc *Services, optFns ...func(o *GraphOptions)) *AgentGraph {
	opts := GraphOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	alert := NewSiteAlertTool(svc)

	ems := agent.New(
		"EMS Safety Agent",
		"You are an emergency medical services safety specialist. You detect and respond to medical emergencies "+
			"on construction sites including chest pain, heat stroke, severe lacerations, allergic reactions, "+
			"and diabetic emergencies. Provide immediate action steps and determine if 911 should be called. "+
			"Be specific about symptoms observed and urgency level.",
		func(o *agent.Options) {
			o.Model = opts.Model
			o.Tools = []tool.Tool{NewEMSHazardTool(svc), alert}
			o.HandoffDescription = "Use for medical emergencies, worker health issues, injuries requiring immediate medical attention"
		})

	fire := agent.New(
		"Fire Safety Agent",
		"You are a fire safety specialist. You identify fire hazards including spontaneous combustion risks, "+
			"welding sparks near combustibles, electrical overloads, fuel storage violations, and battery thermal "+
			"runaway. Provide fire prevention steps and emergency response procedures. Be specific about ignition "+
			"sources and combustible materials present.",
		func(o *agent.Options) {
			o.Model = opts.Model
			o.Tools = []tool.Tool{NewFireHazardTool(svc), alert}
			o.HandoffDescription = "Use for fire hazards, welding operations, electrical issues, combustible material storage"
		})

	compliance := agent.New(
		"PPE Compliance Agent",
		"You are a PPE compliance specialist. You identify workers not wearing required personal protective "+
			"equipment including hard hats, high-visibility clothing, fall protection harnesses, hearing "+
			"protection, and respirators. Enforce PPE requirements and stop work if violations create imminent danger. "+
			"Be specific about what PPE is missing and why it's required.",
		func(o *agent.Options) {
			o.Model = opts.Model
			o.Tools = []tool.Tool{NewComplianceTool(svc), alert}
			o.HandoffDescription = "Use for PPE violations, safety equipment issues, compliance enforcement"
		})

	router := agent.New(
		"Safety Router Agent",
		"You are the main safety coordinator. Analyze construction site scenarios and determine which "+
			"type of hazard is present. Route to the appropriate specialist agent:\n"+
			"- EMS Agent: Medical emergencies, worker health issues, heat-related illness\n"+
			"- Fire Agent: Fire hazards, ignition sources, combustibles\n"+
			"- PPE Compliance Agent: Missing or improper safety equipment\n\n"+
			"If multiple hazards exist, prioritize: EMS = Fire > Compliance",
		func(o *agent.Options) {
			o.Model = opts.Model
			o.Handoffs = []*agent.Agent{ems, fire, compliance}
		})

	return &AgentGraph{Router: router, EMS: ems, Fire: fire, Compliance: compliance}
}

// Agent returns the graph agent with the given name, case-insensitively, or
// the router when no agent matches.
func (g *AgentGraph) Agent(name string) *agent.Agent {
	for _, a := range []*agent.Agent{g.Router, g.EMS, g.Fire, g.Compliance} {
		if a.Name() == name {
			return a
		}
	}
	if a, ok := g.Router.Handoff(name); ok {
		return a
	}
	return g.Router
}
