// Package safety is the construction-site safety domain built on the agent
// runtime: the hazard event model produced by video analysis, the detection
// and notification tools, the specialist agent graph and the Analyzer that
// ties them together.
package safety

import (
	"encoding/json"
	"fmt"
)

// RiskLevel grades a hazard.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
)

// HazardType classifies a detected hazard. Values are the human-readable
// labels emitted by the video analysis model.
type HazardType string

const (
	// Fall and height-related hazards.
	HazardFall              HazardType = "Fall Hazard (Height)"
	HazardTripSlip          HazardType = "Trip/Slip Hazard (Ground)"
	HazardUnsecuredPlatform HazardType = "Unsecured Working Platform"

	// Equipment and collision hazards.
	HazardStruckBy       HazardType = "Struck-by (Moving Equipment/Vehicle)"
	HazardCrushProximity HazardType = "Crush/Proximity Hazard (Blind Spot)"
	HazardDroppedObject  HazardType = "Dropped Object Hazard"
	HazardCollisionRisk  HazardType = "Equipment-Equipment Collision Risk"

	// Personal protective equipment.
	HazardPPEViolation HazardType = "PPE Violation (Missing/Incorrect)"

	// Energy and utility hazards.
	HazardElectrical      HazardType = "Electrical Hazard (Exposed Wire/Damage)"
	HazardLOTOViolation   HazardType = "Lockout/Tagout Violation"
	HazardImproperLifting HazardType = "Improper Lifting/Rigging"
	HazardPressurizedGas  HazardType = "Pressurized Gas/Cylinder Hazard"

	// Environmental and exposure hazards.
	HazardFire           HazardType = "Fire/Explosion Hazard"
	HazardConfinedSpace  HazardType = "Confined Space Entry Violation"
	HazardChemical       HazardType = "Chemical Exposure/Spill"
	HazardExcessiveNoise HazardType = "Excessive Noise Exposure"
	HazardHeatColdStress HazardType = "Heat/Cold Stress"

	// Material and work practice hazards.
	HazardImproperStorage  HazardType = "Improper Material Storage/Stacking"
	HazardImproperToolUse  HazardType = "Improper Tool Use"
	HazardTrenchCaveIn     HazardType = "Trench/Excavation Cave-in Risk"
	HazardUnguardedOpening HazardType = "Unguarded Floor/Wall Opening"

	// Catch-all.
	HazardUnsafeBehavior HazardType = "Unsafe Worker Behavior/Distraction"
	HazardOther          HazardType = "Other Safety Concern"
)

// Hazard is a single detected hazard within an event.
type Hazard struct {
	HazardType         HazardType `json:"hazard_type"`
	Description        string     `json:"description"`
	RiskLevel          RiskLevel  `json:"risk_level"`
	RecommendedActions []string   `json:"recommended_actions"`
}

// Event is the structured output of analyzing one video: where the scene is
// and which hazards were observed.
type Event struct {
	VideoID             string   `json:"video_id"`
	LocationDescription string   `json:"location_description"`
	Hazards             []Hazard `json:"hazards"`
}

// ParseEvent decodes an event from its JSON form.
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}
	if ev.VideoID == "" {
		return nil, fmt.Errorf("parse event: missing video_id")
	}
	return &ev, nil
}

// JSON renders the event for embedding into an agent prompt.
func (e *Event) JSON() string {
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"video_id\": %q}", e.VideoID)
	}
	return string(b)
}

// MaxRiskLevel returns the highest risk level across the event's hazards, or
// RiskLow for an event without hazards.
func (e *Event) MaxRiskLevel() RiskLevel {
	rank := map[RiskLevel]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2, RiskCritical: 3}
	max := RiskLow
	for _, h := range e.Hazards {
		if rank[h.RiskLevel] > rank[max] {
			max = h.RiskLevel
		}
	}
	return max
}
