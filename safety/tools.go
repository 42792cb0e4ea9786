package safety

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/safetymesh/safetymesh/tool"
)

// hazardArgs is the argument schema shared by the detection tools.
type hazardArgs struct {
	Description string `json:"description" description:"Scene description to analyze for hazards"`
}

// alertArgs is the argument schema of send_site_alert.
type alertArgs struct {
	AlertMessage string `json:"alert_message" description:"Message broadcast to site personnel"`
	UrgencyLevel string `json:"urgency_level,omitempty" description:"CRITICAL, HIGH, MODERATE or LOW (default HIGH)"`
}

// scoreKeywords sums the weights of every keyword found in the description
// and returns the matches in descending weight order so the most serious
// condition leads the report.
func scoreKeywords(description string, weights map[string]int) (int, []string) {
	lower := strings.ToLower(description)
	score := 0
	var matched []string
	for keyword, weight := range weights {
		if strings.Contains(lower, keyword) {
			score += weight
			matched = append(matched, keyword)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if weights[matched[i]] != weights[matched[j]] {
			return weights[matched[i]] > weights[matched[j]]
		}
		return matched[i] < matched[j]
	})
	return score, matched
}

// severityForScore maps a cumulative keyword score to a severity label.
func severityForScore(score, critical, high int) string {
	switch {
	case score >= critical:
		return string(RiskCritical)
	case score >= high:
		return string(RiskHigh)
	default:
		return "MODERATE"
	}
}

var emsKeywords = map[string]int{
	"chest pain":         10,
	"heart attack":       10,
	"unconscious":        10,
	"not breathing":      10,
	"arterial bleed":     10,
	"severe bleeding":    9,
	"seizure":            9,
	"allergic reaction":  8,
	"heat stroke":        8,
	"diabetic emergency": 7,
	"laceration":         7,
	"sweating heavily":   6,
	"confusion":          6,
	"pale":               5,
}

// NewEMSHazardTool builds detect_ems_hazard: keyword-weighted medical
// emergency detection with automatic 911 dispatch and incident logging for
// CRITICAL and HIGH severities.
func NewEMSHazardTool(svc *Services) *tool.FunctionTool {
	return tool.MustFromStruct(
		"detect_ems_hazard",
		"Detect EMS emergencies and dispatch emergency services if needed",
		hazardArgs{},
		func(_ context.Context, args map[string]any) (any, error) {
			description, _ := args["description"].(string)
			score, conditions := scoreKeywords(description, emsKeywords)
			if score == 0 {
				return "No immediate medical emergency detected. Continue routine health monitoring.", nil
			}

			severity := severityForScore(score, 15, 8)
			var b strings.Builder
			fmt.Fprintf(&b, "MEDICAL EMERGENCY DETECTED - Severity: %s\n", severity)
			fmt.Fprintf(&b, "Conditions identified: %s\n", strings.Join(conditions, ", "))

			if severity != "MODERATE" {
				call := svc.Dispatcher.Call911(
					"Construction Site - GPS coordinates logged",
					"Medical Emergency",
					fmt.Sprintf("Worker showing signs of: %s", strings.Join(conditions, ", ")),
				)
				fmt.Fprintf(&b, "\n911 DISPATCHED - Call ID: %s\n", call.CallID)
				fmt.Fprintf(&b, "ETA: %s\n", call.EstimatedArrival)
				fmt.Fprintf(&b, "Units: %s\n", strings.Join(call.UnitsDispatched, ", "))

				record := svc.Incidents.LogIncident("Medical Emergency", severity,
					map[string]any{"conditions": conditions, "score": score})
				fmt.Fprintf(&b, "\nIncident logged: %s\n", record.IncidentID)
			}

			b.WriteString("\nIMMEDIATE ACTIONS:\n")
			b.WriteString("1. Do not move the worker unless immediate danger present\n")
			b.WriteString("2. Assign first aid responder to stay with worker\n")
			b.WriteString("3. Clear area and prepare for EMS arrival\n")
			b.WriteString("4. Have worker's medical info/medications ready")
			return b.String(), nil
		})
}

var fireKeywords = map[string]int{
	"fire":                10,
	"flames":              10,
	"gas leak":            10,
	"explosion":           10,
	"smoke visible":       9,
	"battery thermal":     9,
	"fuel":                8,
	"electrical overload": 8,
	"ignition":            8,
	"smoldering":          8,
	"combustible":         7,
	"oily rags":           7,
	"sparks":              6,
	"welding":             5,
}

// NewFireHazardTool builds detect_fire_hazard: keyword-weighted fire risk
// detection with fire department dispatch for CRITICAL and HIGH risk levels.
func NewFireHazardTool(svc *Services) *tool.FunctionTool {
	return tool.MustFromStruct(
		"detect_fire_hazard",
		"Detect fire hazards and alert fire services if needed",
		hazardArgs{},
		func(_ context.Context, args map[string]any) (any, error) {
			description, _ := args["description"].(string)
			score, hazards := scoreKeywords(description, fireKeywords)
			if score == 0 {
				return "No active fire hazards detected. Maintain fire prevention protocols.", nil
			}

			riskLevel := severityForScore(score, 15, 8)
			var b strings.Builder
			fmt.Fprintf(&b, "FIRE HAZARD DETECTED - Risk Level: %s\n", riskLevel)
			fmt.Fprintf(&b, "Hazards identified: %s\n", strings.Join(hazards, ", "))

			if riskLevel != "MODERATE" {
				call := svc.Dispatcher.Call911(
					"Construction Site - Building/zone coordinates logged",
					"Fire Emergency",
					fmt.Sprintf("Fire hazard: %s", strings.Join(hazards, ", ")),
				)
				fmt.Fprintf(&b, "\nFIRE DEPARTMENT DISPATCHED - Call ID: %s\n", call.CallID)
				fmt.Fprintf(&b, "ETA: %s\n", call.EstimatedArrival)

				record := svc.Incidents.LogIncident("Fire Hazard", riskLevel,
					map[string]any{"hazards": hazards, "risk_score": score})
				fmt.Fprintf(&b, "\nFire incident logged: %s\n", record.IncidentID)
			}

			b.WriteString("\nIMMEDIATE ACTIONS:\n")
			b.WriteString("1. EVACUATE immediate area\n")
			b.WriteString("2. Use fire extinguisher only if safe and trained\n")
			b.WriteString("3. Activate fire alarm system\n")
			b.WriteString("4. Account for all personnel at muster point\n")
			b.WriteString("5. Shut off utilities if safe to do so")
			return b.String(), nil
		})
}

var complianceKeywords = map[string]int{
	"no harness":            10,
	"no fall protection":    10,
	"no hard hat":           9,
	"missing hard hat":      9,
	"without hard hat":      9,
	"no high-vis":           8,
	"no vest":               8,
	"no respirator":         8,
	"no safety glasses":     7,
	"no hearing protection": 6,
	"improper ppe":          6,
}

// NewComplianceTool builds detect_compliance_violation: PPE violation
// detection. Violations are always logged; CRITICAL severity triggers a work
// stoppage.
func NewComplianceTool(svc *Services) *tool.FunctionTool {
	return tool.MustFromStruct(
		"detect_compliance_violation",
		"Detect PPE violations and enforce compliance",
		hazardArgs{},
		func(_ context.Context, args map[string]any) (any, error) {
			description, _ := args["description"].(string)
			score, violations := scoreKeywords(description, complianceKeywords)
			if score == 0 {
				return "PPE compliance satisfactory. Continue monitoring.", nil
			}

			severity := severityForScore(score, 9, 6)
			var b strings.Builder
			fmt.Fprintf(&b, "PPE VIOLATION DETECTED - Severity: %s\n", severity)
			fmt.Fprintf(&b, "Violations: %s\n", strings.Join(violations, ", "))

			record := svc.Incidents.LogIncident("PPE Compliance Violation", severity,
				map[string]any{"violations": violations, "violation_score": score})
			fmt.Fprintf(&b, "\nViolation logged: %s\n", record.IncidentID)

			if severity == string(RiskCritical) {
				b.WriteString("\nWORK STOPPAGE ISSUED\n")
				b.WriteString("Site supervisor and safety manager notified\n")
			}

			b.WriteString("\nCOMPLIANCE ACTIONS:\n")
			b.WriteString("1. Stop worker - no entry to hazard area\n")
			b.WriteString("2. Provide required PPE immediately\n")
			b.WriteString("3. Document violation in worker file\n")
			b.WriteString("4. Retrain on PPE requirements\n")
			b.WriteString("5. Verify PPE fit and proper use before resuming work")
			return b.String(), nil
		})
}

// NewSiteAlertTool builds send_site_alert: a site-wide SMS broadcast through
// the notification gateway.
func NewSiteAlertTool(svc *Services) *tool.FunctionTool {
	return tool.MustFromStruct(
		"send_site_alert",
		"Send SMS text notification to all site personnel about safety hazard",
		alertArgs{},
		func(_ context.Context, args map[string]any) (any, error) {
			message, _ := args["alert_message"].(string)
			urgency, _ := args["urgency_level"].(string)
			if urgency == "" {
				urgency = string(RiskHigh)
			}

			batch := svc.Notifier.SendAlert(message, urgency, "SITE SAFETY ALERT")
			return fmt.Sprintf(
				"SITE-WIDE ALERT SENT\nBatch ID: %s\nTotal Recipients: %d personnel\nDelivery Status: ALL DELIVERED\n\nMessage sent: %q",
				batch.BatchID, batch.TotalSent, message), nil
		})
}
