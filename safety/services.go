package safety

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DispatchCall is the receipt of an emergency services dispatch.
type DispatchCall struct {
	CallID           string    `json:"call_id"`
	Status           string    `json:"status"`
	EstimatedArrival string    `json:"estimated_arrival"`
	UnitsDispatched  []string  `json:"units_dispatched"`
	DispatcherNotes  string    `json:"dispatcher_notes"`
	Timestamp        time.Time `json:"timestamp"`
}

// IncidentRecord is the receipt of logging an incident with the safety
// management system.
type IncidentRecord struct {
	IncidentID        string    `json:"incident_id"`
	Status            string    `json:"status"`
	Severity          string    `json:"severity"`
	NotificationsSent []string  `json:"notifications_sent"`
	ActionsTriggered  []string  `json:"actions_triggered"`
	Timestamp         time.Time `json:"timestamp"`
}

// AlertBatch is the receipt of a site-wide SMS notification.
type AlertBatch struct {
	BatchID    string    `json:"batch_id"`
	TotalSent  int       `json:"total_sent"`
	Urgency    string    `json:"urgency"`
	Message    string    `json:"message"`
	Recipients []string  `json:"recipients"`
	Failed     int       `json:"failed"`
	Timestamp  time.Time `json:"timestamp"`
}

// Dispatcher reaches emergency services.
type Dispatcher interface {
	Call911(location, emergencyType, description string) DispatchCall
}

// IncidentLogger reports incidents to the safety management system.
type IncidentLogger interface {
	LogIncident(incidentType, severity string, data map[string]any) IncidentRecord
}

// Notifier broadcasts alerts to site personnel.
type Notifier interface {
	SendAlert(message, urgency, incidentType string) AlertBatch
}

// Services bundles the external integrations the safety tools depend on.
type Services struct {
	Dispatcher Dispatcher
	Incidents  IncidentLogger
	Notifier   Notifier
}

// NewMockServices wires all integrations to in-process mocks, the default
// until real emergency and notification providers are connected.
func NewMockServices() *Services {
	return &Services{
		Dispatcher: &MockDispatcher{},
		Incidents:  &MockIncidentLogger{},
		Notifier:   &MockNotifier{},
	}
}

func shortID(prefix string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102-150405"), uuid.NewString()[:8])
}

// MockDispatcher simulates a 911 dispatch center.
type MockDispatcher struct{}

// Call911 implements Dispatcher.
func (MockDispatcher) Call911(location, emergencyType, description string) DispatchCall {
	units := []string{"Ambulance 42"}
	if strings.Contains(strings.ToLower(emergencyType), "fire") {
		units = []string{"Ambulance 42", "Fire Engine 7"}
	}
	return DispatchCall{
		CallID:           shortID("911"),
		Status:           "dispatched",
		EstimatedArrival: "8-12 minutes",
		UnitsDispatched:  units,
		DispatcherNotes:  fmt.Sprintf("Emergency at %s. %s", location, description),
		Timestamp:        time.Now(),
	}
}

// MockIncidentLogger simulates the external safety management API.
type MockIncidentLogger struct{}

// LogIncident implements IncidentLogger.
func (MockIncidentLogger) LogIncident(incidentType, severity string, data map[string]any) IncidentRecord {
	notified := []string{"Safety Manager", "Site Supervisor"}
	action := "Safety alert issued"
	if severity == string(RiskCritical) {
		notified = append(notified, "OSHA Compliance Officer")
		action = "Work stoppage order issued"
	}
	return IncidentRecord{
		IncidentID:        shortID("INC"),
		Status:            "logged",
		Severity:          severity,
		NotificationsSent: notified,
		ActionsTriggered:  []string{action, "Incident report generated", "Photo documentation requested"},
		Timestamp:         time.Now(),
	}
}

type person struct {
	name     string
	role     string
	priority int
}

// sitePersonnel is the mock recipient directory. Priority 1 is management,
// 2 supervisors and leads, 3 everyone else.
var sitePersonnel = []person{
	{"John Smith", "Safety Manager", 1},
	{"Maria Garcia", "Site Supervisor", 1},
	{"Lisa Anderson", "First Aid Responder", 1},
	{"David Chen", "Foreman - Zone A", 2},
	{"Sarah Johnson", "Foreman - Zone B", 2},
	{"Michael Brown", "Security Officer", 2},
	{"James Davis", "Crane Operator", 2},
	{"Patricia Wilson", "Electrical Lead", 2},
	{"Robert Williams", "Equipment Operator", 3},
	{"Jennifer Martinez", "Quality Inspector", 3},
}

// MockNotifier simulates the SMS gateway.
type MockNotifier struct{}

// SendAlert implements Notifier. Urgency selects the recipient tier:
// CRITICAL reaches everyone, HIGH supervisors and up, anything else
// management only.
func (MockNotifier) SendAlert(message, urgency, incidentType string) AlertBatch {
	maxPriority := 1
	switch urgency {
	case string(RiskCritical):
		maxPriority = 3
	case string(RiskHigh):
		maxPriority = 2
	}

	var recipients []string
	for _, p := range sitePersonnel {
		if p.priority <= maxPriority {
			recipients = append(recipients, fmt.Sprintf("%s (%s)", p.name, p.role))
		}
	}

	prefix := map[string]string{
		string(RiskCritical): "EMERGENCY",
		string(RiskHigh):     "URGENT",
		"MODERATE":           "ALERT",
		string(RiskLow):      "NOTICE",
	}[urgency]
	if prefix == "" {
		prefix = "NOTICE"
	}

	return AlertBatch{
		BatchID:    shortID("SMS"),
		TotalSent:  len(recipients),
		Urgency:    urgency,
		Message:    fmt.Sprintf("%s %s: %s", prefix, incidentType, message),
		Recipients: recipients,
		Failed:     0,
		Timestamp:  time.Now(),
	}
}
