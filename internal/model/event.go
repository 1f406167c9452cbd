package model

import "time"

type EventType string

const (
	EventPatientRegistered   EventType = "patient.registered"
	EventStaffAdded          EventType = "staff.added"
	EventVisitTokenGenerated EventType = "visit.token_generated"
	EventVisitStatusChanged  EventType = "visit.status_changed"
	EventVisitUpdated        EventType = "visit.updated"
	EventTestReportUploaded  EventType = "test.report_uploaded"
	EventStoreReset          EventType = "store.reset"
)

// Event is published after a store mutation has been persisted.
type Event struct {
	Type       EventType              `json:"type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}
