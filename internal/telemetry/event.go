// Package telemetry emits attendance lifecycle events to the streaming
// pipeline (Kafka, drained to Loki by the worker). Emission is best-effort
// and must never block or fail a request path.
package telemetry

import "time"

// Event types emitted by the join and exit flows.
const (
	EventJoinGranted = "join.granted"
	EventJoinDenied  = "join.denied"
	EventExit        = "session.exit"
)

// Event is an attendance telemetry event. Serialized as JSON onto the Kafka
// topic; the worker parses the same shape when pushing to Loki.
type Event struct {
	SessionID string            `json:"sessionId"`
	UserID    string            `json:"userId,omitempty"`
	EventType string            `json:"eventType"`
	Source    string            `json:"source"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewEvent returns an Event of the given type, stamped with the current time.
func NewEvent(eventType, sessionID, userID string) *Event {
	return &Event{
		SessionID: sessionID,
		UserID:    userID,
		EventType: eventType,
		Source:    "webinar-backend",
		CreatedAt: time.Now().UTC(),
	}
}
