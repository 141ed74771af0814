package events

import (
	"time"

	"github.com/spec-kit/queue-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// AllEventTypes lists every event the service emits.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketAssigned,
	EventTicketStatusChanged,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	RequesterID      string                `json:"requester_id"`
	RequesterEmail   string                `json:"requester_email"`
	Priority         domain.TicketPriority `json:"priority"`
	Status           domain.TicketStatus   `json:"status"`
	AttentionPointID *int64                `json:"attention_point_id,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AttentionPointID int64 `json:"attention_point_id"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}
