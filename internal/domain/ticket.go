package domain

import "time"

// TicketStatus enumerates lifecycle states for queue tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates priority classes assigned at creation.
type TicketPriority string

const (
	TicketPriorityNormal TicketPriority = "normal"
	TicketPriorityHigh   TicketPriority = "high"
)

// Ticket is the aggregate for a single walk-in service request.
// IDs are monotonic and externally visible. StartedAt is set when an
// attention point begins serving the ticket; ClosedAt marks the terminal
// state and is never cleared.
type Ticket struct {
	ID               int64
	RequesterID      string
	Priority         TicketPriority
	Status           TicketStatus
	AttentionPointID *int64
	OpenedAt         time.Time
	StartedAt        *time.Time
	ClosedAt         *time.Time
}

// IsTerminal reports whether the ticket can accept further transitions.
func (t *Ticket) IsTerminal() bool {
	return t.Status == TicketStatusClosed
}
