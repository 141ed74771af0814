package dto

import (
	"time"

	"github.com/spec-kit/queue-service/internal/domain"
)

// CreateTicketRequest is the intake payload. RequestedPriority is
// advisory; the requester's eligibility flag decides.
type CreateTicketRequest struct {
	NationalID        string                `json:"national_id"`
	RequestedPriority domain.TicketPriority `json:"requested_priority"`
}

// TicketResponse is the external ticket view.
type TicketResponse struct {
	ID               int64                 `json:"id"`
	RequesterID      string                `json:"requester_id"`
	Priority         domain.TicketPriority `json:"priority"`
	Status           domain.TicketStatus   `json:"status"`
	AttentionPointID *int64                `json:"attention_point_id"`
	OpenedAt         time.Time             `json:"opened_at"`
	StartedAt        *time.Time            `json:"started_at"`
	ClosedAt         *time.Time            `json:"closed_at"`
}

// CreateTicketResponse wraps the created ticket and a requester greeting.
type CreateTicketResponse struct {
	Ticket    TicketResponse    `json:"ticket"`
	Requester RequesterResponse `json:"requester"`
}

// FromTicket maps a domain ticket to its response form.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:               ticket.ID,
		RequesterID:      ticket.RequesterID,
		Priority:         ticket.Priority,
		Status:           ticket.Status,
		AttentionPointID: ticket.AttentionPointID,
		OpenedAt:         ticket.OpenedAt,
		StartedAt:        ticket.StartedAt,
		ClosedAt:         ticket.ClosedAt,
	}
}
