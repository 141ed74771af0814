package dto

import "github.com/spec-kit/queue-service/internal/domain"

// AttentionPointResponse is the external roster view.
type AttentionPointResponse struct {
	ID              int64  `json:"attention_point_id"`
	Availability    bool   `json:"availability"`
	CurrentTicketID *int64 `json:"current_ticket_id"`
}

// FromAttentionPoint maps a domain point to its response form.
func FromAttentionPoint(point *domain.AttentionPoint) AttentionPointResponse {
	return AttentionPointResponse{
		ID:              point.ID,
		Availability:    point.Availability,
		CurrentTicketID: point.CurrentTicketID,
	}
}
