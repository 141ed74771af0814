package dto

import "github.com/spec-kit/queue-service/internal/domain"

// RegisterRequesterRequest is the out-of-band registration payload.
type RegisterRequesterRequest struct {
	NationalID string `json:"national_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Priority   bool   `json:"priority"`
}

// UpdatePriorityRequest toggles priority eligibility (admin only).
type UpdatePriorityRequest struct {
	Priority bool `json:"priority"`
}

// RequesterResponse is the external requester view.
type RequesterResponse struct {
	NationalID string `json:"national_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Priority   bool   `json:"priority"`
	Active     bool   `json:"active"`
}

// FromRequester maps a domain requester to its response form.
func FromRequester(requester *domain.Requester) RequesterResponse {
	return RequesterResponse{
		NationalID: requester.NationalID,
		FirstName:  requester.FirstName,
		LastName:   requester.LastName,
		Email:      requester.Email,
		Priority:   requester.Priority,
		Active:     requester.Active,
	}
}
