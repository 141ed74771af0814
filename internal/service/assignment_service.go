package service

import (
	"context"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
)

// AssignmentService decides which attention point a ticket is routed to.
// Selection is deterministic: the free point with the lowest ID wins, so
// per-point load figures stay comparable between polls. Priority affects
// eligibility at creation only; there is no separate priority lane.
type AssignmentService struct {
	points repository.AttentionPointRepository
}

// NewAssignmentService creates the service.
func NewAssignmentService(points repository.AttentionPointRepository) *AssignmentService {
	return &AssignmentService{points: points}
}

// Assign selects an attention point for a ticket. Returns
// repository.ErrNoneAvailable when every point is occupied; the binding
// itself happens inside the ticket store transaction, not here.
func (s *AssignmentService) Assign(ctx context.Context) (*domain.AttentionPoint, error) {
	return s.points.NextAvailable(ctx)
}
