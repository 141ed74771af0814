package service

import (
	"context"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// FleetService manages the attention point roster. Availability flips
// are owned by the lifecycle transitions; this only adds points.
type FleetService struct {
	points repository.AttentionPointRepository
}

// NewFleetService constructs the service.
func NewFleetService(points repository.AttentionPointRepository) *FleetService {
	return &FleetService{points: points}
}

// CreatePoint registers a new free attention point.
func (s *FleetService) CreatePoint(ctx context.Context) (*domain.AttentionPoint, error) {
	point := &domain.AttentionPoint{}
	if err := s.points.Create(ctx, point); err != nil {
		return nil, apperrors.MapError(err)
	}
	return point, nil
}
