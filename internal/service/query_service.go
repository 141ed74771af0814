package service

import (
	"context"
	"errors"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// QueryService is the read-side contract served to external pollers.
// Each call observes a single consistent view of the store; it performs
// no mutation.
type QueryService struct {
	tickets   repository.TicketRepository
	points    repository.AttentionPointRepository
	analytics *AnalyticsService
}

// NewQueryService constructs the facade.
func NewQueryService(tickets repository.TicketRepository, points repository.AttentionPointRepository, analytics *AnalyticsService) *QueryService {
	return &QueryService{tickets: tickets, points: points, analytics: analytics}
}

// GetTicket returns a point-in-time view of one ticket.
func (s *QueryService) GetTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns tickets matching the filter, ordered by ID.
func (s *QueryService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Roster returns the attention point fleet ordered by ID.
func (s *QueryService) Roster(ctx context.Context) ([]domain.AttentionPoint, error) {
	points, err := s.points.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return points, nil
}

// Statistics returns the windowed statistics snapshot.
func (s *QueryService) Statistics(ctx context.Context, days int) (*domain.StatisticsSnapshot, error) {
	return s.analytics.Compute(ctx, days)
}

// DashboardStatistics returns all-time operational totals.
func (s *QueryService) DashboardStatistics(ctx context.Context) (*domain.DashboardSnapshot, error) {
	return s.analytics.Dashboard(ctx)
}

// AttentionPointStatistics returns roster analytics.
func (s *QueryService) AttentionPointStatistics(ctx context.Context) (*domain.AttentionPointStatistics, error) {
	return s.analytics.PointStatistics(ctx)
}
