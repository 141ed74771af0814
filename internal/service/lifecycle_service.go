package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/observability"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// LifecycleService governs ticket transitions: open -> in_progress ->
// closed, no skips, closed is terminal. All mutation of tickets and their
// bound attention points flows through here.
type LifecycleService struct {
	tickets  repository.TicketRepository
	identity *IdentityService
	assigner *AssignmentService

	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	now        func() time.Time
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	TicketRepo repository.TicketRepository
	Identity   *IdentityService
	Assigner   *AssignmentService
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Clock      func() time.Time
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &LifecycleService{
		tickets:    deps.TicketRepo,
		identity:   deps.Identity,
		assigner:   deps.Assigner,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		now:        clock,
	}
}

// CreateResult carries the created ticket and its resolved owner.
type CreateResult struct {
	Ticket    *domain.Ticket
	Requester *domain.Requester
}

// CreateTicket resolves the requester, applies the priority gate and
// opens a ticket. Assignment is attempted synchronously: with a free
// point the ticket starts directly in_progress, otherwise it stays open.
// The requester's eligibility flag is authoritative; a requester not
// flagged priority-eligible never receives a high-priority ticket.
func (s *LifecycleService) CreateTicket(ctx context.Context, nationalID string, requested domain.TicketPriority) (*CreateResult, error) {
	requester, err := s.identity.Resolve(ctx, nationalID)
	if err != nil {
		return nil, err
	}

	priority := domain.TicketPriorityNormal
	if requester.Priority && requested != domain.TicketPriorityNormal {
		priority = domain.TicketPriorityHigh
	}

	openedAt := s.now()
	ticket := &domain.Ticket{
		RequesterID: requester.NationalID,
		Priority:    priority,
		Status:      domain.TicketStatusOpen,
		OpenedAt:    openedAt,
	}

	assigned, err := s.createWithAssignment(ctx, ticket, openedAt)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.metrics.RecordTicketCreated(string(ticket.Priority))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			RequesterID:      requester.NationalID,
			RequesterEmail:   requester.Email,
			Priority:         ticket.Priority,
			Status:           ticket.Status,
			AttentionPointID: ticket.AttentionPointID,
		},
	})
	if assigned {
		s.metrics.RecordTransition("open_to_in_progress")
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			Payload:  events.TicketAssignedPayload{AttentionPointID: *ticket.AttentionPointID},
		})
	}
	return &CreateResult{Ticket: ticket, Requester: requester}, nil
}

// createWithAssignment tries to open the ticket bound to the lowest free
// point. Losing the point to a concurrent creation is retried once; a
// second loss, or an empty fleet, degrades to an unassigned open ticket
// (the NoneAvailable condition, which is not an error).
func (s *LifecycleService) createWithAssignment(ctx context.Context, ticket *domain.Ticket, openedAt time.Time) (bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		point, err := s.assigner.Assign(ctx)
		if errors.Is(err, repository.ErrNoneAvailable) {
			break
		}
		if err != nil {
			return false, err
		}

		ticket.Status = domain.TicketStatusInProgress
		ticket.StartedAt = &openedAt
		err = s.tickets.CreateAssigned(ctx, ticket, point.ID)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, repository.ErrPointUnavailable) {
			return false, err
		}
		ticket.Status = domain.TicketStatusOpen
		ticket.StartedAt = nil
	}

	ticket.Status = domain.TicketStatusOpen
	ticket.StartedAt = nil
	return false, s.tickets.Create(ctx, ticket)
}

// Advance moves a ticket one step forward: open -> in_progress when a
// point is free, in_progress -> closed otherwise.
func (s *LifecycleService) Advance(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	switch ticket.Status {
	case domain.TicketStatusOpen:
		point, err := s.assigner.Assign(ctx)
		if errors.Is(err, repository.ErrNoneAvailable) {
			return nil, apperrors.NewInvalidTransition("no attention point available", map[string]any{"ticket_id": ticketID})
		}
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		updated, err := s.tickets.Start(ctx, ticketID, point.ID, s.now())
		if err != nil {
			return nil, s.mapTransitionError(err, ticketID)
		}
		s.metrics.RecordTransition("open_to_in_progress")
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: updated.ID,
			Payload:  events.TicketAssignedPayload{AttentionPointID: point.ID},
		})
		s.publishStatusChange(ctx, updated.ID, domain.TicketStatusOpen, domain.TicketStatusInProgress)
		return updated, nil

	case domain.TicketStatusInProgress:
		return s.closeTicket(ctx, ticketID)

	default:
		return nil, apperrors.NewInvalidTransition("ticket already closed", map[string]any{"ticket_id": ticketID})
	}
}

// Close forces in_progress -> closed and releases the bound attention
// point atomically with the status write.
func (s *LifecycleService) Close(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	switch ticket.Status {
	case domain.TicketStatusInProgress:
		return s.closeTicket(ctx, ticketID)
	case domain.TicketStatusClosed:
		return nil, apperrors.NewInvalidTransition("ticket already closed", map[string]any{"ticket_id": ticketID})
	default:
		return nil, apperrors.NewInvalidTransition("ticket not in progress", map[string]any{"ticket_id": ticketID})
	}
}

func (s *LifecycleService) closeTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	updated, err := s.tickets.Close(ctx, ticketID, s.now())
	if err != nil {
		return nil, s.mapTransitionError(err, ticketID)
	}
	s.metrics.RecordTransition("in_progress_to_closed")
	s.publishStatusChange(ctx, updated.ID, domain.TicketStatusInProgress, domain.TicketStatusClosed)
	return updated, nil
}

func (s *LifecycleService) getTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *LifecycleService) mapTransitionError(err error, ticketID int64) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	case errors.Is(err, repository.ErrConflict):
		return apperrors.NewConflict("ticket was modified concurrently", map[string]any{"ticket_id": ticketID})
	case errors.Is(err, repository.ErrPointUnavailable):
		// Lost the point to another transition between selection and
		// binding; the caller should re-read and retry.
		return apperrors.NewConflict("attention point was taken concurrently", map[string]any{"ticket_id": ticketID})
	default:
		return apperrors.MapError(err)
	}
}

func (s *LifecycleService) publishStatusChange(ctx context.Context, ticketID int64, oldStatus, newStatus domain.TicketStatus) {
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
}

func (s *LifecycleService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
