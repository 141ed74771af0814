package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/repository"
)

// memStore is an in-memory stand-in for the postgres repositories. It
// mirrors the conditional-update semantics: transitions check the
// expected status under one lock, so a lost race surfaces as ErrConflict
// and a stolen point as ErrPointUnavailable.
type memStore struct {
	mu sync.Mutex

	tickets      map[int64]*domain.Ticket
	nextTicketID int64

	points      []*domain.AttentionPoint
	nextPointID int64

	requesters map[string]*domain.Requester
}

func newMemStore() *memStore {
	return &memStore{
		tickets:    make(map[int64]*domain.Ticket),
		requesters: make(map[string]*domain.Requester),
	}
}

func (s *memStore) ticketRepo() repository.TicketRepository {
	return ticketRepoAdapter{s}
}

func (s *memStore) pointRepo() repository.AttentionPointRepository {
	return pointRepoAdapter{s}
}

func (s *memStore) requesterRepo() repository.RequesterRepository {
	return requesterRepoAdapter{s}
}

func (s *memStore) snapshotRepo() repository.SnapshotRepository {
	return snapshotRepoAdapter{s}
}

func (s *memStore) addRequester(nationalID string, priority, active bool) *domain.Requester {
	s.mu.Lock()
	defer s.mu.Unlock()
	requester := &domain.Requester{
		NationalID: nationalID,
		FirstName:  "Test",
		LastName:   "Requester",
		Email:      nationalID + "@example.com",
		Priority:   priority,
		Active:     active,
		CreatedAt:  time.Now(),
	}
	s.requesters[nationalID] = requester
	return requester
}

func (s *memStore) addPoint() *domain.AttentionPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPointID++
	point := &domain.AttentionPoint{ID: s.nextPointID, Availability: true}
	s.points = append(s.points, point)
	copied := *point
	return &copied
}

func (s *memStore) ticketByID(id int64) *domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket, ok := s.tickets[id]; ok {
		copied := *ticket
		return &copied
	}
	return nil
}

func (s *memStore) pointByID(id int64) *domain.AttentionPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, point := range s.points {
		if point.ID == id {
			copied := *point
			return &copied
		}
	}
	return nil
}

func (s *memStore) insertTicketLocked(ticket *domain.Ticket) {
	s.nextTicketID++
	ticket.ID = s.nextTicketID
	copied := *ticket
	s.tickets[ticket.ID] = &copied
}

func (s *memStore) occupyLocked(pointID, ticketID int64) bool {
	for _, point := range s.points {
		if point.ID == pointID && point.Availability {
			point.Availability = false
			point.CurrentTicketID = &ticketID
			return true
		}
	}
	return false
}

func (s *memStore) releaseLocked(pointID int64) {
	for _, point := range s.points {
		if point.ID == pointID {
			point.Availability = true
			point.CurrentTicketID = nil
		}
	}
}

// ticketRepoAdapter implements repository.TicketRepository.
type ticketRepoAdapter struct {
	store *memStore
}

func (a ticketRepoAdapter) Create(ctx context.Context, ticket *domain.Ticket) error {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertTicketLocked(ticket)
	return nil
}

func (a ticketRepoAdapter) CreateAssigned(ctx context.Context, ticket *domain.Ticket, pointID int64) error {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()
	candidateID := s.nextTicketID + 1
	if !s.occupyLocked(pointID, candidateID) {
		return repository.ErrPointUnavailable
	}
	ticket.AttentionPointID = &pointID
	s.insertTicketLocked(ticket)
	return nil
}

func (a ticketRepoAdapter) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	if ticket := a.store.ticketByID(id); ticket != nil {
		return ticket, nil
	}
	return nil, repository.ErrNotFound
}

func (a ticketRepoAdapter) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range s.tickets {
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if filter.OpenedFrom != nil && ticket.OpenedAt.Before(*filter.OpenedFrom) {
			continue
		}
		if filter.OpenedTo != nil && !ticket.OpenedAt.Before(*filter.OpenedTo) {
			continue
		}
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (a ticketRepoAdapter) Start(ctx context.Context, ticketID, pointID int64, startedAt time.Time) (*domain.Ticket, error) {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[ticketID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ticket.Status != domain.TicketStatusOpen {
		return nil, repository.ErrConflict
	}
	if !s.occupyLocked(pointID, ticketID) {
		return nil, repository.ErrPointUnavailable
	}
	ticket.Status = domain.TicketStatusInProgress
	ticket.AttentionPointID = &pointID
	ticket.StartedAt = &startedAt
	copied := *ticket
	return &copied, nil
}

func (a ticketRepoAdapter) Close(ctx context.Context, ticketID int64, closedAt time.Time) (*domain.Ticket, error) {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[ticketID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ticket.Status != domain.TicketStatusInProgress {
		return nil, repository.ErrConflict
	}
	if ticket.AttentionPointID != nil {
		s.releaseLocked(*ticket.AttentionPointID)
	}
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &closedAt
	copied := *ticket
	return &copied, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// pointRepoAdapter implements repository.AttentionPointRepository.
type pointRepoAdapter struct {
	store *memStore
}

func (a pointRepoAdapter) Create(ctx context.Context, point *domain.AttentionPoint) error {
	created := a.store.addPoint()
	point.ID = created.ID
	point.Availability = true
	return nil
}

func (a pointRepoAdapter) GetByID(ctx context.Context, id int64) (*domain.AttentionPoint, error) {
	if point := a.store.pointByID(id); point != nil {
		return point, nil
	}
	return nil, repository.ErrNotFound
}

func (a pointRepoAdapter) List(ctx context.Context) ([]domain.AttentionPoint, error) {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.AttentionPoint, 0, len(s.points))
	for _, point := range s.points {
		result = append(result, *point)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (a pointRepoAdapter) NextAvailable(ctx context.Context) (*domain.AttentionPoint, error) {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *domain.AttentionPoint
	for _, point := range s.points {
		if !point.Availability {
			continue
		}
		if best == nil || point.ID < best.ID {
			best = point
		}
	}
	if best == nil {
		return nil, repository.ErrNoneAvailable
	}
	copied := *best
	return &copied, nil
}

// requesterRepoAdapter implements repository.RequesterRepository.
type requesterRepoAdapter struct {
	store *memStore
}

func (a requesterRepoAdapter) Create(ctx context.Context, requester *domain.Requester) error {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requesters[requester.NationalID]; exists {
		return repository.ErrDuplicate
	}
	requester.Active = true
	requester.CreatedAt = time.Now()
	copied := *requester
	s.requesters[requester.NationalID] = &copied
	return nil
}

func (a requesterRepoAdapter) GetByNationalID(ctx context.Context, nationalID string) (*domain.Requester, error) {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()
	requester, ok := s.requesters[nationalID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *requester
	return &copied, nil
}

func (a requesterRepoAdapter) SetPriority(ctx context.Context, nationalID string, priority bool) error {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()
	requester, ok := s.requesters[nationalID]
	if !ok {
		return repository.ErrNotFound
	}
	requester.Priority = priority
	return nil
}

func (a requesterRepoAdapter) Deactivate(ctx context.Context, nationalID string) error {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()
	requester, ok := s.requesters[nationalID]
	if !ok {
		return repository.ErrNotFound
	}
	requester.Active = false
	return nil
}

// snapshotRepoAdapter implements repository.SnapshotRepository.
type snapshotRepoAdapter struct {
	store *memStore
}

func (a snapshotRepoAdapter) Read(ctx context.Context) (*domain.StoreSnapshot, error) {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := &domain.StoreSnapshot{TakenAt: time.Now()}
	for _, ticket := range s.tickets {
		snapshot.Tickets = append(snapshot.Tickets, *ticket)
	}
	sort.Slice(snapshot.Tickets, func(i, j int) bool { return snapshot.Tickets[i].ID < snapshot.Tickets[j].ID })
	for _, point := range s.points {
		snapshot.Points = append(snapshot.Points, *point)
	}
	sort.Slice(snapshot.Points, func(i, j int) bool { return snapshot.Points[i].ID < snapshot.Points[j].ID })
	for _, requester := range s.requesters {
		snapshot.Requesters = append(snapshot.Requesters, *requester)
	}
	return snapshot, nil
}

// staticSnapshotRepo serves a fixed snapshot, for analytics tests that
// build the population by hand.
type staticSnapshotRepo struct {
	snapshot *domain.StoreSnapshot
	err      error
}

func (r staticSnapshotRepo) Read(ctx context.Context) (*domain.StoreSnapshot, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.snapshot, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}
