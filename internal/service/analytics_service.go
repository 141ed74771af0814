package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/spec-kit/queue-service/internal/cache"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/observability"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// AnalyticsService derives aggregate statistics from the ticket
// population. Every computation is a pure read over one consistent store
// snapshot; repeated queries without intervening mutation produce
// identical output. Storage failure is the only error condition.
type AnalyticsService struct {
	snapshots repository.SnapshotRepository
	cache     *cache.StatisticsCache
	metrics   *observability.Metrics
	topN      int
	now       func() time.Time
}

// AnalyticsDependencies bundles collaborators for the aggregator.
type AnalyticsDependencies struct {
	SnapshotRepo  repository.SnapshotRepository
	Cache         *cache.StatisticsCache
	Metrics       *observability.Metrics
	TopRequesters int
	Clock         func() time.Time
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	topN := deps.TopRequesters
	if topN <= 0 {
		topN = 10
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AnalyticsService{
		snapshots: deps.SnapshotRepo,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		topN:      topN,
		now:       clock,
	}
}

// Compute derives windowed ticket statistics for the half-open interval
// [now - days, now). Window membership keys off opened_at.
func (s *AnalyticsService) Compute(ctx context.Context, days int) (*domain.StatisticsSnapshot, error) {
	if days <= 0 {
		return nil, apperrors.NewValidationError("days must be a positive integer", nil)
	}

	if cached, ok := s.cache.Get(ctx, days); ok {
		s.metrics.RecordStatsCacheLookup(true)
		return cached, nil
	}
	s.metrics.RecordStatsCacheLookup(false)

	store, err := s.readSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	end := s.now()
	start := end.AddDate(0, 0, -days)
	snapshot := &domain.StatisticsSnapshot{
		WindowDays:  days,
		WindowStart: start,
		WindowEnd:   end,
	}

	var windowed []domain.Ticket
	for _, ticket := range store.Tickets {
		if inWindow(ticket.OpenedAt, start, end) {
			windowed = append(windowed, ticket)
		}
	}
	snapshot.TotalTicketsInPeriod = len(windowed)
	snapshot.TicketsByStatus = countByStatus(windowed)
	snapshot.TicketsByPriority = countByPriority(windowed)
	snapshot.TicketsOverTime = bucketByDay(windowed)
	snapshot.TicketsByHour = bucketByHour(store.Tickets, end)
	snapshot.AvgResolutionHours = avgResolutionHours(windowed)
	snapshot.MostActiveRequesters = s.topRequesters(windowed, store.Requesters)
	snapshot.TicketsPerPoint = pointLoads(store, start, end)
	snapshot.Utilization = utilization(store.Points)
	s.metrics.SetOccupiedPoints(snapshot.Utilization.OccupiedPoints)

	s.cache.Set(ctx, days, snapshot)
	return snapshot, nil
}

// Dashboard derives all-time operational totals.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*domain.DashboardSnapshot, error) {
	store, err := s.readSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sevenDaysAgo := now.AddDate(0, 0, -7)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	dashboard := &domain.DashboardSnapshot{
		TotalRequesters:     len(store.Requesters),
		TotalTickets:        len(store.Tickets),
		TicketsByStatus:     countByStatus(store.Tickets),
		TicketsByPriority:   countByPriority(store.Tickets),
		TotalAttentionPoint: len(store.Points),
		Utilization:         utilization(store.Points),
	}
	for _, requester := range store.Requesters {
		if requester.Priority {
			dashboard.PriorityRequesters++
		}
	}
	for _, ticket := range store.Tickets {
		if inWindow(ticket.OpenedAt, sevenDaysAgo, now) {
			dashboard.RecentTickets++
		}
		if inWindow(ticket.OpenedAt, dayStart, now) {
			dashboard.TicketsToday++
		}
	}
	return dashboard, nil
}

// PointStatistics derives the roster-focused analytics view, including
// per-point serving history over the whole ticket population.
func (s *AnalyticsService) PointStatistics(ctx context.Context) (*domain.AttentionPointStatistics, error) {
	store, err := s.readSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.AttentionPointStatistics{
		Utilization: utilization(store.Points),
	}

	type pointAgg struct {
		served     int
		totalHours float64
	}
	perf := make(map[int64]*pointAgg, len(store.Points))
	for _, point := range store.Points {
		perf[point.ID] = &pointAgg{}
	}
	for _, ticket := range store.Tickets {
		if ticket.Status != domain.TicketStatusClosed || ticket.AttentionPointID == nil {
			continue
		}
		agg, ok := perf[*ticket.AttentionPointID]
		if !ok {
			continue
		}
		agg.served++
		agg.totalHours += ticket.ClosedAt.Sub(ticket.OpenedAt).Hours()
	}

	for _, point := range store.Points {
		load := domain.AttentionPointLoad{
			AttentionPointID: point.ID,
			Availability:     point.Availability,
		}
		for _, ticket := range store.Tickets {
			bound := ticket.AttentionPointID != nil && *ticket.AttentionPointID == point.ID
			if !bound {
				continue
			}
			switch ticket.Status {
			case domain.TicketStatusInProgress:
				load.InProgress++
				load.CurrentlyServing++
			case domain.TicketStatusClosed:
				load.ClosedTickets++
			case domain.TicketStatusOpen:
				load.OpenTickets++
			}
			load.TotalTickets++
		}
		stats.Detail = append(stats.Detail, load)

		agg := perf[point.ID]
		performance := domain.AttentionPointPerformance{
			AttentionPointID: point.ID,
			TicketsServed:    agg.served,
		}
		if agg.served > 0 {
			avg := roundOneDecimal(agg.totalHours / float64(agg.served))
			performance.AvgResolutionHours = &avg
		}
		stats.Performance = append(stats.Performance, performance)
	}
	return stats, nil
}

func (s *AnalyticsService) readSnapshot(ctx context.Context) (*domain.StoreSnapshot, error) {
	store, err := s.snapshots.Read(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailable(err)
	}
	return store, nil
}

func (s *AnalyticsService) topRequesters(tickets []domain.Ticket, requesters []domain.Requester) []domain.RequesterActivity {
	counts := make(map[string]int)
	for _, ticket := range tickets {
		counts[ticket.RequesterID]++
	}
	names := make(map[string]domain.Requester, len(requesters))
	for _, requester := range requesters {
		names[requester.NationalID] = requester
	}

	ranked := make([]domain.RequesterActivity, 0, len(counts))
	for nationalID, count := range counts {
		activity := domain.RequesterActivity{NationalID: nationalID, TicketCount: count}
		if requester, ok := names[nationalID]; ok {
			activity.FirstName = requester.FirstName
			activity.LastName = requester.LastName
		}
		ranked = append(ranked, activity)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TicketCount != ranked[j].TicketCount {
			return ranked[i].TicketCount > ranked[j].TicketCount
		}
		return ranked[i].NationalID < ranked[j].NationalID
	})
	if len(ranked) > s.topN {
		ranked = ranked[:s.topN]
	}
	return ranked
}

// inWindow reports membership in the half-open interval [start, end).
func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func countByStatus(tickets []domain.Ticket) []domain.StatusCount {
	counts := map[domain.TicketStatus]int{}
	for _, ticket := range tickets {
		counts[ticket.Status]++
	}
	ordered := []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusClosed,
	}
	result := make([]domain.StatusCount, 0, len(ordered))
	for _, status := range ordered {
		result = append(result, domain.StatusCount{Status: status, Count: counts[status]})
	}
	return result
}

func countByPriority(tickets []domain.Ticket) []domain.PriorityCount {
	counts := map[domain.TicketPriority]int{}
	for _, ticket := range tickets {
		counts[ticket.Priority]++
	}
	return []domain.PriorityCount{
		{Priority: domain.TicketPriorityNormal, Count: counts[domain.TicketPriorityNormal]},
		{Priority: domain.TicketPriorityHigh, Count: counts[domain.TicketPriorityHigh]},
	}
}

func bucketByDay(tickets []domain.Ticket) []domain.DateCount {
	counts := map[string]int{}
	for _, ticket := range tickets {
		counts[ticket.OpenedAt.Format("2006-01-02")]++
	}
	result := make([]domain.DateCount, 0, len(counts))
	for date, count := range counts {
		result = append(result, domain.DateCount{Date: date, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}

func bucketByHour(tickets []domain.Ticket, now time.Time) []domain.HourCount {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	counts := map[int]int{}
	for _, ticket := range tickets {
		if inWindow(ticket.OpenedAt, dayStart, now) {
			counts[ticket.OpenedAt.In(now.Location()).Hour()]++
		}
	}
	result := make([]domain.HourCount, 0, len(counts))
	for hour, count := range counts {
		result = append(result, domain.HourCount{Hour: hour, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Hour < result[j].Hour })
	return result
}

// avgResolutionHours averages closed_at - opened_at over window tickets
// that reached the terminal state. Never-closed tickets are excluded, not
// treated as zero; nil means not applicable.
func avgResolutionHours(tickets []domain.Ticket) *float64 {
	var total float64
	var count int
	for _, ticket := range tickets {
		if ticket.ClosedAt == nil {
			continue
		}
		total += ticket.ClosedAt.Sub(ticket.OpenedAt).Hours()
		count++
	}
	if count == 0 {
		return nil
	}
	avg := total / float64(count)
	return &avg
}

// pointLoads counts, per attention point, closed tickets whose closed_at
// falls in the window plus tickets currently bound to the point.
func pointLoads(store *domain.StoreSnapshot, start, end time.Time) []domain.AttentionPointLoad {
	loads := make([]domain.AttentionPointLoad, 0, len(store.Points))
	for _, point := range store.Points {
		load := domain.AttentionPointLoad{
			AttentionPointID: point.ID,
			Availability:     point.Availability,
		}
		for _, ticket := range store.Tickets {
			if ticket.AttentionPointID == nil || *ticket.AttentionPointID != point.ID {
				continue
			}
			switch ticket.Status {
			case domain.TicketStatusClosed:
				if ticket.ClosedAt != nil && inWindow(*ticket.ClosedAt, start, end) {
					load.ClosedTickets++
					load.TotalTickets++
				}
			case domain.TicketStatusInProgress:
				load.InProgress++
				load.CurrentlyServing++
				load.TotalTickets++
			case domain.TicketStatusOpen:
				load.OpenTickets++
				load.TotalTickets++
			}
		}
		loads = append(loads, load)
	}
	return loads
}

// utilization is a point-in-time gauge, not windowed.
func utilization(points []domain.AttentionPoint) domain.UtilizationSummary {
	summary := domain.UtilizationSummary{TotalPoints: len(points)}
	for _, point := range points {
		if point.Availability {
			summary.AvailablePoints++
		} else {
			summary.OccupiedPoints++
		}
	}
	if summary.TotalPoints > 0 {
		rate := roundOneDecimal(float64(summary.OccupiedPoints) / float64(summary.TotalPoints) * 100)
		summary.RatePercent = &rate
	}
	return summary
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
