package domain

import "time"

// StatusCount is one bucket of the tickets-by-status breakdown.
type StatusCount struct {
	Status TicketStatus `json:"status"`
	Count  int          `json:"count"`
}

// PriorityCount is one bucket of the tickets-by-priority breakdown.
type PriorityCount struct {
	Priority TicketPriority `json:"priority"`
	Count    int            `json:"count"`
}

// DateCount is a daily time bucket.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HourCount is an hourly time bucket for the current day.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// RequesterActivity ranks a requester by tickets opened in the window.
type RequesterActivity struct {
	NationalID  string `json:"national_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TicketCount int    `json:"ticket_count"`
}

// AttentionPointLoad describes one point's windowed and live load.
type AttentionPointLoad struct {
	AttentionPointID int64 `json:"attention_point_id"`
	Availability     bool  `json:"availability"`
	TotalTickets     int   `json:"total_tickets"`
	OpenTickets      int   `json:"open_tickets"`
	InProgress       int   `json:"in_progress_tickets"`
	ClosedTickets    int   `json:"closed_tickets"`
	CurrentlyServing int   `json:"currently_serving"`
}

// UtilizationSummary is a point-in-time gauge over the fleet. Rate is a
// percentage with one decimal of precision, nil when the fleet is empty.
type UtilizationSummary struct {
	TotalPoints     int      `json:"total_points"`
	AvailablePoints int      `json:"available_points"`
	OccupiedPoints  int      `json:"occupied_points"`
	RatePercent     *float64 `json:"utilization_rate"`
}

// StatisticsSnapshot is the derived view for a statistics window. It is
// recomputed on query and never persisted. AvgResolutionHours is nil when
// no ticket in the window has been closed.
type StatisticsSnapshot struct {
	WindowDays           int                  `json:"window_days"`
	WindowStart          time.Time            `json:"window_start"`
	WindowEnd            time.Time            `json:"window_end"`
	TotalTicketsInPeriod int                  `json:"total_tickets_in_period"`
	TicketsByStatus      []StatusCount        `json:"tickets_by_status"`
	TicketsByPriority    []PriorityCount      `json:"tickets_by_priority"`
	TicketsOverTime      []DateCount          `json:"tickets_over_time"`
	TicketsByHour        []HourCount          `json:"tickets_by_hour"`
	AvgResolutionHours   *float64             `json:"average_resolution_time_hours"`
	MostActiveRequesters []RequesterActivity  `json:"most_active_requesters"`
	TicketsPerPoint      []AttentionPointLoad `json:"tickets_per_attention_point"`
	Utilization          UtilizationSummary   `json:"utilization"`
}

// DashboardSnapshot aggregates all-time operational totals.
type DashboardSnapshot struct {
	TotalRequesters     int                `json:"total_requesters"`
	PriorityRequesters  int                `json:"priority_requesters"`
	TotalTickets        int                `json:"total_tickets"`
	TicketsByStatus     []StatusCount      `json:"tickets_by_status"`
	TicketsByPriority   []PriorityCount    `json:"tickets_by_priority"`
	RecentTickets       int                `json:"recent_tickets"`
	TicketsToday        int                `json:"tickets_today"`
	TotalAttentionPoint int                `json:"total_attention_points"`
	Utilization         UtilizationSummary `json:"utilization"`
}

// AttentionPointPerformance reports per-point serving history.
type AttentionPointPerformance struct {
	AttentionPointID   int64    `json:"attention_point_id"`
	TicketsServed      int      `json:"tickets_served"`
	AvgResolutionHours *float64 `json:"avg_resolution_time_hours"`
}

// AttentionPointStatistics is the roster-focused analytics view.
type AttentionPointStatistics struct {
	Utilization UtilizationSummary          `json:"utilization_summary"`
	Detail      []AttentionPointLoad        `json:"attention_points_detail"`
	Performance []AttentionPointPerformance `json:"performance_metrics"`
}

// StoreSnapshot is a consistent read of the ticket population and fleet,
// taken in a single repeatable-read transaction so derived figures never
// mix two concurrent transitions.
type StoreSnapshot struct {
	Tickets    []Ticket
	Points     []AttentionPoint
	Requesters []Requester
	TakenAt    time.Time
}
