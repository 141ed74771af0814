package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by path, method and status",
		},
		[]string{"path", "method", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	requestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_errors_total",
			Help: "Total request errors by domain error code",
		},
		[]string{"path", "method", "code"},
	)

	ticketsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Tickets created by priority class",
		},
		[]string{"priority"},
	)

	ticketTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_transitions_total",
			Help: "Ticket lifecycle transitions",
		},
		[]string{"transition"},
	)

	statsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statistics_cache_lookups_total",
			Help: "Statistics snapshot cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	occupiedPoints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "attention_points_occupied",
			Help: "Attention points currently serving a ticket",
		},
	)
)

// Metrics exposes recorder methods over the package collectors.
type Metrics struct{}

// NewMetrics initializes metrics recording.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRequest tracks a completed HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError tracks a request that ended in a domain error.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	requestErrors.WithLabelValues(path, method, code).Inc()
}

// RecordTicketCreated tracks ticket creation by priority class.
func (m *Metrics) RecordTicketCreated(priority string) {
	if m == nil {
		return
	}
	ticketsCreated.WithLabelValues(priority).Inc()
}

// RecordTransition tracks a lifecycle transition.
func (m *Metrics) RecordTransition(transition string) {
	if m == nil {
		return
	}
	ticketTransitions.WithLabelValues(transition).Inc()
}

// RecordStatsCacheLookup tracks a cache hit or miss.
func (m *Metrics) RecordStatsCacheLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	statsCacheLookups.WithLabelValues(outcome).Inc()
}

// SetOccupiedPoints updates the occupancy gauge.
func (m *Metrics) SetOccupiedPoints(n int) {
	if m == nil {
		return
	}
	occupiedPoints.Set(float64(n))
}
