package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/service"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

const defaultWindowDays = 30

// StatisticsHandler serves the derived analytics views.
type StatisticsHandler struct {
	queries *service.QueryService
}

// NewStatisticsHandler constructs handler.
func NewStatisticsHandler(queries *service.QueryService) *StatisticsHandler {
	return &StatisticsHandler{queries: queries}
}

// TicketStatistics GET /statistics/tickets?days=N.
func (h *StatisticsHandler) TicketStatistics(c *fiber.Ctx) error {
	days := defaultWindowDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return apperrors.NewValidationError("days must be a positive integer", nil)
		}
		days = parsed
	}
	snapshot, err := h.queries.Statistics(c.Context(), days)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

// DashboardStatistics GET /statistics/dashboard.
func (h *StatisticsHandler) DashboardStatistics(c *fiber.Ctx) error {
	snapshot, err := h.queries.DashboardStatistics(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

// AttentionPointStatistics GET /statistics/attention-points.
func (h *StatisticsHandler) AttentionPointStatistics(c *fiber.Ctx) error {
	stats, err := h.queries.AttentionPointStatistics(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
