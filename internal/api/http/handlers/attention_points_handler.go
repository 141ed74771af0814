package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/service"
)

// AttentionPointsHandler serves the fleet roster.
type AttentionPointsHandler struct {
	queries *service.QueryService
	fleet   *service.FleetService
}

// NewAttentionPointsHandler constructs handler.
func NewAttentionPointsHandler(queries *service.QueryService, fleet *service.FleetService) *AttentionPointsHandler {
	return &AttentionPointsHandler{queries: queries, fleet: fleet}
}

// ListAttentionPoints GET /attention-points.
func (h *AttentionPointsHandler) ListAttentionPoints(c *fiber.Ctx) error {
	points, err := h.queries.Roster(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.AttentionPointResponse, 0, len(points))
	for i := range points {
		items = append(items, dto.FromAttentionPoint(&points[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateAttentionPoint POST /attention-points (admin).
func (h *AttentionPointsHandler) CreateAttentionPoint(c *fiber.Ctx) error {
	point, err := h.fleet.CreatePoint(c.Context())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromAttentionPoint(point)})
}
