package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	"github.com/spec-kit/queue-service/internal/service"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// TicketsHandler manages intake and ticket read/transition endpoints.
type TicketsHandler struct {
	lifecycle *service.LifecycleService
	queries   *service.QueryService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(lifecycle *service.LifecycleService, queries *service.QueryService) *TicketsHandler {
	return &TicketsHandler{lifecycle: lifecycle, queries: queries}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.lifecycle.CreateTicket(c.Context(), req.NationalID, req.RequestedPriority)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CreateTicketResponse{
		Ticket:    dto.FromTicket(result.Ticket),
		Requester: dto.FromRequester(result.Requester),
	}})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.queries.GetTicket(c.Context(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := parseTicketFilter(c)
	tickets, err := h.queries.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AdvanceTicket POST /tickets/:id/advance.
func (h *TicketsHandler) AdvanceTicket(c *fiber.Ctx) error {
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.lifecycle.Advance(c.Context(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.lifecycle.Close(c.Context(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	ticketID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || ticketID <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return ticketID, nil
}

func parseTicketFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if requester := c.Query("requester_id"); requester != "" {
		filter.RequesterID = &requester
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	return filter
}
