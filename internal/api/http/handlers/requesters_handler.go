package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/service"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// RequestersHandler manages requester registration and administration.
type RequestersHandler struct {
	identity *service.IdentityService
}

// NewRequestersHandler constructs handler.
func NewRequestersHandler(identity *service.IdentityService) *RequestersHandler {
	return &RequestersHandler{identity: identity}
}

// Register POST /requesters.
func (h *RequestersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequesterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	requester, err := h.identity.Register(c.Context(), service.RegisterInput{
		NationalID: req.NationalID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Priority:   req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromRequester(requester)})
}

// UpdatePriority PATCH /requesters/:national_id/priority (admin).
func (h *RequestersHandler) UpdatePriority(c *fiber.Ctx) error {
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.identity.SetPriority(c.Context(), c.Params("national_id"), req.Priority); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"national_id": c.Params("national_id"),
		"priority":    req.Priority,
	}})
}
