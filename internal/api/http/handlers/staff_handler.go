package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/service"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// StaffHandler manages staff authentication endpoints.
type StaffHandler struct {
	authService *service.AuthService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(authService *service.AuthService) *StaffHandler {
	return &StaffHandler{authService: authService}
}

// Login POST /auth/staff/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	result, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StaffLoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Name:      result.Staff.Name,
		Role:      string(result.Staff.Role),
	}})
}

// CreateStaff POST /staff (admin).
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	staff, err := h.authService.CreateStaff(c.Context(), service.CreateStaffInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.StaffRole(strings.ToUpper(req.Role)),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.StaffResponse{
		ID:     staff.ID,
		Name:   staff.Name,
		Email:  staff.Email,
		Role:   string(staff.Role),
		Active: staff.Active,
	}})
}
