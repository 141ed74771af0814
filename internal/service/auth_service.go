package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/queue-service/internal/auth"
	"github.com/spec-kit/queue-service/internal/config"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// AuthService authenticates staff members. Requesters never log in; the
// intake flow is anonymous and keyed by national ID.
type AuthService struct {
	staff  repository.StaffRepository
	tokens *auth.TokenManager
	cfg    config.AuthConfig
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, staff repository.StaffRepository) *AuthService {
	return &AuthService{
		staff:  staff,
		tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		cfg:    cfg,
	}
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Staff     *domain.StaffMember
}

// Login verifies credentials and issues a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	staff, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !staff.Active || !auth.VerifyPassword(staff.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(staff)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Staff: staff}, nil
}

// CreateStaffInput describes an administrator provisioning request.
type CreateStaffInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.StaffRole
}

// CreateStaff provisions a staff account (administrator action).
func (s *AuthService) CreateStaff(ctx context.Context, input CreateStaffInput) (*domain.StaffMember, error) {
	if input.Name == "" || input.Email == "" || len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("name, email and a password of at least 8 characters required", nil)
	}
	if input.Role != domain.StaffRoleAgent && input.Role != domain.StaffRoleAdmin {
		return nil, apperrors.NewValidationError("role must be AGENT or ADMIN", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	staff := &domain.StaffMember{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
