package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// IdentityService resolves national IDs to requester records. Lookups
// have no side effects; an unknown ID is the caller's cue to branch to
// out-of-band registration, never to create a ticket.
type IdentityService struct {
	requesters repository.RequesterRepository
}

// NewIdentityService constructs the service.
func NewIdentityService(requesters repository.RequesterRepository) *IdentityService {
	return &IdentityService{requesters: requesters}
}

// RegisterInput describes a registration payload.
type RegisterInput struct {
	NationalID string
	FirstName  string
	LastName   string
	Email      string
	Priority   bool
}

// Resolve maps a national ID to a known requester.
func (s *IdentityService) Resolve(ctx context.Context, nationalID string) (*domain.Requester, error) {
	if err := validateNationalID(nationalID); err != nil {
		return nil, err
	}
	requester, err := s.requesters.GetByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("requester", map[string]any{"national_id": nationalID})
		}
		return nil, apperrors.MapError(err)
	}
	if !requester.Active {
		return nil, apperrors.NewNotFound("requester", map[string]any{"national_id": nationalID})
	}
	return requester, nil
}

// Register creates a requester record.
func (s *IdentityService) Register(ctx context.Context, input RegisterInput) (*domain.Requester, error) {
	if err := validateNationalID(input.NationalID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, apperrors.NewValidationError("first_name and last_name required", nil)
	}
	requester := &domain.Requester{
		NationalID: input.NationalID,
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Email:      strings.TrimSpace(input.Email),
		Priority:   input.Priority,
	}
	if err := s.requesters.Create(ctx, requester); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("requester already registered", map[string]any{"national_id": input.NationalID})
		}
		return nil, apperrors.MapError(err)
	}
	return requester, nil
}

// SetPriority updates the eligibility flag (administrator action).
func (s *IdentityService) SetPriority(ctx context.Context, nationalID string, priority bool) error {
	if err := validateNationalID(nationalID); err != nil {
		return err
	}
	if err := s.requesters.SetPriority(ctx, nationalID, priority); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("requester", map[string]any{"national_id": nationalID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func validateNationalID(nationalID string) error {
	if nationalID == "" {
		return apperrors.NewInvalidIdentifier("national_id required")
	}
	for _, ch := range nationalID {
		if ch < '0' || ch > '9' {
			return apperrors.NewInvalidIdentifier("national_id must be numeric")
		}
	}
	return nil
}
