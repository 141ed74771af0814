package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/queue-service/internal/config"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

type fakeStaffRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.StaffMember
	nextID int
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{byID: make(map[string]*domain.StaffMember)}
}

func (r *fakeStaffRepo) Create(ctx context.Context, staff *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	staff.ID = fmt.Sprintf("staff-%d", r.nextID)
	copied := *staff
	r.byID[staff.ID] = &copied
	return nil
}

func (r *fakeStaffRepo) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if staff, ok := r.byID[id]; ok {
		copied := *staff
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeStaffRepo) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, staff := range r.byID {
		if staff.Email == email {
			copied := *staff
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}
}

func TestCreateStaffAndLogin(t *testing.T) {
	authService := NewAuthService(testAuthConfig(), newFakeStaffRepo())

	staff, err := authService.CreateStaff(context.Background(), CreateStaffInput{
		Name:     "Counter Agent",
		Email:    "agent@example.com",
		Password: "correct-horse",
		Role:     domain.StaffRoleAgent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, staff.ID)
	assert.True(t, staff.Active)
	assert.NotEqual(t, "correct-horse", staff.PasswordHash)

	result, err := authService.Login(context.Background(), "agent@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, staff.ID, result.Staff.ID)

	claims, err := authService.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, staff.ID, claims.StaffID)
	assert.Equal(t, domain.StaffRoleAgent, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	authService := NewAuthService(testAuthConfig(), newFakeStaffRepo())
	_, err := authService.CreateStaff(context.Background(), CreateStaffInput{
		Name:     "Counter Agent",
		Email:    "agent@example.com",
		Password: "correct-horse",
		Role:     domain.StaffRoleAgent,
	})
	require.NoError(t, err)

	_, err = authService.Login(context.Background(), "agent@example.com", "wrong")
	assert.Equal(t, apperrors.CodeUnauthorized, domainCode(t, err))
}

func TestLoginUnknownEmail(t *testing.T) {
	authService := NewAuthService(testAuthConfig(), newFakeStaffRepo())
	_, err := authService.Login(context.Background(), "nobody@example.com", "whatever")
	assert.Equal(t, apperrors.CodeUnauthorized, domainCode(t, err))
}

func TestLoginInactiveStaff(t *testing.T) {
	repo := newFakeStaffRepo()
	authService := NewAuthService(testAuthConfig(), repo)
	staff, err := authService.CreateStaff(context.Background(), CreateStaffInput{
		Name:     "Former Agent",
		Email:    "former@example.com",
		Password: "correct-horse",
		Role:     domain.StaffRoleAgent,
	})
	require.NoError(t, err)
	repo.byID[staff.ID].Active = false

	_, err = authService.Login(context.Background(), "former@example.com", "correct-horse")
	assert.Equal(t, apperrors.CodeUnauthorized, domainCode(t, err))
}

func TestCreateStaffValidation(t *testing.T) {
	authService := NewAuthService(testAuthConfig(), newFakeStaffRepo())

	_, err := authService.CreateStaff(context.Background(), CreateStaffInput{
		Name:     "Agent",
		Email:    "agent@example.com",
		Password: "short",
		Role:     domain.StaffRoleAgent,
	})
	assert.Equal(t, apperrors.CodeValidationFailed, domainCode(t, err))

	_, err = authService.CreateStaff(context.Background(), CreateStaffInput{
		Name:     "Agent",
		Email:    "agent@example.com",
		Password: "long-enough",
		Role:     "SUPERUSER",
	})
	assert.Equal(t, apperrors.CodeValidationFailed, domainCode(t, err))
}
