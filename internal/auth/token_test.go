package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/queue-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	staff := &domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleAdmin}

	token, expiresAt, err := tm.GenerateToken(staff)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.StaffID)
	assert.Equal(t, domain.StaffRoleAdmin, claims.Role)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	other := NewTokenManager("other-secret", 60)

	token, _, err := tm.GenerateToken(&domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleAgent})
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenGarbageRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	_, err := tm.ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
