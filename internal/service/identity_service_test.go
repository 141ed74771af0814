package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

func TestResolveKnownRequester(t *testing.T) {
	store := newMemStore()
	store.addRequester("12345678", true, true)
	identity := NewIdentityService(store.requesterRepo())

	requester, err := identity.Resolve(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, "12345678", requester.NationalID)
	assert.True(t, requester.Priority)
}

func TestResolveRejectsMalformedID(t *testing.T) {
	identity := NewIdentityService(newMemStore().requesterRepo())

	for _, id := range []string{"", "abc", "123-456", " 123"} {
		_, err := identity.Resolve(context.Background(), id)
		assert.Equal(t, apperrors.CodeInvalidIdentifier, domainCode(t, err), "national_id %q", id)
	}
}

func TestResolveUnknownRequester(t *testing.T) {
	identity := NewIdentityService(newMemStore().requesterRepo())

	_, err := identity.Resolve(context.Background(), "99999999")
	assert.Equal(t, apperrors.CodeNotFound, domainCode(t, err))
}

func TestResolveInactiveRequester(t *testing.T) {
	store := newMemStore()
	store.addRequester("12345678", false, false)
	identity := NewIdentityService(store.requesterRepo())

	_, err := identity.Resolve(context.Background(), "12345678")
	assert.Equal(t, apperrors.CodeNotFound, domainCode(t, err))
}

func TestRegisterRequester(t *testing.T) {
	store := newMemStore()
	identity := NewIdentityService(store.requesterRepo())

	requester, err := identity.Register(context.Background(), RegisterInput{
		NationalID: "12345678",
		FirstName:  "  Ada ",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", requester.FirstName)
	assert.True(t, requester.Active)

	resolved, err := identity.Resolve(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", resolved.LastName)
}

func TestRegisterDuplicateRequester(t *testing.T) {
	store := newMemStore()
	store.addRequester("12345678", false, true)
	identity := NewIdentityService(store.requesterRepo())

	_, err := identity.Register(context.Background(), RegisterInput{
		NationalID: "12345678",
		FirstName:  "Ada",
		LastName:   "Lovelace",
	})
	assert.Equal(t, apperrors.CodeConflict, domainCode(t, err))
}

func TestRegisterRequiresNames(t *testing.T) {
	identity := NewIdentityService(newMemStore().requesterRepo())

	_, err := identity.Register(context.Background(), RegisterInput{NationalID: "12345678", FirstName: " "})
	assert.Equal(t, apperrors.CodeValidationFailed, domainCode(t, err))
}

func TestSetPriorityTogglesEligibility(t *testing.T) {
	store := newMemStore()
	store.addRequester("12345678", false, true)
	identity := NewIdentityService(store.requesterRepo())

	require.NoError(t, identity.SetPriority(context.Background(), "12345678", true))
	requester, err := identity.Resolve(context.Background(), "12345678")
	require.NoError(t, err)
	assert.True(t, requester.Priority)

	err = identity.SetPriority(context.Background(), "00000000", true)
	assert.Equal(t, apperrors.CodeNotFound, domainCode(t, err))
}
