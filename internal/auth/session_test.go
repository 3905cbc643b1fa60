package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logo-playground/api/internal/auth"
	"github.com/logo-playground/api/internal/memstore"
	"github.com/logo-playground/api/internal/user"
)

func testUser() *user.User {
	return &user.User{
		ID:    uuid.New(),
		Email: "a@x.com",
	}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	manager := auth.NewSessionManager(memstore.NewSessionStore(), time.Hour)
	u := testUser()

	token, err := manager.Create(ctx, u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := manager.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, session.UserID)
	assert.Equal(t, u.Email, session.Email)

	require.NoError(t, manager.Destroy(ctx, token))

	_, err = manager.Resolve(ctx, token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestSessionDestroy_Idempotent(t *testing.T) {
	ctx := context.Background()
	manager := auth.NewSessionManager(memstore.NewSessionStore(), time.Hour)

	token, err := manager.Create(ctx, testUser())
	require.NoError(t, err)

	require.NoError(t, manager.Destroy(ctx, token))
	require.NoError(t, manager.Destroy(ctx, token))
	require.NoError(t, manager.Destroy(ctx, "never-issued"))
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewSessionStore()
	manager := auth.NewSessionManager(store, -time.Second) // already expired at creation

	token, err := manager.Create(ctx, testUser())
	require.NoError(t, err)

	_, err = manager.Resolve(ctx, token)
	assert.ErrorIs(t, err, auth.ErrSessionExpired)

	// The expired session was destroyed on resolve; a second attempt finds nothing.
	_, err = manager.Resolve(ctx, token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestSessionResolve_EmptyAndUnknownToken(t *testing.T) {
	ctx := context.Background()
	manager := auth.NewSessionManager(memstore.NewSessionStore(), time.Hour)

	_, err := manager.Resolve(ctx, "")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	_, err = manager.Resolve(ctx, "never-issued")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestSessionTokensAreOpaqueAndUnique(t *testing.T) {
	ctx := context.Background()
	manager := auth.NewSessionManager(memstore.NewSessionStore(), time.Hour)
	u := testUser()

	first, err := manager.Create(ctx, u)
	require.NoError(t, err)
	second, err := manager.Create(ctx, u)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, u.Email)
}
