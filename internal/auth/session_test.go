package auth_test

import (
	"context"
	"testing"

	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/infra/sql"
	"shopfloor-console/internal/shared_kernel/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *auth.Store {
	t.Helper()

	orm, err := sql.NewMemoryORM()
	require.NoError(t, err)

	store, err := auth.NewStore(orm)
	require.NoError(t, err)

	return store
}

func TestManagerSetTokenAndRehydrate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	manager := auth.NewManager(store)
	token := tokenWithPayload(`{"sub":"alice","role":"admin","exp":4102444800}`)
	require.NoError(t, manager.SetToken(ctx, token))

	assert.True(t, manager.Authenticated())
	assert.Equal(t, domain.RoleAdmin, manager.Role())

	// A fresh manager over the same store picks the session back up.
	restored := auth.NewManager(store)
	require.NoError(t, restored.Rehydrate(ctx))

	assert.True(t, restored.Authenticated())
	assert.Equal(t, "alice", restored.Subject())

	got, ok := restored.Token()
	assert.True(t, ok)
	assert.Equal(t, token, got)
}

func TestManagerRejectsTokenWithoutRole(t *testing.T) {
	ctx := context.Background()
	manager := auth.NewManager(newTestStore(t))

	err := manager.SetToken(ctx, tokenWithPayload(`{"sub":"alice"}`))
	assert.ErrorIs(t, err, auth.ErrNoRoleClaim)
	assert.False(t, manager.Authenticated())
}

func TestManagerRehydrateDiscardsExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// Expired in 2020.
	require.NoError(t, store.Save(ctx, tokenWithPayload(`{"sub":"alice","role":"admin","exp":1577836800}`)))

	manager := auth.NewManager(store)
	require.NoError(t, manager.Rehydrate(ctx))

	assert.False(t, manager.Authenticated())

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, sql.ErrRecordNotFound)
}

func TestManagerRehydrateWithEmptyStore(t *testing.T) {
	manager := auth.NewManager(newTestStore(t))
	require.NoError(t, manager.Rehydrate(context.Background()))
	assert.False(t, manager.Authenticated())
}

func TestManagerLogout(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	manager := auth.NewManager(store)
	require.NoError(t, manager.SetToken(ctx, tokenWithPayload(`{"sub":"bob","role":"operator"}`)))
	require.NoError(t, manager.Logout(ctx))

	assert.False(t, manager.Authenticated())
	_, ok := manager.Token()
	assert.False(t, ok)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, sql.ErrRecordNotFound)
}
