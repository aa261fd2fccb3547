package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	p := access.Principal{UserID: 4, Username: "alice", Role: models.RoleAgent}
	id, err := store.Create(ctx, FromPrincipal(p))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, p, got.Principal())
	assert.False(t, got.CreatedAt.IsZero())

	got.AddFlash(FlashSuccess, "Client added successfully.")
	require.NoError(t, store.Save(ctx, id, got))

	again, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []Flash{{Category: FlashSuccess, Message: "Client added successfully."}}, again.PopFlashes())
	assert.Empty(t, again.Flashes)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	id, err := store.Create(ctx, &Data{Role: models.RoleAdmin})
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	_, err = store.Get(ctx, id)
	require.NoError(t, err, "access refreshes the expiry")

	now = now.Add(45 * time.Second)
	_, err = store.Get(ctx, id)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Save(ctx, id, &Data{}), ErrNotFound)
}

func TestMemoryStore_SaveDoesNotResurrect(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	p := access.Principal{UserID: 4, Username: "alice", Role: models.RoleAgent}

	deleted, err := store.Create(ctx, FromPrincipal(p))
	require.NoError(t, err)
	loaded, err := store.Get(ctx, deleted)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, deleted))

	loaded.AddFlash(FlashInfo, "late")
	assert.ErrorIs(t, store.Save(ctx, deleted, loaded), ErrNotFound)
	_, err = store.Get(ctx, deleted)
	assert.ErrorIs(t, err, ErrNotFound)

	expired, err := store.Create(ctx, FromPrincipal(p))
	require.NoError(t, err)
	loaded, err = store.Get(ctx, expired)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, store.Save(ctx, expired, loaded), ErrNotFound)
	_, err = store.Get(ctx, expired)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	id, err := store.Create(ctx, &Data{Flashes: []Flash{{Category: FlashInfo, Message: "hi"}}})
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	got.Flashes[0].Message = "changed"

	again, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hi", again.Flashes[0].Message)
}

func TestPrincipal_NilData(t *testing.T) {
	var d *Data
	assert.False(t, d.Principal().Authenticated())
}
