package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_CreateThenValidate(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := newFakeClock()
	m := NewSessionManager(store, 0, clock.Now, nil)
	ctx := context.Background()

	token, err := m.CreateSession(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Len(t, token, 64)

	s, err := m.ValidateSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "ann@example.com", s.Email)
	assert.Equal(t, token, s.Token)
	assert.Equal(t, clock.Now().Add(24*time.Hour), s.ExpiresAt)
}

func TestSessionManager_StoredLayout(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewSessionManager(store, time.Hour, newFakeClock().Now, nil)

	_, err := m.CreateSession(context.Background(), "ann@example.com")
	require.NoError(t, err)

	data, ok, err := store.Get(context.Background(), common.SessionKey)
	require.NoError(t, err)
	require.True(t, ok)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "token")
	assert.Contains(t, raw, "email")
	assert.Contains(t, raw, "expiresAt")
}

func TestSessionManager_LazyExpiry(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := newFakeClock()
	m := NewSessionManager(store, 24*time.Hour, clock.Now, nil)
	ctx := context.Background()

	_, err := m.CreateSession(ctx, "ann@example.com")
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	s, err := m.ValidateSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, s, "still valid exactly at expiresAt")

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, store.Len(), "expiry is only observed on access")

	s, err = m.ValidateSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Zero(t, store.Len(), "expired session is removed")
}

func TestSessionManager_NoSlidingExpiry(t *testing.T) {
	clock := newFakeClock()
	m := NewSessionManager(storage.NewMemoryStore(), time.Hour, clock.Now, nil)
	ctx := context.Background()

	_, err := m.CreateSession(ctx, "ann@example.com")
	require.NoError(t, err)

	var first *models.Session
	for i := 0; i < 3; i++ {
		clock.Advance(10 * time.Minute)
		s, err := m.ValidateSession(ctx)
		require.NoError(t, err)
		require.NotNil(t, s)
		if first == nil {
			first = s
		}
		assert.Equal(t, first.ExpiresAt, s.ExpiresAt)
	}

	clock.Advance(31 * time.Minute)
	s, err := m.ValidateSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSessionManager_CreateReplacesPrevious(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewSessionManager(store, 0, nil, nil)
	ctx := context.Background()

	t1, err := m.CreateSession(ctx, "ann@example.com")
	require.NoError(t, err)
	t2, err := m.CreateSession(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)

	s, err := m.ValidateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", s.Email)
	assert.Equal(t, t2, s.Token)
	assert.Equal(t, 1, store.Len())
}

func TestSessionManager_ClearIsIdempotent(t *testing.T) {
	m := NewSessionManager(storage.NewMemoryStore(), 0, nil, nil)
	ctx := context.Background()

	require.NoError(t, m.ClearSession(ctx))

	_, err := m.CreateSession(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NoError(t, m.ClearSession(ctx))
	require.NoError(t, m.ClearSession(ctx))

	s, err := m.ValidateSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSessionManager_UnreadableSessionIsDropped(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, common.SessionKey, []byte("{broken")))

	s, err := NewSessionManager(store, 0, nil, nil).ValidateSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Zero(t, store.Len())
}

func TestSessionManager_StoreErrors(t *testing.T) {
	store := newFlakyStore()
	store.failSet = []string{common.SessionKey}
	store.failGet = []string{common.SessionKey}
	store.failDelete = []string{common.SessionKey}
	m := NewSessionManager(store, 0, nil, nil)
	ctx := context.Background()

	_, err := m.CreateSession(ctx, "ann@example.com")
	assert.ErrorIs(t, err, errStoreDown)

	_, err = m.ValidateSession(ctx)
	assert.ErrorIs(t, err, errStoreDown)

	assert.ErrorIs(t, m.ClearSession(ctx), errStoreDown)
}
