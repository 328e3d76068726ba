package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delish-app/tiffin-backend/pkg/config"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value.(string)
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func testManager(t *testing.T, store Store) *Manager {
	t.Helper()
	m, err := NewManager(store, config.JWTConfig{ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60 * 24})
	require.NoError(t, err)
	return m
}

func TestGenerateStoresDigestNotToken(t *testing.T) {
	store := newMemoryStore()
	m := testManager(t, store)

	token, err := m.Generate(context.Background(), "jti-1")
	require.NoError(t, err)
	stored := store.values["sess:jti-1"]
	assert.NotEqual(t, token, stored)
	assert.Equal(t, digest(token), stored)
}

func TestRotateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	m := testManager(t, store)
	token, err := m.Generate(ctx, "jti-1")
	require.NoError(t, err)

	_, _, err = m.Rotate(ctx, "jti-1", "not-the-token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	newID, newToken, err := m.Rotate(ctx, "jti-1", token)
	require.NoError(t, err)
	assert.NotEqual(t, "jti-1", newID)
	assert.NotEqual(t, token, newToken)
	assert.NotContains(t, store.values, "sess:jti-1")

	_, _, err = m.Rotate(ctx, "jti-1", token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken, "a used refresh token must not rotate twice")

	ok, err := m.HasSession(ctx, newID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRevokeEndsSession(t *testing.T) {
	ctx := context.Background()
	m := testManager(t, newMemoryStore())
	id := NewAccessID()
	_, err := m.Generate(ctx, id)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, id))
	ok, err := m.HasSession(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Error(t, m.Revoke(ctx, " "))
}

func TestRotateSurfacesStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("connection reset")
	m := testManager(t, store)

	_, _, err := m.Rotate(context.Background(), "jti-1", "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestNewManagerValidation(t *testing.T) {
	_, err := NewManager(nil, config.JWTConfig{})
	assert.Error(t, err)

	_, err = NewManager(newMemoryStore(), config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 30})
	assert.ErrorContains(t, err, "must be longer")
}
