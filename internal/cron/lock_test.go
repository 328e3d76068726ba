package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryLockStore struct {
	values map[string]string
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryLockStore) DeleteIfEquals(_ context.Context, key, value string) (bool, error) {
	if m.values[key] != value {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func TestRedisLockExclusiveAcrossReplicas(t *testing.T) {
	ctx := context.Background()
	store := &memoryLockStore{values: map[string]string{}}
	first, err := NewRedisLock(store, "tiffin:cron-worker:lock:test", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "tiffin:cron-worker:lock:test", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, second.Release(ctx))
	assert.Len(t, store.values, 1, "a replica that never acquired must not free the lock")

	require.NoError(t, first.Release(ctx))
	assert.Empty(t, store.values)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockExpiredLeaseDoesNotFreeNewOwner(t *testing.T) {
	ctx := context.Background()
	store := &memoryLockStore{values: map[string]string{}}
	stale, err := NewRedisLock(store, "k", time.Minute)
	require.NoError(t, err)
	ok, err := stale.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// lease expires and another replica takes the key
	store.values["k"] = "fresh-owner"

	require.NoError(t, stale.Release(ctx))
	assert.Equal(t, "fresh-owner", store.values["k"])
}

func TestNewRedisLockValidation(t *testing.T) {
	store := &memoryLockStore{values: map[string]string{}}
	_, err := NewRedisLock(nil, "key", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisLock(store, "", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisLock(store, "key", 0)
	assert.Error(t, err)
}
