package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisVerificationStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := NewRedisVerificationStore(rdb)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "A@Example.com", "111111", time.Minute))
	require.NoError(t, store.Save(ctx, "a@example.com", "222222", time.Minute))

	code, err := store.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", code)

	mr.FastForward(2 * time.Minute)
	code, err = store.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestDBVerificationStore(t *testing.T) {
	db := setupSQLiteDB(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &dbVerificationStore{db: db, now: func() time.Time { return now }}
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b@example.com", "123456", 10*time.Minute))
	require.NoError(t, store.Save(ctx, "b@example.com", "654321", 10*time.Minute))

	code, err := store.Get(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "654321", code)

	now = now.Add(11 * time.Minute)
	code, err = store.Get(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Empty(t, code)

	require.NoError(t, store.Delete(ctx, "b@example.com"))
}
