package controlstate

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewatch-systems/nodewatch/internal/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestRedisStore_UnsetFlagReadsFalse(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisStore(client, "nodewatch:flag:")
	defer store.Close()

	value, err := store.Get(context.Background(), models.FlagRelay)
	require.NoError(t, err)
	assert.False(t, value)
}

func TestRedisStore_ReadYourWrite(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisStore(client, "nodewatch:flag:")
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, models.FlagRelay, true))
	value, err := store.Get(ctx, models.FlagRelay)
	require.NoError(t, err)
	assert.True(t, value)

	require.NoError(t, store.Set(ctx, models.FlagRelay, false))
	value, err = store.Get(ctx, models.FlagRelay)
	require.NoError(t, err)
	assert.False(t, value)
}

func TestRedisStore_FlagsAreIndependent(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, "nodewatch:flag:")
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, models.FlagRelay, true))

	led, err := store.Get(ctx, models.FlagLED)
	require.NoError(t, err)
	assert.False(t, led, "writing relay must not touch led")

	// Last physical write wins, stored as a plain register.
	require.NoError(t, store.Set(ctx, models.FlagRelay, false))
	require.NoError(t, store.Set(ctx, models.FlagRelay, true))
	got, err := mr.Get("nodewatch:flag:relay")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestRedisStore_BackendDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, "nodewatch:flag:")
	defer store.Close()
	ctx := context.Background()

	mr.Close()

	err := store.Set(ctx, models.FlagLED, true)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = store.Get(ctx, models.FlagLED)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value, err := store.Get(ctx, models.FlagLED)
	require.NoError(t, err)
	assert.False(t, value)

	require.NoError(t, store.Set(ctx, models.FlagLED, true))
	value, err = store.Get(ctx, models.FlagLED)
	require.NoError(t, err)
	assert.True(t, value)

	relay, err := store.Get(ctx, models.FlagRelay)
	require.NoError(t, err)
	assert.False(t, relay)
}
