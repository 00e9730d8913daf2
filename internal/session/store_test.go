package session

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore instance
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, "session:credential"), mr
}

func TestRedisStore_LoadMissingIsEmptyNotError(t *testing.T) {
	store, _ := setupTestRedis(t)

	token, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRedisStore_SaveThenLoad(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tok-abc"))

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)

	// No TTL: a credential survives until explicit logout.
	assert.Equal(t, int64(0), int64(mr.TTL("session:credential")))
}

func TestRedisStore_Clear(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tok-abc"))
	require.NoError(t, store.Clear(ctx))

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRedisStore_LoadFailureIsError(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}

func TestMemoryStore_Roundtrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save(ctx, "tok-abc"))
	token, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)

	require.NoError(t, store.Clear(ctx))
	token, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestTokenSource_DegradesToEmptyOnStoreFailure(t *testing.T) {
	store, mr := setupTestRedis(t)
	src := NewTokenSource(store, slog.Default())

	require.NoError(t, store.Save(context.Background(), "tok-abc"))
	assert.Equal(t, "tok-abc", src.Token(context.Background()))

	mr.Close()
	assert.Empty(t, src.Token(context.Background()))
}
