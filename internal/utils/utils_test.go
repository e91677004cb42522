package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniredis creates a new miniredis server and returns a Redis client connected to it
func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCache_RoundTrip(t *testing.T) {
	mr, client := setupMiniredis(t)
	ctx := context.Background()
	cache := NewCache(client, time.Minute)

	type entry struct {
		Currency string `json:"currency"`
		Balance  string `json:"balance"`
	}
	key := WalletsKey("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, cache.Set(ctx, key, []entry{{Currency: "XAF", Balance: "1500.25"}}))
	assert.True(t, mr.TTL(key) > 0)

	var got []entry
	found, err := cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1500.25", got[0].Balance)

	require.NoError(t, cache.Delete(ctx, key))
	found, err = cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_NilIsNoOp(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	assert.Nil(t, cache)

	ctx := context.Background()
	assert.NoError(t, cache.Set(ctx, "k", 1))
	found, err := cache.Get(ctx, "k", new(int))
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, "k"))
}

func TestAcquireLock(t *testing.T) {
	mr, client := setupMiniredis(t)
	ctx := context.Background()

	release, err := AcquireLock(ctx, client, "bootstrap:afrikpay", time.Minute, 0)
	require.NoError(t, err)
	assert.True(t, mr.Exists("bootstrap:afrikpay"))

	_, err = AcquireLock(ctx, client, "bootstrap:afrikpay", time.Minute, 150*time.Millisecond)
	assert.ErrorIs(t, err, ErrLockHeld)

	release()
	assert.False(t, mr.Exists("bootstrap:afrikpay"))

	again, err := AcquireLock(ctx, client, "bootstrap:afrikpay", time.Minute, 0)
	require.NoError(t, err)
	again()
}

func TestAcquireLock_ReleaseKeepsForeignLock(t *testing.T) {
	mr, client := setupMiniredis(t)
	ctx := context.Background()

	release, err := AcquireLock(ctx, client, "lock", time.Second, 0)
	require.NoError(t, err)

	// Our lock expires and another process takes it
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("lock", "someone-else"))

	release()
	value, err := mr.Get("lock")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT("temporal-worker", []string{ScopeWrite}, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "temporal-worker", claims.Subject)
	assert.True(t, claims.HasScope(ScopeWrite))
	assert.False(t, claims.HasScope("admin"))

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	token, err := GenerateJWT("svc", nil, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}
