package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionStore(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, 7, map[string]any{"email": "a@example.com"}, time.Hour))

	sess, err := store.GetSession(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", sess["email"])
	assert.Equal(t, time.Hour, mr.TTL(sessionKey(7)))

	require.NoError(t, store.DeleteSession(ctx, 7))
	_, err = store.GetSession(ctx, 7)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSessionStore_Blacklist(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	revoked, err := store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.AddToBlacklist(ctx, "token-a", time.Minute))
	revoked, err = store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	// 已过期的token不写入
	require.NoError(t, store.AddToBlacklist(ctx, "token-b", 0))
	assert.False(t, mr.Exists(blacklistKey("token-b")))
}

func TestVisitStore(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewVisitStore(client, 0)
	ctx := context.Background()

	n, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	for i := 1; i <= 3; i++ {
		n, err = store.Incr(ctx, "sid-1")
		require.NoError(t, err)
		assert.EqualValues(t, i, n)
	}
	assert.Equal(t, DefaultVisitTTL, mr.TTL(visitKey("sid-1")))

	other, err := store.Incr(ctx, "sid-2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, other)

	mr.FastForward(DefaultVisitTTL + time.Second)
	n, err = store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestRedisError(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewVisitStore(client, time.Minute)
	mr.Close()

	_, err := store.Incr(context.Background(), "sid")
	assert.Equal(t, apperrors.ErrCodeRedisError, apperrors.CodeOf(err))
}
