package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Versioned {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, "reports", time.Minute)
}

func TestFetchJSONCachesUntilBump(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]int{"calls": calls}, nil
	}

	key, err := c.BuildKey(ctx, "dashboard")
	require.NoError(t, err)
	require.Equal(t, "reports:dashboard:1", key)

	var out map[string]int
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 1, out["calls"])
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 1, calls)

	require.NoError(t, c.Bump(ctx))
	key, err = c.BuildKey(ctx, "dashboard")
	require.NoError(t, err)
	require.Equal(t, "reports:dashboard:2", key)
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 2, out["calls"])
}

func TestFetchJSONWithoutClientCallsLoader(t *testing.T) {
	c := NewVersioned(nil, "reports", time.Minute)
	ctx := context.Background()
	key, err := c.BuildKey(ctx, "summary")
	require.NoError(t, err)
	require.Equal(t, "reports:summary", key)

	var out []string
	require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
		return []string{"a"}, nil
	}))
	require.Equal(t, []string{"a"}, out)
}

func TestFetchJSONPropagatesLoaderError(t *testing.T) {
	c := newTestCache(t)
	boom := errors.New("boom")
	var out any
	err := c.FetchJSON(context.Background(), "reports:x:1", &out, func(context.Context) (any, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestFetchJSONFallsBackToLoaderWhenRedisFails(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := NewVersioned(client, "reports", time.Minute)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "dashboard")
	require.NoError(t, err)

	mr.SetError("ERR server unavailable")
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]int{"revenue": 15000}, nil
	}

	var out map[string]int
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 15000, out["revenue"])

	down, err := c.BuildKey(ctx, "dashboard")
	require.NoError(t, err)
	require.Empty(t, down)
	out = nil
	require.NoError(t, c.FetchJSON(ctx, down, &out, loader))
	require.Equal(t, 15000, out["revenue"])
	require.Equal(t, 2, calls)

	mr.SetError("")
	require.False(t, mr.Exists(key))
}

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = New(context.Background(), "")
	require.Error(t, err)

	addr := mr.Addr()
	mr.Close()
	_, err = New(context.Background(), addr)
	require.Error(t, err)
}
