package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client), mr
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	in := payload{Name: "docs", Count: 3}
	require.NoError(t, c.Set(ctx, "key", in, time.Minute))

	var out payload
	require.NoError(t, c.Get(ctx, "key", &out))
	assert.Equal(t, in, out)
}

func TestCache_GetMissing(t *testing.T) {
	c, _ := newTestCache(t)

	var out payload
	err := c.Get(context.Background(), "absent", &out)
	assert.Error(t, err)
}

func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", payload{Name: "x"}, time.Minute))
	require.NoError(t, c.Delete(ctx, "key"))

	var out payload
	assert.Error(t, c.Get(ctx, "key", &out))
}

func TestCache_TTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", payload{Name: "x"}, time.Second))
	mr.FastForward(2 * time.Second)

	var out payload
	assert.Error(t, c.Get(ctx, "key", &out))
}

func TestCache_Exists(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	ok, err := c.Exists(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "key", payload{}, time.Minute))
	ok, err = c.Exists(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
}
