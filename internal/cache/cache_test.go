package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientBehavesLikeMiss(t *testing.T) {
	ctx := context.Background()
	c := New("", "", 0)
	assert.Nil(t, c)

	assert.NoError(t, c.Ping(ctx))
	c.Set(ctx, "k", []byte("v"), time.Minute)
	assert.False(t, c.SetIfAbsent(ctx, "k", []byte("v"), time.Minute))

	data, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)

	var dst map[string]string
	assert.False(t, c.GetJSON(ctx, "k", &dst))
	c.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute)
	c.Delete(ctx, "k")
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisFailsSafe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Nothing listens on port 1.
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	assert.Error(t, c.Ping(ctx))
	c.Set(ctx, "k", []byte("v"), time.Minute)
	data, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func newTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	require.NoError(t, c.Ping(ctx))

	c.Set(ctx, "k", []byte("v"), time.Minute)
	data, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	c.Delete(ctx, "k")
	assert.False(t, mr.Exists("k"))

	c.SetJSON(ctx, "j", map[string]string{"id": "P-1001"}, time.Minute)
	var dst map[string]string
	require.True(t, c.GetJSON(ctx, "j", &dst))
	assert.Equal(t, "P-1001", dst["id"])
}

func TestClientExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	c.Set(ctx, "k", []byte("v"), time.Minute)
	mr.FastForward(2 * time.Minute)

	data, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSetIfAbsent(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRedis(t)

	assert.True(t, c.SetJSONIfAbsent(ctx, "k", "first", time.Minute))
	assert.False(t, c.SetJSONIfAbsent(ctx, "k", "second", time.Minute))

	var got string
	require.True(t, c.GetJSON(ctx, "k", &got))
	assert.Equal(t, "first", got)
}
