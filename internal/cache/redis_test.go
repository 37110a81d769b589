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

type summary struct {
	ID         string `json:"id"`
	TotalStock int64  `json:"totalStock"`
}

func newTestCache(t *testing.T) (*RedisSummaryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSummaryCache(client, time.Minute), mr
}

func TestRedisSummaryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	var got []summary
	hit, err := c.Get(ctx, "org-1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := []summary{{ID: "p1", TotalStock: 5}}
	require.NoError(t, c.Set(ctx, "org-1", want))
	assert.True(t, mr.Exists(SummaryKey("org-1")))
	assert.Equal(t, time.Minute, mr.TTL(SummaryKey("org-1")))

	hit, err = c.Get(ctx, "org-1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)

	hit, err = c.Get(ctx, "org-2", &got)
	require.NoError(t, err)
	assert.False(t, hit, "tenants never share entries")
}

func TestRedisSummaryCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "org-1", []summary{{ID: "p1"}}))
	require.NoError(t, c.Set(ctx, "org-2", []summary{{ID: "p2"}}))
	require.NoError(t, c.Invalidate(ctx, "org-1"))

	assert.False(t, mr.Exists(SummaryKey("org-1")))
	assert.True(t, mr.Exists(SummaryKey("org-2")))
}

func TestRedisSummaryCacheCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(SummaryKey("org-1"), "{not json"))

	var got []summary
	hit, err := c.Get(ctx, "org-1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists(SummaryKey("org-1")))
}

func TestRedisSummaryCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisSummaryCache(client, time.Minute)
	mr.Close()

	var got []summary
	_, err = c.Get(ctx, "org-1", &got)
	assert.Error(t, err)
}
