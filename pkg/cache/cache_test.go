package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/sourcedocs/pkg/observability"
)

func newTestMetrics() *observability.Metrics {
	return observability.NewMetrics(prometheus.NewRegistry())
}

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	metrics := newTestMetrics()
	c := NewMemory(2, time.Minute, metrics)

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "a", []byte("page a")))
	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("page a"), got)

	require.NoError(t, c.Delete(ctx, "a"))
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.InDelta(t, 1.0/3.0, stats.HitRate, 0.0001)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues("memory")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues("memory")))
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(2, time.Minute, nil)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "c", []byte("3")))

	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), c.Stats().ItemCount)

	c.Purge()
	assert.Equal(t, int64(0), c.Stats().ItemCount)
}

func TestMemory_InvalidKey(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(0, 0, nil)

	_, err := c.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidCacheKey)
	assert.ErrorIs(t, c.Set(ctx, "", nil), ErrInvalidCacheKey)
	assert.ErrorIs(t, c.Delete(ctx, ""), ErrInvalidCacheKey)
}

func setupRedis(t *testing.T, metrics *observability.Metrics) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedis(RedisConfig{URL: "redis://" + mr.Addr(), TTL: time.Hour}, metrics)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestRedis_GetSet(t *testing.T) {
	ctx := context.Background()
	metrics := newTestMetrics()
	c, mr := setupRedis(t, metrics)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("# Foo\n")))
	assert.True(t, mr.Exists("sourcedocs:page:k"))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "# Foo\n", string(got))

	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("sourcedocs:page:k"))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RedisCommandsTotal.WithLabelValues("get", "hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RedisCommandsTotal.WithLabelValues("get", "miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RedisCommandsTotal.WithLabelValues("set", "ok")))
}

func TestRedis_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := setupRedis(t, nil)

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	assert.Equal(t, time.Hour, mr.TTL("sourcedocs:page:k"))

	mr.FastForward(61 * time.Minute)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedis_Errors(t *testing.T) {
	_, err := NewRedis(RedisConfig{URL: "invalid://url"}, nil)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedis(RedisConfig{URL: "redis://" + addr}, nil)
	assert.ErrorIs(t, err, ErrCacheUnavailable)
}

func TestRedis_ServerDown(t *testing.T) {
	ctx := context.Background()
	c, mr := setupRedis(t, nil)
	mr.Close()

	_, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, c.Set(ctx, "k", []byte("v")))
}

func TestTiered(t *testing.T) {
	ctx := context.Background()
	local := NewMemory(10, time.Minute, nil)
	remote, mr := setupRedis(t, nil)
	tiered := NewTiered(local, remote)

	require.NoError(t, mr.Set("sourcedocs:page:shared", "from redis"))

	got, err := tiered.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, "from redis", string(got))

	got, err = local.Get(ctx, "shared")
	require.NoError(t, err, "remote hit back-fills the local tier")
	assert.Equal(t, "from redis", string(got))

	require.NoError(t, tiered.Set(ctx, "new", []byte("v")))
	assert.True(t, mr.Exists("sourcedocs:page:new"))

	_, err = tiered.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)

	mr.Close()
	_, err = tiered.Get(ctx, "other")
	assert.ErrorIs(t, err, ErrCacheMiss, "remote outage reads as a miss")
}

func TestTiered_LocalOnly(t *testing.T) {
	ctx := context.Background()
	tiered := NewTiered(NewMemory(10, time.Minute, nil), nil)

	require.NoError(t, tiered.Set(ctx, "k", []byte("v")))
	got, err := tiered.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}
