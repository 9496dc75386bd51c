package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/avelia/catalog-service/pkg/cache"
	"github.com/avelia/catalog-service/pkg/logger"
)

func TestWindowIndex(t *testing.T) {
	windowMs := int64(60000)

	t.Run("same window for timestamps within it", func(t *testing.T) {
		a := time.UnixMilli(120000)
		b := time.UnixMilli(179999)
		assert.Equal(t, windowIndex(a, windowMs), windowIndex(b, windowMs))
	})

	t.Run("boundary starts a new window", func(t *testing.T) {
		last := time.UnixMilli(179999)
		next := time.UnixMilli(180000)
		assert.Equal(t, windowIndex(last, windowMs)+1, windowIndex(next, windowMs))
	})

	t.Run("floor division", func(t *testing.T) {
		assert.Equal(t, int64(2), windowIndex(time.UnixMilli(120000), windowMs))
		assert.Equal(t, int64(2), windowIndex(time.UnixMilli(120001), windowMs))
	})
}

func TestResetAtIsStartOfNextWindow(t *testing.T) {
	windowMs := int64(60000)
	now := time.UnixMilli(125000)
	window := windowIndex(now, windowMs)

	reset := resetAt(window, windowMs)
	assert.Equal(t, int64(180000), reset.UnixMilli())
	assert.True(t, reset.After(now))
}

func TestCounterKey(t *testing.T) {
	assert.Equal(t, "rate_limit:ip:10.0.0.1:42", counterKey("ip:10.0.0.1", 42))
}

func TestResultIsAllowed(t *testing.T) {
	assert.True(t, (&Result{Limit: 10, Current: 10}).IsAllowed())
	assert.False(t, (&Result{Limit: 10, Current: 11}).IsAllowed())
}

func TestCheckFailsOpenWhenStoreUnreachable(t *testing.T) {
	unreachable := &cache.RedisClient{Client: redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})}

	limiter := NewLimiter(unreachable, logger.NewNop(), Config{WindowMs: 60000, MaxRequests: 5})
	limiter.now = func() time.Time { return time.UnixMilli(120000) }

	result := limiter.Check(context.Background(), "ip:10.0.0.1")

	assert.True(t, result.IsAllowed())
	assert.Equal(t, 5, result.Limit)
	assert.Equal(t, 0, result.Current)
	assert.Equal(t, 5, result.Remaining)
	assert.Equal(t, int64(180000), result.ResetTime.UnixMilli())
}
