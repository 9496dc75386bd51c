package httpcache

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/avelia/catalog-service/pkg/cache"
	"github.com/avelia/catalog-service/pkg/logger"
)

func TestKey(t *testing.T) {
	t.Run("no query", func(t *testing.T) {
		assert.Equal(t, "cache:/api/v1/products", Key("/api/v1/products", url.Values{}))
	})

	t.Run("query order does not matter", func(t *testing.T) {
		a := url.Values{}
		a.Set("page", "2")
		a.Set("limit", "10")

		b := url.Values{}
		b.Set("limit", "10")
		b.Set("page", "2")

		assert.Equal(t, Key("/api/v1/products", a), Key("/api/v1/products", b))
		assert.Equal(t, "cache:/api/v1/products?limit=10&page=2", Key("/api/v1/products", a))
	})

	t.Run("repeated params are kept", func(t *testing.T) {
		q := url.Values{}
		q.Add("tag", "b")
		q.Add("tag", "a")
		assert.Equal(t, "cache:/p?tag=a&tag=b", Key("/p", q))
	})
}

func unreachableService() *Service {
	c := &cache.RedisClient{Client: redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})}
	return NewService(c, logger.NewNop(), time.Minute)
}

func TestFailOpen(t *testing.T) {
	svc := unreachableService()
	ctx := context.Background()

	t.Run("get returns a miss", func(t *testing.T) {
		assert.Nil(t, svc.Get(ctx, "cache:/x"))
	})

	t.Run("set is silently skipped", func(t *testing.T) {
		assert.NotPanics(t, func() {
			svc.Set(ctx, "cache:/x", json.RawMessage(`{"a":1}`), time.Minute, []string{"products"})
		})
	})

	t.Run("invalidate and clear do not error", func(t *testing.T) {
		assert.NotPanics(t, func() {
			svc.InvalidateByTags(ctx, []string{"products"})
			svc.Clear(ctx)
		})
	})
}

func TestEntryExpiryArithmetic(t *testing.T) {
	entry := &Entry{
		Data:      json.RawMessage(`{}`),
		Timestamp: time.Now().Add(-2 * time.Minute),
		TTL:       time.Minute,
	}
	assert.True(t, time.Since(entry.Timestamp) > entry.TTL)

	fresh := &Entry{Timestamp: time.Now(), TTL: time.Minute}
	assert.False(t, time.Since(fresh.Timestamp) > fresh.TTL)
}
