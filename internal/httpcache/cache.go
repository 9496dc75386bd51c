package httpcache

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avelia/catalog-service/pkg/cache"
	"github.com/avelia/catalog-service/pkg/logger"
)

const (
	keyPrefix    = "cache:"
	tagKeyPrefix = "cache:tags:"
)

// Entry is the stored envelope. Expiry is checked at read time in addition to
// the store's own TTL, guarding against clock or TTL-propagation skew.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	TTL       time.Duration   `json:"ttl"`
}

// Service is a response cache keyed by request path + sorted query string,
// with tag-based bulk invalidation. Every operation fails open: when the
// store is unreachable callers see a miss, never an error.
type Service struct {
	cache  *cache.RedisClient
	logger logger.ZapLogger
	ttl    time.Duration
}

func NewService(c *cache.RedisClient, log logger.ZapLogger, defaultTTL time.Duration) *Service {
	return &Service{
		cache:  c,
		logger: log,
		ttl:    defaultTTL,
	}
}

// Key derives the cache key from path and query; the query is sorted so
// parameter order does not fragment the cache.
func Key(path string, query url.Values) string {
	if len(query) == 0 {
		return keyPrefix + path
	}

	params := make([]string, 0, len(query))
	for name, values := range query {
		for _, v := range values {
			params = append(params, name+"="+v)
		}
	}
	sort.Strings(params)
	return keyPrefix + path + "?" + strings.Join(params, "&")
}

func tagKey(tag string) string {
	return tagKeyPrefix + tag
}

// Get returns the cached entry for key, or nil on miss, expiry, or store
// trouble. Entries found expired are deleted on the spot.
func (s *Service) Get(ctx context.Context, key string) *Entry {
	val, err := s.cache.Client.Get(ctx, key).Result()
	if err != nil {
		return nil
	}

	var entry Entry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		s.logger.Warn("cache entry corrupt, dropping", zap.String("key", key), zap.Error(err))
		s.cache.Client.Del(ctx, key)
		return nil
	}

	if time.Since(entry.Timestamp) > entry.TTL {
		s.cache.Client.Del(ctx, key)
		return nil
	}
	return &entry
}

// Set stores data under key and registers the key in every tag's index set.
func (s *Service) Set(ctx context.Context, key string, data json.RawMessage, ttl time.Duration, tags []string) {
	if ttl <= 0 {
		ttl = s.ttl
	}

	entry := Entry{Data: data, Timestamp: time.Now(), TTL: ttl}
	raw, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("cache entry marshal failed", zap.Error(err))
		return
	}

	if err := s.cache.Client.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.logger.Warn("cache set failed", zap.Error(err))
		return
	}

	for _, tag := range tags {
		tk := tagKey(tag)
		if err := s.cache.Client.SAdd(ctx, tk, key).Err(); err != nil {
			s.logger.Warn("cache tag index failed", zap.String("tag", tag), zap.Error(err))
			continue
		}
		s.cache.Client.Expire(ctx, tk, ttl)
	}
}

func (s *Service) Delete(ctx context.Context, key string) {
	if err := s.cache.Client.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("cache delete failed", zap.Error(err))
	}
}

// InvalidateByTags deletes every key associated with any of the tags, plus
// the tag index entries themselves.
func (s *Service) InvalidateByTags(ctx context.Context, tags []string) {
	for _, tag := range tags {
		tk := tagKey(tag)
		keys, err := s.cache.Client.SMembers(ctx, tk).Result()
		if err != nil {
			s.logger.Warn("cache tag lookup failed", zap.String("tag", tag), zap.Error(err))
			continue
		}
		if len(keys) > 0 {
			s.cache.Client.Del(ctx, keys...)
		}
		s.cache.Client.Del(ctx, tk)
	}
}

// Clear deletes all cache-namespaced keys unconditionally.
func (s *Service) Clear(ctx context.Context) {
	var cursor uint64
	for {
		keys, next, err := s.cache.Client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			s.logger.Warn("cache clear scan failed", zap.Error(err))
			return
		}
		if len(keys) > 0 {
			s.cache.Client.Del(ctx, keys...)
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
