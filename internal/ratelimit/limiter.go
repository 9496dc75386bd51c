package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/avelia/catalog-service/pkg/cache"
	"github.com/avelia/catalog-service/pkg/logger"
)

const keyPrefix = "rate_limit:"

type Config struct {
	WindowMs    int64
	MaxRequests int
}

type Result struct {
	Limit     int       `json:"limit"`
	Current   int       `json:"current"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

func (r *Result) IsAllowed() bool {
	return r.Current <= r.Limit
}

// Limiter counts requests per identifier in fixed, non-overlapping windows.
// Store trouble fails open: the request is treated as allowed with full
// remaining quota.
type Limiter struct {
	cache  *cache.RedisClient
	logger logger.ZapLogger
	cfg    Config
	now    func() time.Time
}

func NewLimiter(c *cache.RedisClient, log logger.ZapLogger, cfg Config) *Limiter {
	return &Limiter{
		cache:  c,
		logger: log,
		cfg:    cfg,
		now:    time.Now,
	}
}

// windowIndex is floor(now / windowMs); resetAt is the start of the next
// window.
func windowIndex(now time.Time, windowMs int64) int64 {
	return now.UnixMilli() / windowMs
}

func resetAt(window int64, windowMs int64) time.Time {
	return time.UnixMilli((window + 1) * windowMs)
}

func counterKey(identifier string, window int64) string {
	return fmt.Sprintf("%s%s:%d", keyPrefix, identifier, window)
}

func (l *Limiter) Check(ctx context.Context, identifier string) *Result {
	now := l.now()
	window := windowIndex(now, l.cfg.WindowMs)
	key := counterKey(identifier, window)

	current, err := l.cache.Client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("rate limit store unavailable, failing open", zap.Error(err))
		return &Result{
			Limit:     l.cfg.MaxRequests,
			Current:   0,
			Remaining: l.cfg.MaxRequests,
			ResetTime: resetAt(window, l.cfg.WindowMs),
		}
	}

	// First hit of the window owns setting the expiry.
	if current == 1 {
		l.cache.Client.Expire(ctx, key, time.Duration(l.cfg.WindowMs)*time.Millisecond)
	}

	remaining := l.cfg.MaxRequests - int(current)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Limit:     l.cfg.MaxRequests,
		Current:   int(current),
		Remaining: remaining,
		ResetTime: resetAt(window, l.cfg.WindowMs),
	}
}
