package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmcdole/kickboard/internal/domain"
)

// jsonBackend is the subset of Redis used by StatusCache
type jsonBackend interface {
	getJSON(ctx context.Context, key string, dst any) error
	setJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// StatusCache wraps a ChannelFetcher and shares successful results through
// Redis so several dashboards polling the same roster hit the upstream once
// per TTL. Error results are never cached.
type StatusCache struct {
	inner   domain.ChannelFetcher
	backend jsonBackend
	ttl     time.Duration
	logger  *slog.Logger
}

// NewStatusCache creates a caching decorator around inner
func NewStatusCache(inner domain.ChannelFetcher, r *Redis, ttl time.Duration, logger *slog.Logger) *StatusCache {
	return newStatusCache(inner, r, ttl, logger)
}

func newStatusCache(inner domain.ChannelFetcher, backend jsonBackend, ttl time.Duration, logger *slog.Logger) *StatusCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusCache{inner: inner, backend: backend, ttl: ttl, logger: logger}
}

func statusKey(username string) string {
	return keyPrefix + ":status:" + strings.ToLower(username)
}

// FetchChannel serves a cached record when present, otherwise fetches and caches it
func (c *StatusCache) FetchChannel(ctx context.Context, username string) domain.Channel {
	key := statusKey(username)

	var cached domain.Channel
	err := c.backend.getJSON(ctx, key, &cached)
	if err == nil {
		return cached
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Debug("status cache read failed", "id", username, "error", err)
	}

	return c.FetchFresh(ctx, username)
}

// FetchFresh bypasses the cached value and refreshes it on success
func (c *StatusCache) FetchFresh(ctx context.Context, username string) domain.Channel {
	ch := c.inner.FetchChannel(ctx, username)
	if ch.Error {
		return ch
	}
	if err := c.backend.setJSON(ctx, statusKey(username), ch, c.ttl); err != nil {
		c.logger.Debug("status cache write failed", "id", username, "error", err)
	}
	return ch
}
