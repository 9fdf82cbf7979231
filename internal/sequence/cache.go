package sequence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "vaxscreen:protein:"

// Cache is a read-through decorator over a Fetcher that keeps resolved
// protein records in Redis. Cache faults degrade to the upstream fetch; they
// are logged, never surfaced. Searches pass through uncached.
type Cache struct {
	next   Fetcher
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ Fetcher = (*Cache)(nil)

// NewCache wraps next with a Redis record cache. A nil client disables
// caching and returns next unchanged.
func NewCache(next Fetcher, client *redis.Client, ttl time.Duration, logger *slog.Logger) Fetcher {
	if client == nil {
		return next
	}
	return &Cache{next: next, client: client, ttl: ttl, logger: logger}
}

// FetchByID serves from Redis when possible, otherwise fetches upstream and
// stores the result.
func (c *Cache) FetchByID(ctx context.Context, proteinID string) (*ProteinRecord, error) {
	key := cacheKeyPrefix + proteinID

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rec ProteinRecord
		if err := json.Unmarshal(raw, &rec); err == nil {
			return &rec, nil
		}
		// Corrupt entry; fall through to a fresh fetch that overwrites it.
		c.warn(ctx, "discarding corrupt cache entry", key, err)
	case !errors.Is(err, redis.Nil):
		c.warn(ctx, "cache read failed", key, err)
	}

	rec, err := c.next.FetchByID(ctx, proteinID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(rec); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.warn(ctx, "cache write failed", key, err)
		}
	}
	return rec, nil
}

// Search passes through to the upstream fetcher.
func (c *Cache) Search(ctx context.Context, term string, max int) ([]ProteinRecord, error) {
	return c.next.Search(ctx, term, max)
}

func (c *Cache) warn(ctx context.Context, msg, key string, err error) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, fmt.Sprintf("sequence cache: %s", msg), "key", key, "error", err)
	}
}
