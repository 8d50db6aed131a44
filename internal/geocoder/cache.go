package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/pkg/logger"
)

const cacheKeyPrefix = "geocode:"

// Cached remembers successful lookups in Redis. Misses and cache failures fall
// through to the wrapped geocoder; ErrNoResult is never cached.
type Cached struct {
	next   Geocoder
	client *redis.Client
	ttl    time.Duration
}

// NewCached wraps next with a Redis cache whose entries live for ttl.
func NewCached(next Geocoder, client *redis.Client, ttl time.Duration) *Cached {
	return &Cached{next: next, client: client, ttl: ttl}
}

// Geocode serves query from the cache when possible.
func (c *Cached) Geocode(ctx context.Context, query string) (*domain.Location, error) {
	key := cacheKey(query)
	log := logger.FromContext(ctx)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var loc domain.Location
		if err := json.Unmarshal(data, &loc); err == nil {
			return &loc, nil
		}
		log.WarnContext(ctx, "discarding unreadable geocode cache entry", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		log.WarnContext(ctx, "geocode cache read failed", slog.String("error", err.Error()))
	}

	loc, err := c.next.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(loc); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.WarnContext(ctx, "geocode cache write failed", slog.String("error", err.Error()))
		}
	}
	return loc, nil
}

func cacheKey(query string) string {
	return cacheKeyPrefix + strings.ToLower(strings.Join(strings.Fields(query), " "))
}
