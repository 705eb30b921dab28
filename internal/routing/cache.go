package routing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend-fieldops/internal/geo"
	"backend-fieldops/internal/logger"

	"github.com/redis/go-redis/v9"
)

// CachedRouter memoizes successful legs in Redis, keyed by both endpoints
// rounded to 5 decimals. Failed legs are never stored.
type CachedRouter struct {
	next  Router
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedRouter(next Router, redisClient *redis.Client, ttl time.Duration) *CachedRouter {
	return &CachedRouter{next: next, redis: redisClient, ttl: ttl}
}

func (c *CachedRouter) LegDistance(ctx context.Context, origin, dest geo.Coordinate) (float64, error) {
	key := cacheKey(origin, dest)
	log := logger.Ctx(ctx)

	km, err := c.redis.Get(ctx, key).Float64()
	switch {
	case err == nil:
		return km, nil
	case !errors.Is(err, redis.Nil):
		log.Warn("leg cache read failed", logger.String("key", key), logger.Err(err))
	}

	km, err = c.next.LegDistance(ctx, origin, dest)
	if err != nil {
		return 0, err
	}
	if err := c.redis.Set(ctx, key, km, c.ttl).Err(); err != nil {
		log.Warn("leg cache write failed", logger.String("key", key), logger.Err(err))
	}
	return km, nil
}

func cacheKey(origin, dest geo.Coordinate) string {
	return fmt.Sprintf("routing:leg:%s->%s", origin.Rounded(), dest.Rounded())
}
