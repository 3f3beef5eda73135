package config

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/keydesk/keydesk/cache"
	"github.com/keydesk/keydesk/store"
	"github.com/redis/go-redis/v9"
)

// Bounds of the in-process tier kept in front of redis.
const (
	HotPageTTL   = 2 * time.Minute
	HotPageLimit = 32
)

// OpenCache builds the page cache backend. Every backend lives only as long as
// the process: sqlite runs in memory and redis keys live under a fresh
// per-session prefix with a bounded TTL and are dropped on Close. Redis sits
// behind an in-process tier that keeps only recently read pages.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	opts := []cache.Option{cache.WithExpires(store.DefaultPageTTL)}
	switch c.CacheBackend {
	case BackendSQLite:
		return cache.NewSQLite(ctx, ":memory:", opts...)
	case BackendRedis:
		ropts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "redis_url"), ErrInvalidConfig)
		}
		client := redis.NewClient(ropts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, errors.Wrap(err, "error connecting to redis")
		}
		remote := &sessionRedis{
			Cache:  cache.NewRedis(client, opts...),
			client: client,
		}
		return cache.NewTiered(
			cache.Tier{Cache: cache.NewInMemory(ctx, cache.WithExpires(HotPageTTL), cache.WithMaxEntries(HotPageLimit)), MaxTTL: HotPageTTL},
			cache.Tier{Cache: remote},
		), nil
	default:
		return cache.NewInMemory(ctx, opts...), nil
	}
}

// sessionRedis owns its client and closes it with the cache.
type sessionRedis struct {
	cache.Cache
	client *redis.Client
}

func (r *sessionRedis) Close() error {
	return errors.CombineErrors(r.Cache.Close(), r.client.Close())
}
