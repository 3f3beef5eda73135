package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	fieldValue = "v"
	fieldHits  = "h"
)

// redisSession keeps one session's entries under a shared prefix. Every key
// it writes is recorded in the index set so Close can drop them together.
type redisSession struct {
	client *redis.Client
	cfg    config
	prefix string
	index  string
}

var _ Cache = (*redisSession)(nil)

// NewRedis returns a Cache backed by Redis. Keys are namespaced under the
// WithPrefix prefix, or under a fresh "keydesk:<uuid>" session prefix when
// none is given. Close deletes every key the session wrote but leaves the
// client open; the caller owns it.
func NewRedis(client *redis.Client, opts ...Option) Cache {
	cfg := applyOptions(opts)
	prefix := cfg.prefix
	if prefix == "" {
		prefix = "keydesk:" + uuid.NewString()
	}
	return &redisSession{
		client: client,
		cfg:    cfg,
		prefix: prefix,
		index:  prefix + ":_keys",
	}
}

func (c *redisSession) key(k string) string {
	return c.prefix + ":" + k
}

func (c *redisSession) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.queryTimeout)
}

func (c *redisSession) ttl(expires time.Duration) time.Duration {
	if expires <= 0 {
		return c.cfg.defaultExpires
	}
	return expires
}

func (c *redisSession) Get(ctx context.Context, key string) (bool, any, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	k := c.key(key)
	data, err := c.client.HGet(ctx, k, fieldValue).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil, nil
	case err != nil:
		return false, nil, errors.Wrapf(err, "cache: redis get %s", key)
	}
	c.client.HIncrBy(ctx, k, fieldHits, 1) // hits are best effort
	return true, data, nil
}

func (c *redisSession) Set(ctx context.Context, key string, val any, expires time.Duration) error {
	data, err := msgpack.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "cache: encode %s", key)
	}
	ttl := c.ttl(expires)
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	k := c.key(key)
	_, err = c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, k)
		p.HSet(ctx, k, fieldValue, data, fieldHits, 0)
		p.Expire(ctx, k, ttl)
		p.SAdd(ctx, c.index, k)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "cache: redis set %s", key)
	}
	// the index outlives every entry it lists
	if cur := c.client.TTL(ctx, c.index).Val(); cur < ttl {
		if err := c.client.Expire(ctx, c.index, ttl).Err(); err != nil {
			return errors.Wrapf(err, "cache: redis index ttl")
		}
	}
	return nil
}

func (c *redisSession) Hits(ctx context.Context, key string) (bool, int) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	hits, err := c.client.HGet(ctx, c.key(key), fieldHits).Int()
	if err != nil {
		return false, 0
	}
	return true, hits
}

func (c *redisSession) Expire(ctx context.Context, key string) (bool, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	k := c.key(key)
	var del *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, k)
		p.SRem(ctx, c.index, k)
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "cache: redis expire %s", key)
	}
	return del.Val() > 0, nil
}

// Close drops every key written by this session.
func (c *redisSession) Close() error {
	ctx, cancel := c.withTimeout(context.Background())
	defer cancel()
	keys, err := c.client.SMembers(ctx, c.index).Result()
	if err != nil {
		return errors.Wrap(err, "cache: redis list session keys")
	}
	if err := c.client.Del(ctx, append(keys, c.index)...).Err(); err != nil {
		return errors.Wrap(err, "cache: redis drop session")
	}
	return nil
}
