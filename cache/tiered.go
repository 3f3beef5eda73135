package cache

import (
	"context"
	"time"
)

// Tier is one level of a tiered cache. MaxTTL caps how long values live in
// the tier; zero keeps the TTL the caller asked for.
type Tier struct {
	Cache  Cache
	MaxTTL time.Duration
}

func (t Tier) ttl(expires time.Duration) time.Duration {
	if t.MaxTTL > 0 && (expires <= 0 || expires > t.MaxTTL) {
		return t.MaxTTL
	}
	return expires
}

type tieredCache struct {
	tiers []Tier
}

var _ Cache = (*tieredCache)(nil)

// NewTiered returns a Cache over tiers ordered fastest first. Get returns the
// first hit and copies it into the faster tiers that missed. Set and Expire
// apply to every tier. Panics without tiers.
func NewTiered(tiers ...Tier) Cache {
	if len(tiers) == 0 {
		panic("cache: NewTiered requires at least one tier")
	}
	return &tieredCache{tiers: tiers}
}

func (c *tieredCache) Get(ctx context.Context, key string) (bool, any, error) {
	for i, t := range c.tiers {
		found, val, err := t.Cache.Get(ctx, key)
		if err != nil {
			return false, nil, err
		}
		if !found {
			continue
		}
		for _, faster := range c.tiers[:i] {
			// a failed promotion only costs a slower read next time
			_ = faster.Cache.Set(ctx, key, val, faster.ttl(0))
		}
		return true, val, nil
	}
	return false, nil, nil
}

func (c *tieredCache) Set(ctx context.Context, key string, val any, expires time.Duration) error {
	var firstErr error
	for _, t := range c.tiers {
		if err := t.Cache.Set(ctx, key, val, t.ttl(expires)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *tieredCache) Hits(ctx context.Context, key string) (bool, int) {
	for _, t := range c.tiers {
		if found, hits := t.Cache.Hits(ctx, key); found {
			return true, hits
		}
	}
	return false, 0
}

func (c *tieredCache) Expire(ctx context.Context, key string) (bool, error) {
	anyFound := false
	for _, t := range c.tiers {
		found, err := t.Cache.Expire(ctx, key)
		if err != nil {
			return anyFound, err
		}
		anyFound = anyFound || found
	}
	return anyFound, nil
}

func (c *tieredCache) Close() error {
	var firstErr error
	for _, t := range c.tiers {
		if err := t.Cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
