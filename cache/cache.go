package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache is a key/value store with per-entry TTL. Stores in this module keep their
// fetched pages in a Cache so the backend can be swapped without touching them.
type Cache interface {
	// Get retrieves a value. In-memory backends return the stored value as-is,
	// serialized backends return msgpack encoded []byte.
	Get(ctx context.Context, key string) (bool, any, error)
	// Set stores a value with a TTL. If expires <= 0 the configured default TTL is used.
	Set(ctx context.Context, key string, val any, expires time.Duration) error
	// Hits returns the number of times a key has been read since it was last set.
	Hits(ctx context.Context, key string) (bool, int)
	// Expire removes a key.
	Expire(ctx context.Context, key string) (bool, error)
	// Close shuts down the cache.
	Close() error
}

// Get retrieves a typed value from the cache.
// For in-memory caches, it performs a direct type assertion.
// For serialized caches (SQLite, Redis), it deserializes from []byte using msgpack.
func Get[T any](ctx context.Context, c Cache, key string) (bool, T, error) {
	var zero T
	found, val, err := c.Get(ctx, key)
	if !found || err != nil {
		return false, zero, err
	}
	if typed, ok := val.(T); ok {
		return true, typed, nil
	}
	if data, ok := val.([]byte); ok {
		var result T
		if err := msgpack.Unmarshal(data, &result); err != nil {
			return false, zero, errors.Wrap(err, "cache: failed to unmarshal value")
		}
		return true, result, nil
	}
	return false, zero, errors.Newf("cache: cannot convert value of type %T to %T", val, zero)
}

// DefaultExpires is the TTL used when Set is called without one.
const DefaultExpires = 5 * time.Minute

// DefaultQueryTimeout is the per-operation timeout for cache backends that
// perform I/O (SQLite, Redis).
const DefaultQueryTimeout = 5 * time.Second

// Clock returns the current time. Tests inject their own to move time forward.
type Clock func() time.Time

type config struct {
	defaultExpires time.Duration
	queryTimeout   time.Duration
	expiryCheck    time.Duration
	prefix         string
	maxEntries     int
	now            Clock
}

// Option configures a Cache implementation.
type Option func(*config)

func defaultConfig() config {
	return config{
		defaultExpires: DefaultExpires,
		queryTimeout:   DefaultQueryTimeout,
		expiryCheck:    time.Minute,
		now:            time.Now,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithExpires sets the default TTL for cached values.
func WithExpires(d time.Duration) Option {
	return func(c *config) { c.defaultExpires = d }
}

// WithQueryTimeout sets the per-operation timeout for I/O-backed caches.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}

// WithExpiryCheck sets the interval for background expired entry cleanup.
// Applies to the InMemory and SQLite backends.
func WithExpiryCheck(d time.Duration) Option {
	return func(c *config) { c.expiryCheck = d }
}

// WithMaxEntries bounds the InMemory backend. When full, the entry closest to
// expiry is dropped to make room. Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *config) { c.maxEntries = n }
}

// WithPrefix sets the key prefix used to namespace keys in the Redis backend.
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}

// WithClock overrides the time source of the InMemory and SQLite backends.
func WithClock(now Clock) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
