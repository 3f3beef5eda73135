package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	val     any
	expires time.Time
	hits    int
}

func (e *entry) expired(now time.Time) bool {
	return e.expires.Before(now)
}

type inMemoryCache struct {
	cfg     config
	mu      sync.Mutex
	entries map[string]*entry
	stop    context.CancelFunc
	done    chan struct{}
	closing sync.Once
}

var _ Cache = (*inMemoryCache)(nil)

// NewInMemory returns a Cache kept in process memory. Values are stored as-is,
// so callers must not mutate what they put in or get out. Expired entries are
// swept every WithExpiryCheck interval until Close or until parent is done.
func NewInMemory(parent context.Context, opts ...Option) Cache {
	ctx, stop := context.WithCancel(parent)
	c := &inMemoryCache{
		cfg:     applyOptions(opts),
		entries: make(map[string]*entry),
		stop:    stop,
		done:    make(chan struct{}),
	}
	go c.sweepLoop(ctx)
	return c
}

// lookup returns the live entry for key, dropping it if expired. Caller holds mu.
func (c *inMemoryCache) lookup(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if e.expired(c.cfg.now()) {
		delete(c.entries, key)
		return nil
	}
	return e
}

func (c *inMemoryCache) Get(_ context.Context, key string) (bool, any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.lookup(key)
	if e == nil {
		return false, nil, nil
	}
	e.hits++
	return true, e.val, nil
}

func (c *inMemoryCache) Hits(_ context.Context, key string) (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.lookup(key); e != nil {
		return true, e.hits
	}
	return false, 0
}

func (c *inMemoryCache) Set(_ context.Context, key string, val any, expires time.Duration) error {
	if expires <= 0 {
		expires = c.cfg.defaultExpires
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.makeRoom()
	}
	c.entries[key] = &entry{val: val, expires: c.cfg.now().Add(expires)}
	return nil
}

// makeRoom evicts until a new key fits under maxEntries. Caller holds mu.
func (c *inMemoryCache) makeRoom() {
	if c.cfg.maxEntries <= 0 {
		return
	}
	if len(c.entries) >= c.cfg.maxEntries {
		c.removeExpired()
	}
	for len(c.entries) >= c.cfg.maxEntries {
		var victim string
		var soonest time.Time
		for k, e := range c.entries {
			if victim == "" || e.expires.Before(soonest) {
				victim, soonest = k, e.expires
			}
		}
		delete(c.entries, victim)
	}
}

func (c *inMemoryCache) removeExpired() {
	now := c.cfg.now()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
}

func (c *inMemoryCache) Expire(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok, nil
}

func (c *inMemoryCache) Close() error {
	c.closing.Do(func() {
		c.stop()
		<-c.done
	})
	return nil
}

func (c *inMemoryCache) sweepLoop(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.cfg.expiryCheck)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			c.removeExpired()
			c.mu.Unlock()
		}
	}
}
