package store

import (
	"time"

	"github.com/keydesk/keydesk/logger"
)

// DefaultCollectionTTL is the freshness window of whole-collection lists.
const DefaultCollectionTTL = 5 * time.Minute

// DefaultPageTTL bounds how long a page may live in the cache backend. Pages
// have no freshness window of their own; this only keeps a long session from
// growing the backend without bound.
const DefaultPageTTL = 12 * time.Hour

// DefaultLoadTimeout bounds a page request shared by concurrent callers.
const DefaultLoadTimeout = 30 * time.Second

type options struct {
	logger        logger.Logger
	metrics       *Metrics
	pageTTL       time.Duration
	collectionTTL time.Duration
	loadTimeout   time.Duration
	now           func() time.Time
}

// Option configures a store.
type Option func(*options)

func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics reports hits, misses and invalidations to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithPageTTL sets the backend TTL of cached pages.
func WithPageTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pageTTL = d
		}
	}
}

// WithCollectionTTL sets the freshness window of whole-collection stores.
func WithCollectionTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.collectionTTL = d
		}
	}
}

// WithLoadTimeout bounds a shared page request. It keeps running when the
// caller that started it goes away, so it needs its own deadline.
func WithLoadTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.loadTimeout = d
		}
	}
}

// WithClock overrides the time source used for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		pageTTL:       DefaultPageTTL,
		collectionTTL: DefaultCollectionTTL,
		loadTimeout:   DefaultLoadTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewConsoleLogger(logger.LevelNone)
	}
	if o.metrics == nil {
		o.metrics, _ = NewMetrics(nil)
	}
	return o
}
