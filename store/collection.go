package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/keydesk/keydesk/logger"
)

// ListFetcher loads a whole, unpaginated collection.
type ListFetcher[T any] func(ctx context.Context) ([]T, error)

// CollectionStore caches an unbounded list (e.g. all inactive keys) for a
// fixed freshness window.
type CollectionStore[T any] struct {
	resource string
	fetch    ListFetcher[T]
	logger   logger.Logger
	metrics  *Metrics
	ttl      time.Duration
	now      func() time.Time

	mu         sync.Mutex
	records    []T
	fetchedAt  time.Time
	generation uint64
	inflight   int
}

func NewCollection[T any](resource string, fetch ListFetcher[T], opts ...Option) *CollectionStore[T] {
	o := applyOptions(opts)
	return &CollectionStore[T]{
		resource: resource,
		fetch:    fetch,
		logger:   logger.WithKV(o.logger.WithPrefix("[store]"), "resource", resource),
		metrics:  o.metrics,
		ttl:      o.collectionTTL,
		now:      o.now,
	}
}

func (s *CollectionStore[T]) Resource() string {
	return s.resource
}

// FetchAll returns the cached list while it is fresh, otherwise fetches it
// again. forceRefresh always fetches.
func (s *CollectionStore[T]) FetchAll(ctx context.Context, forceRefresh bool) ([]T, error) {
	s.mu.Lock()
	now := s.now()
	if !forceRefresh && !s.fetchedAt.IsZero() && now.Sub(s.fetchedAt) < s.ttl {
		records := slices.Clone(s.records)
		s.mu.Unlock()
		s.metrics.hit(s.resource)
		s.logger.Debug("cache hit, fetched %s ago", now.Sub(s.fetchedAt))
		return records, nil
	}
	gen := s.generation
	s.inflight++
	s.mu.Unlock()

	s.metrics.miss(s.resource)
	records, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.metrics.fetchError(s.resource)
		return nil, err
	}
	if gen != s.generation {
		s.metrics.staleResponse(s.resource)
		return records, nil
	}
	s.records = slices.Clone(records)
	s.fetchedAt = now
	return records, nil
}

// Invalidate drops the cached list and its timestamp.
func (s *CollectionStore[T]) Invalidate(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.fetchedAt = time.Time{}
	s.generation++
	s.metrics.invalidated(s.resource)
}

// LastFetch returns when the list was last fetched, zero if never.
func (s *CollectionStore[T]) LastFetch() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchedAt
}

func (s *CollectionStore[T]) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}
