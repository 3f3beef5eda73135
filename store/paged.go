package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/keydesk/keydesk/cache"
	"github.com/keydesk/keydesk/logger"
	"github.com/keydesk/keydesk/model"
	"golang.org/x/sync/singleflight"
)

// ErrInvalidPage is returned when pageSize is not positive or offset is negative.
var ErrInvalidPage = errors.New("invalid page request")

// Fetcher loads one page of a resource from the backend.
type Fetcher[T any] func(ctx context.Context, q model.QueryParams) (model.Paginated[T], error)

// Page is the result of a paged read.
type Page[T any] struct {
	Records      []T
	TotalRecords int
	TotalPages   int
	PageNumber   int
}

// cachedPage is what lands in the cache backend.
type cachedPage[T any] struct {
	Records []T
}

// PagedStore caches the pages of one resource keyed by page number. Pages
// stay valid until Invalidate is called or the page size or server search
// changes. Totals always come from the last applied response.
type PagedStore[T any] struct {
	resource string
	fetch    Fetcher[T]
	cache    cache.Cache
	logger   logger.Logger
	metrics  *Metrics
	pageTTL  time.Duration
	timeout  time.Duration
	group    singleflight.Group

	mu           sync.Mutex
	index        map[int]struct{}
	applied      map[int]uint64
	pageSize     int
	search       string
	searchField  string
	totalRecords int
	totalPages   int
	currentPage  int
	generation   uint64
	seq          uint64
	inflight     int
}

// NewPaged returns an empty store for resource backed by c.
func NewPaged[T any](resource string, fetch Fetcher[T], c cache.Cache, opts ...Option) *PagedStore[T] {
	o := applyOptions(opts)
	return &PagedStore[T]{
		resource: resource,
		fetch:    fetch,
		cache:    c,
		logger:   logger.WithKV(o.logger.WithPrefix("[store]"), "resource", resource),
		metrics:  o.metrics,
		pageTTL:  o.pageTTL,
		timeout:  o.loadTimeout,
		index:    make(map[int]struct{}),
		applied:  make(map[int]uint64),
	}
}

func (s *PagedStore[T]) Resource() string {
	return s.resource
}

func (s *PagedStore[T]) pageKey(pageSize, pageNumber int) string {
	q := xxhash.Sum64String(s.search + "\x00" + s.searchField)
	return fmt.Sprintf("%s:ps=%d:p=%d:q=%016x", s.resource, pageSize, pageNumber, q)
}

// resetLocked forgets every cached page and fences in-flight requests.
func (s *PagedStore[T]) resetLocked(ctx context.Context) {
	for n := range s.index {
		if _, err := s.cache.Expire(ctx, s.pageKey(s.pageSize, n)); err != nil {
			s.logger.Warn("error expiring page %d: %s", n, err)
		}
	}
	clear(s.index)
	clear(s.applied)
	s.generation++
	s.metrics.setPages(s.resource, 0)
}

// SetSearch changes the server-side search sent with every page request.
// Pages fetched under a different search are dropped.
func (s *PagedStore[T]) SetSearch(ctx context.Context, search, field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if search == s.search && field == s.searchField {
		return
	}
	s.resetLocked(ctx)
	s.search, s.searchField = search, field
}

// Fetch returns the page starting at offset. A cached page is returned without
// a network call unless forceRefresh is set. On error the store is left as it was.
func (s *PagedStore[T]) Fetch(ctx context.Context, pageSize, offset int, forceRefresh bool) (Page[T], error) {
	if pageSize <= 0 || offset < 0 {
		return Page[T]{}, errors.Wrapf(ErrInvalidPage, "pageSize=%d offset=%d", pageSize, offset)
	}
	pageNumber := offset/pageSize + 1

	s.mu.Lock()
	if pageSize != s.pageSize {
		if s.pageSize != 0 {
			s.logger.Debug("page size changed from %d to %d, dropping cached pages", s.pageSize, pageSize)
		}
		s.resetLocked(ctx)
		s.pageSize = pageSize
	}
	key := s.pageKey(pageSize, pageNumber)
	_, indexed := s.index[pageNumber]
	inRange := pageNumber <= max(s.totalPages, 1)
	gen := s.generation
	s.mu.Unlock()

	if !forceRefresh && indexed && inRange {
		if page, ok := s.cached(ctx, key, pageNumber, gen); ok {
			return page, nil
		}
	}

	s.metrics.miss(s.resource)
	s.logger.Debug("cache miss for page %d (force=%t)", pageNumber, forceRefresh)
	if forceRefresh {
		return s.load(ctx, key, pageSize, offset, pageNumber)
	}
	// The shared request outlives any single caller; each caller stops
	// waiting on its own ctx.
	ch := s.group.DoChan(fmt.Sprintf("%s:g=%d", key, gen), func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.load(lctx, key, pageSize, offset, pageNumber)
	})
	select {
	case <-ctx.Done():
		return Page[T]{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Page[T]{}, res.Err
		}
		page := res.Val.(Page[T])
		page.Records = slices.Clone(page.Records)
		return page, nil
	}
}

func (s *PagedStore[T]) cached(ctx context.Context, key string, pageNumber int, gen uint64) (Page[T], bool) {
	found, cp, err := cache.Get[cachedPage[T]](ctx, s.cache, key)
	if err != nil {
		s.logger.Warn("error reading page %d from cache: %s", pageNumber, err)
		return Page[T]{}, false
	}
	if !found {
		return Page[T]{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return Page[T]{}, false
	}
	s.currentPage = pageNumber
	s.metrics.hit(s.resource)
	s.logger.Debug("cache hit for page %d", pageNumber)
	return Page[T]{
		Records:      slices.Clone(cp.Records),
		TotalRecords: s.totalRecords,
		TotalPages:   s.totalPages,
		PageNumber:   pageNumber,
	}, true
}

func (s *PagedStore[T]) load(ctx context.Context, key string, pageSize, offset, pageNumber int) (Page[T], error) {
	s.mu.Lock()
	s.seq++
	seq, gen := s.seq, s.generation
	q := model.QueryParams{Limit: pageSize, Offset: offset, Search: s.search, SearchField: s.searchField}
	s.inflight++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	resp, err := s.fetch(ctx, q)
	if err != nil {
		s.metrics.fetchError(s.resource)
		return Page[T]{}, err
	}

	totalPages := resp.Pages
	if totalPages <= 0 && resp.Total > 0 {
		totalPages = (resp.Total + pageSize - 1) / pageSize
	}
	page := Page[T]{
		Records:      resp.Data,
		TotalRecords: resp.Total,
		TotalPages:   totalPages,
		PageNumber:   pageNumber,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || seq < s.applied[pageNumber] {
		s.metrics.staleResponse(s.resource)
		s.logger.Debug("discarding stale response for page %d", pageNumber)
		return page, nil
	}
	if err := s.cache.Set(ctx, key, cachedPage[T]{Records: slices.Clone(resp.Data)}, s.pageTTL); err != nil {
		s.logger.Warn("error caching page %d: %s", pageNumber, err)
	} else {
		s.index[pageNumber] = struct{}{}
	}
	s.applied[pageNumber] = seq
	s.totalRecords = resp.Total
	s.totalPages = totalPages
	s.currentPage = pageNumber
	s.metrics.setPages(s.resource, len(s.index))
	return page, nil
}

// Invalidate drops every cached page. Totals are kept until the next fetch.
func (s *PagedStore[T]) Invalidate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(ctx)
	s.metrics.invalidated(s.resource)
	s.logger.Debug("invalidated")
}

// IsLoading reports whether a fetch is in flight.
func (s *PagedStore[T]) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

func (s *PagedStore[T]) TotalRecords() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalRecords
}

func (s *PagedStore[T]) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPages
}

func (s *PagedStore[T]) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

func (s *PagedStore[T]) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageSize
}

// CachedPages returns the sorted page numbers currently served from cache.
func (s *PagedStore[T]) CachedPages() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	pages := make([]int, 0, len(s.index))
	for n := range s.index {
		if n <= max(s.totalPages, 1) {
			pages = append(pages, n)
		}
	}
	slices.Sort(pages)
	return pages
}

// Refresh refetches the current page, bypassing the cache.
func (s *PagedStore[T]) Refresh(ctx context.Context) (Page[T], error) {
	s.mu.Lock()
	pageSize, current := s.pageSize, max(s.currentPage, 1)
	s.mu.Unlock()
	if pageSize == 0 {
		return Page[T]{}, errors.Wrap(ErrInvalidPage, "nothing fetched yet")
	}
	return s.Fetch(ctx, pageSize, (current-1)*pageSize, true)
}
