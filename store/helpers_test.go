package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/keydesk/keydesk/cache"
	"github.com/keydesk/keydesk/logger"
	"github.com/keydesk/keydesk/model"
)

// fakeKeys serves a fixed collection of keys page by page and counts calls.
type fakeKeys struct {
	mu        sync.Mutex
	keys      []model.Key
	calls     int
	queries   []model.QueryParams
	err       error
	omitPages bool
}

func newFakeKeys(n int) *fakeKeys {
	f := &fakeKeys{}
	f.setTotal(n)
	return f
}

func (f *fakeKeys) setTotal(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = make([]model.Key, n)
	for i := range f.keys {
		f.keys[i] = model.Key{ID: fmt.Sprintf("key-%02d", i+1), Code: fmt.Sprintf("CODE-%02d", i+1), State: model.StatusActive}
	}
}

func (f *fakeKeys) rename(i int, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[i].Code = code
}

func (f *fakeKeys) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeKeys) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeKeys) fetch(_ context.Context, q model.QueryParams) (model.Paginated[model.Key], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, q)
	if f.err != nil {
		return model.Paginated[model.Key]{}, f.err
	}
	start := min(q.Offset, len(f.keys))
	end := min(q.Offset+q.Limit, len(f.keys))
	data := make([]model.Key, end-start)
	copy(data, f.keys[start:end])
	pages := (len(f.keys) + q.Limit - 1) / q.Limit
	if f.omitPages {
		pages = 0
	}
	return model.Paginated[model.Key]{Data: data, Total: len(f.keys), Limit: q.Limit, Offset: q.Offset, Pages: pages}, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	c := cache.NewInMemory(ctx)
	t.Cleanup(func() {
		c.Close()
		cancel()
	})
	return c
}

func newKeyStore(t *testing.T, f Fetcher[model.Key], opts ...Option) *PagedStore[model.Key] {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewTestLogger())}, opts...)
	return NewPaged("keys", f, newTestCache(t), opts...)
}

func codes(keys []model.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Code
	}
	return out
}
