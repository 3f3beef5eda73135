package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/keydesk/keydesk/cache"
	"github.com/keydesk/keydesk/logger"
	"github.com/keydesk/keydesk/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagedStoreOverSerializedBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) cache.Cache{
		"sqlite": func(t *testing.T) cache.Cache {
			c, err := cache.NewSQLite(context.Background(), ":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { c.Close() })
			return c
		},
		"redis": func(t *testing.T) cache.Cache {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { client.Close() })
			return cache.NewRedis(client, cache.WithPrefix("session-test"))
		},
	}
	for name, newCache := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newFakeKeys(12)
			s := NewPaged("keys", backend.fetch, newCache(t), WithLogger(logger.NewTestLogger()))

			first, err := s.Fetch(ctx, 5, 0, false)
			require.NoError(t, err)
			second, err := s.Fetch(ctx, 5, 0, false)
			require.NoError(t, err)
			assert.Equal(t, 1, backend.Calls())
			assert.Equal(t, codes(first.Records), codes(second.Records))
			assert.Equal(t, 12, second.TotalRecords)
			assert.Equal(t, 3, second.TotalPages)

			s.Invalidate(ctx)
			_, err = s.Fetch(ctx, 5, 0, false)
			require.NoError(t, err)
			assert.Equal(t, 2, backend.Calls())
		})
	}
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	keys := newFakeKeys(3)
	inactive := &fakeInactive{n: 1}
	emptyPage := func(_ context.Context, q model.QueryParams) (model.Paginated[model.Client], error) {
		return model.Paginated[model.Client]{Limit: q.Limit}, nil
	}
	r := NewRegistry(Sources{
		Keys:         keys.fetch,
		InactiveKeys: inactive.fetch,
		Clients:      emptyPage,
	}, newTestCache(t), WithLogger(logger.NewTestLogger()))

	assert.Equal(t, "keys", r.Keys.Resource())
	assert.Equal(t, "inactive_keys", r.InactiveKeys.Resource())

	_, err := r.Keys.Fetch(ctx, 10, 0, false)
	require.NoError(t, err)
	_, err = r.InactiveKeys.FetchAll(ctx, false)
	require.NoError(t, err)
	page, err := r.Clients.Fetch(ctx, 10, 0, false)
	require.NoError(t, err)
	assert.Empty(t, page.Records)

	r.InvalidateAll(ctx)
	assert.Empty(t, r.Keys.CachedPages())
	assert.True(t, r.InactiveKeys.LastFetch().IsZero())
}
