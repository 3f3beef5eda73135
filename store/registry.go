package store

import (
	"context"

	"github.com/keydesk/keydesk/cache"
	"github.com/keydesk/keydesk/model"
)

// Invalidator is implemented by every store.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Sources are the backend fetchers a Registry is built from.
type Sources struct {
	Keys         Fetcher[model.Key]
	InactiveKeys ListFetcher[model.Key]
	Clients      Fetcher[model.Client]
	Batches      Fetcher[model.Batch]
	KeyTypes     Fetcher[model.KeyType]
	KeyLogins    Fetcher[model.KeyLogin]
	Permissions  ListFetcher[model.Permission]
}

// Registry holds one store per resource. It is built once at startup and
// passed to whatever needs it.
type Registry struct {
	Keys         *PagedStore[model.Key]
	InactiveKeys *CollectionStore[model.Key]
	Clients      *PagedStore[model.Client]
	Batches      *PagedStore[model.Batch]
	KeyTypes     *PagedStore[model.KeyType]
	KeyLogins    *PagedStore[model.KeyLogin]
	Permissions  *CollectionStore[model.Permission]
}

func NewRegistry(src Sources, c cache.Cache, opts ...Option) *Registry {
	return &Registry{
		Keys:         NewPaged("keys", src.Keys, c, opts...),
		InactiveKeys: NewCollection("inactive_keys", src.InactiveKeys, opts...),
		Clients:      NewPaged("clients", src.Clients, c, opts...),
		Batches:      NewPaged("batches", src.Batches, c, opts...),
		KeyTypes:     NewPaged("key_types", src.KeyTypes, c, opts...),
		KeyLogins:    NewPaged("key_logins", src.KeyLogins, c, opts...),
		Permissions:  NewCollection("permissions", src.Permissions, opts...),
	}
}

// InvalidateAll drops every cached page and list.
func (r *Registry) InvalidateAll(ctx context.Context) {
	for _, inv := range []Invalidator{r.Keys, r.InactiveKeys, r.Clients, r.Batches, r.KeyTypes, r.KeyLogins, r.Permissions} {
		inv.Invalidate(ctx)
	}
}
