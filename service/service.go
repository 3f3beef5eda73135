// Package service calls the REST backend for each resource and keeps the
// stores consistent: every successful mutation invalidates the stores whose
// records it may have changed.
package service

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"github.com/keydesk/keydesk/api"
	"github.com/keydesk/keydesk/cache"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/logger"
	"github.com/keydesk/keydesk/store"
)

// Requester is the HTTP surface the services need. *api.Client implements it.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, response any) error
	Post(ctx context.Context, path string, payload any, response any) error
	Put(ctx context.Context, path string, payload any, response any) error
	Patch(ctx context.Context, path string, payload any, response any) error
	Delete(ctx context.Context, path string) error
}

var _ Requester = (*api.Client)(nil)

// Mutator runs mutations and invalidates stores after they succeed.
type Mutator struct {
	logger logger.Logger
}

func NewMutator(log logger.Logger) *Mutator {
	return &Mutator{logger: log.WithPrefix("[mutate]")}
}

// Run calls fn and, only if it succeeds, invalidates every store in targets.
func (m *Mutator) Run(ctx context.Context, fn func(ctx context.Context) error, targets ...store.Invalidator) error {
	if err := fn(ctx); err != nil {
		m.logger.Debug("mutation failed, stores left as they were: %s", err)
		return err
	}
	for _, t := range targets {
		t.Invalidate(ctx)
	}
	return nil
}

// Service bundles the per-resource services and the stores built on them.
type Service struct {
	Keys        *Keys
	Clients     *Clients
	Batches     *Batches
	KeyTypes    *KeyTypes
	Permissions *Permissions
	KeyLogins   *KeyLogins
	Dashboard   *Dashboard
	Stores      *store.Registry
}

// New wires the services to r and builds the store registry on c.
func New(r Requester, c cache.Cache, log logger.Logger, opts ...store.Option) *Service {
	m := NewMutator(log)
	s := &Service{
		Keys:        &Keys{api: r, mutate: m},
		Clients:     &Clients{api: r, mutate: m},
		Batches:     &Batches{api: r, mutate: m},
		KeyTypes:    &KeyTypes{api: r, mutate: m},
		Permissions: &Permissions{api: r},
		KeyLogins:   &KeyLogins{api: r},
		Dashboard:   &Dashboard{api: r},
	}
	opts = append([]store.Option{store.WithLogger(log)}, opts...)
	s.Stores = store.NewRegistry(store.Sources{
		Keys:         s.Keys.List,
		InactiveKeys: s.Keys.ListInactive,
		Clients:      s.Clients.List,
		Batches:      s.Batches.List,
		KeyTypes:     s.KeyTypes.List,
		KeyLogins:    s.KeyLogins.List,
		Permissions:  s.Permissions.List,
	}, c, opts...)

	st := s.Stores
	s.Keys.affects = []store.Invalidator{st.Keys, st.InactiveKeys, st.Batches}
	s.Clients.affects = []store.Invalidator{st.Clients, st.Keys, st.InactiveKeys}
	s.Batches.affects = []store.Invalidator{st.Batches, st.Keys, st.InactiveKeys}
	s.KeyTypes.affects = []store.Invalidator{st.KeyTypes, st.Keys, st.InactiveKeys}
	return s
}

// ValidateID checks that id is a UUID before it is put in a URL.
func ValidateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &form.ValidationError{Field: field, Message: "identificador inválido"}
	}
	return nil
}

func validatePayload(schema form.Schema, payload any) error {
	m, err := form.ToMap(payload)
	if err != nil {
		return err
	}
	return schema.Validate(m)
}

// envelope is the {"data": ...} wrapper some endpoints use.
type envelope[T any] struct {
	Data T `json:"data"`
}
