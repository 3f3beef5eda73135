package service

import (
	"context"

	"github.com/keydesk/keydesk/model"
	"golang.org/x/sync/errgroup"
)

// lookupLimit is the page size used to fill selectors.
const lookupLimit = 100

// Lookups are the choices offered by the key form selectors.
type Lookups struct {
	KeyTypes    []model.KeyType
	Permissions []model.Permission
	Clients     []model.Client
}

// LoadKeyFormLookups loads key types, permissions and clients concurrently.
// The first failure cancels the others.
func (s *Service) LoadKeyFormLookups(ctx context.Context) (Lookups, error) {
	var out Lookups
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.KeyTypes.List(ctx, model.QueryParams{Limit: lookupLimit})
		out.KeyTypes = page.Data
		return err
	})
	g.Go(func() error {
		perms, err := s.Stores.Permissions.FetchAll(ctx, false)
		out.Permissions = perms
		return err
	})
	g.Go(func() error {
		page, err := s.Clients.List(ctx, model.QueryParams{Limit: lookupLimit})
		out.Clients = page.Data
		return err
	})
	if err := g.Wait(); err != nil {
		return Lookups{}, err
	}
	return out, nil
}
