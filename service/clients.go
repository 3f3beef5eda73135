package service

import (
	"context"

	"github.com/keydesk/keydesk/api"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/model"
	"github.com/keydesk/keydesk/store"
)

type Clients struct {
	api     Requester
	mutate  *Mutator
	affects []store.Invalidator
}

func (s *Clients) List(ctx context.Context, q model.QueryParams) (model.Paginated[model.Client], error) {
	var out model.Paginated[model.Client]
	if err := s.api.Get(ctx, "/clients", q.Values(), &out); err != nil {
		return out, api.Wrap(err, "Error al obtener los clientes")
	}
	return out, nil
}

func (s *Clients) Get(ctx context.Context, id string) (model.Client, error) {
	var out model.Client
	if err := ValidateID("id", id); err != nil {
		return out, err
	}
	if err := s.api.Get(ctx, "/clients/"+id, nil, &out); err != nil {
		return out, api.Wrap(err, "Error al obtener el cliente")
	}
	return out, nil
}

func (s *Clients) Create(ctx context.Context, in model.ClientCreate) error {
	if err := validatePayload(form.ClientCreate, in); err != nil {
		return err
	}
	return s.mutate.Run(ctx, func(ctx context.Context) error {
		return api.Wrap(s.api.Post(ctx, "/clients", in, nil), "Error al crear el cliente")
	}, s.affects...)
}

func (s *Clients) Update(ctx context.Context, id string, patch form.Patch) error {
	if err := ValidateID("id", id); err != nil {
		return err
	}
	if len(patch) == 0 {
		return form.ErrNoChanges
	}
	if err := form.ClientUpdate.Validate(patch); err != nil {
		return err
	}
	return s.mutate.Run(ctx, func(ctx context.Context) error {
		return api.Wrap(s.api.Patch(ctx, "/clients/"+id, patch, nil), "Error al actualizar el cliente")
	}, s.affects...)
}

func (s *Clients) Delete(ctx context.Context, id string) error {
	if err := ValidateID("id", id); err != nil {
		return err
	}
	return s.mutate.Run(ctx, func(ctx context.Context) error {
		return api.Wrap(s.api.Delete(ctx, "/clients/"+id), "Error al eliminar el cliente")
	}, s.affects...)
}
