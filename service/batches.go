package service

import (
	"context"

	"github.com/keydesk/keydesk/api"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/model"
	"github.com/keydesk/keydesk/store"
)

type Batches struct {
	api     Requester
	mutate  *Mutator
	affects []store.Invalidator
}

func (s *Batches) List(ctx context.Context, q model.QueryParams) (model.Paginated[model.Batch], error) {
	var out model.Paginated[model.Batch]
	if err := s.api.Get(ctx, "/batches", q.Values(), &out); err != nil {
		return out, api.Wrap(err, "Error al obtener los lotes")
	}
	return out, nil
}

func (s *Batches) Get(ctx context.Context, id string) (model.Batch, error) {
	var out model.Batch
	if err := ValidateID("id", id); err != nil {
		return out, err
	}
	if err := s.api.Get(ctx, "/batches/"+id, nil, &out); err != nil {
		return out, api.Wrap(err, "Error al obtener el lote")
	}
	return out, nil
}

// Create issues a new batch; the backend generates its keys.
func (s *Batches) Create(ctx context.Context, in model.BatchCreate) error {
	if err := validatePayload(form.BatchCreate, in); err != nil {
		return err
	}
	return s.mutate.Run(ctx, func(ctx context.Context) error {
		return api.Wrap(s.api.Post(ctx, "/batches", in, nil), "Error al crear el lote")
	}, s.affects...)
}

func (s *Batches) Update(ctx context.Context, id string, patch form.Patch) error {
	if err := ValidateID("id", id); err != nil {
		return err
	}
	if len(patch) == 0 {
		return form.ErrNoChanges
	}
	if err := form.BatchUpdate.Validate(patch); err != nil {
		return err
	}
	return s.mutate.Run(ctx, func(ctx context.Context) error {
		return api.Wrap(s.api.Patch(ctx, "/batches/"+id, patch, nil), "Error al actualizar el lote")
	}, s.affects...)
}
