package service

import (
	"context"

	"github.com/keydesk/keydesk/api"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/model"
	"github.com/keydesk/keydesk/store"
)

type KeyTypes struct {
	api     Requester
	mutate  *Mutator
	affects []store.Invalidator
}

func (s *KeyTypes) List(ctx context.Context, q model.QueryParams) (model.Paginated[model.KeyType], error) {
	var out model.Paginated[model.KeyType]
	if err := s.api.Get(ctx, "/key-types", q.Values(), &out); err != nil {
		return out, api.Wrap(err, "Error al obtener los tipos de key")
	}
	return out, nil
}

func (s *KeyTypes) Get(ctx context.Context, id string) (model.KeyType, error) {
	var out model.KeyType
	if err := ValidateID("id", id); err != nil {
		return out, err
	}
	if err := s.api.Get(ctx, "/key-types/"+id, nil, &out); err != nil {
		return out, api.Wrap(err, "Error al obtener el tipo de key")
	}
	return out, nil
}

func (s *KeyTypes) Create(ctx context.Context, in model.KeyTypeCreate) error {
	if err := validatePayload(form.KeyTypeCreate, in); err != nil {
		return err
	}
	return s.mutate.Run(ctx, func(ctx context.Context) error {
		return api.Wrap(s.api.Post(ctx, "/key-types", in, nil), "Error al crear el tipo de key")
	}, s.affects...)
}

func (s *KeyTypes) Update(ctx context.Context, id string, patch form.Patch) error {
	if err := ValidateID("id", id); err != nil {
		return err
	}
	if len(patch) == 0 {
		return form.ErrNoChanges
	}
	if err := form.KeyTypeUpdate.Validate(patch); err != nil {
		return err
	}
	return s.mutate.Run(ctx, func(ctx context.Context) error {
		return api.Wrap(s.api.Patch(ctx, "/key-types/"+id, patch, nil), "Error al actualizar el tipo de key")
	}, s.affects...)
}

// UpdatePermissions adds and removes permissions of a key type.
func (s *KeyTypes) UpdatePermissions(ctx context.Context, id string, changes model.PermissionChanges) error {
	if err := ValidateID("id", id); err != nil {
		return err
	}
	if len(changes.Create) == 0 && len(changes.Delete) == 0 {
		return form.ErrNoChanges
	}
	for _, ids := range [][]string{changes.Create, changes.Delete} {
		if msg := form.UUIDs(ids); msg != "" {
			return &form.ValidationError{Field: "permissions", Message: msg}
		}
	}
	return s.mutate.Run(ctx, func(ctx context.Context) error {
		return api.Wrap(s.api.Patch(ctx, "/key-types/"+id+"/permissions", changes, nil), "Error al actualizar los permisos de la key")
	}, s.affects...)
}
