package service

import (
	"context"
	"net/url"

	"github.com/keydesk/keydesk/api"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/model"
	"github.com/keydesk/keydesk/store"
)

type Keys struct {
	api     Requester
	mutate  *Mutator
	affects []store.Invalidator
}

func (s *Keys) List(ctx context.Context, q model.QueryParams) (model.Paginated[model.Key], error) {
	var out model.Paginated[model.Key]
	if err := s.api.Get(ctx, "/keys", q.Values(), &out); err != nil {
		return out, api.Wrap(err, "Error al obtener las keys")
	}
	return out, nil
}

// ListInactive returns every inactive key in one list.
func (s *Keys) ListInactive(ctx context.Context) ([]model.Key, error) {
	var out model.Paginated[model.Key]
	if err := s.api.Get(ctx, "/keys/inactive", nil, &out); err != nil {
		return nil, api.Wrap(err, "Error al obtener las keys inactivas")
	}
	return out.Data, nil
}

func (s *Keys) Get(ctx context.Context, id string) (model.Key, error) {
	var out model.Key
	if err := ValidateID("id", id); err != nil {
		return out, err
	}
	if err := s.api.Get(ctx, "/keys/"+id, nil, &out); err != nil {
		return out, api.Wrap(err, "Error al obtener la key")
	}
	return out, nil
}

func (s *Keys) GetByCode(ctx context.Context, code string) (model.Key, error) {
	var out model.Key
	if code == "" {
		return out, &form.ValidationError{Field: "code", Message: "es obligatorio"}
	}
	if err := s.api.Get(ctx, "/keys/code/"+url.PathEscape(code), nil, &out); err != nil {
		return out, api.Wrap(err, "Error al obtener la key por código")
	}
	return out, nil
}

func (s *Keys) ListByClient(ctx context.Context, clientID string, q model.QueryParams) (model.Paginated[model.Key], error) {
	var out model.Paginated[model.Key]
	if err := ValidateID("client_id", clientID); err != nil {
		return out, err
	}
	if err := s.api.Get(ctx, "/keys/client/"+clientID, q.Values(), &out); err != nil {
		return out, api.Wrap(err, "Error al obtener las keys del cliente")
	}
	return out, nil
}

func (s *Keys) History(ctx context.Context, id string, q model.QueryParams) (model.Paginated[model.Key], error) {
	var out model.Paginated[model.Key]
	if err := ValidateID("id", id); err != nil {
		return out, err
	}
	if err := s.api.Get(ctx, "/keys/"+id+"/history", q.Values(), &out); err != nil {
		return out, api.Wrap(err, "Error al obtener el historial de la key")
	}
	return out, nil
}

func (s *Keys) Create(ctx context.Context, in model.KeyCreate) (model.Key, error) {
	var out model.Key
	if err := validatePayload(form.KeyCreate, in); err != nil {
		return out, err
	}
	err := s.mutate.Run(ctx, func(ctx context.Context) error {
		return api.Wrap(s.api.Post(ctx, "/keys", in, &out), "Error al crear la key")
	}, s.affects...)
	return out, err
}

// Update sends a dirty-field patch. Build it with form.KeyUpdate.Diff.
func (s *Keys) Update(ctx context.Context, id string, patch form.Patch) error {
	if err := ValidateID("id", id); err != nil {
		return err
	}
	if len(patch) == 0 {
		return form.ErrNoChanges
	}
	if err := form.KeyUpdate.Validate(patch); err != nil {
		return err
	}
	return s.mutate.Run(ctx, func(ctx context.Context) error {
		return api.Wrap(s.api.Patch(ctx, "/keys/"+id, patch, nil), "Error al actualizar la key")
	}, s.affects...)
}

func (s *Keys) Delete(ctx context.Context, id string) error {
	if err := ValidateID("id", id); err != nil {
		return err
	}
	return s.mutate.Run(ctx, func(ctx context.Context) error {
		return api.Wrap(s.api.Delete(ctx, "/keys/"+id), "Error al eliminar la key")
	}, s.affects...)
}

// GenerateCode asks the backend for an unused key code.
func (s *Keys) GenerateCode(ctx context.Context) (string, error) {
	var out model.GeneratedCode
	if err := s.api.Post(ctx, "/keys/generate", nil, &out); err != nil {
		return "", api.Wrap(err, "Error al generar el código")
	}
	return out.Code, nil
}

// CreateBulk asks the backend to generate quantity keys.
func (s *Keys) CreateBulk(ctx context.Context, quantity int) error {
	if quantity <= 0 {
		return &form.ValidationError{Field: "quantity", Message: "debe ser un entero mayor que 0"}
	}
	return s.mutate.Run(ctx, func(ctx context.Context) error {
		return api.Wrap(s.api.Post(ctx, "/keys/bulk", model.BulkCreate{Quantity: quantity}, nil), "Error al crear las keys")
	}, s.affects...)
}
