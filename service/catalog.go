package service

import (
	"context"

	"github.com/keydesk/keydesk/api"
	"github.com/keydesk/keydesk/model"
)

type Permissions struct {
	api Requester
}

func (s *Permissions) List(ctx context.Context) ([]model.Permission, error) {
	var out envelope[[]model.Permission]
	if err := s.api.Get(ctx, "/permissions", nil, &out); err != nil {
		return nil, api.Wrap(err, "Error al obtener los permisos")
	}
	return out.Data, nil
}

type KeyLogins struct {
	api Requester
}

func (s *KeyLogins) List(ctx context.Context, q model.QueryParams) (model.Paginated[model.KeyLogin], error) {
	var out model.Paginated[model.KeyLogin]
	if err := s.api.Get(ctx, "/key-logins", q.Values(), &out); err != nil {
		return out, api.Wrap(err, "Error al obtener los logins")
	}
	return out, nil
}

func (s *KeyLogins) ListByKey(ctx context.Context, keyID string) ([]model.KeyLogin, error) {
	if err := ValidateID("key_id", keyID); err != nil {
		return nil, err
	}
	var out []model.KeyLogin
	if err := s.api.Get(ctx, "/key-logins/key/"+keyID, nil, &out); err != nil {
		return nil, api.Wrap(err, "Error al obtener los logins de la key")
	}
	return out, nil
}

func (s *KeyLogins) Get(ctx context.Context, id string) (model.KeyLogin, error) {
	var out model.KeyLogin
	if err := ValidateID("id", id); err != nil {
		return out, err
	}
	if err := s.api.Get(ctx, "/key-logins/"+id, nil, &out); err != nil {
		return out, api.Wrap(err, "Error al obtener el login")
	}
	return out, nil
}

type Dashboard struct {
	api Requester
}

func (s *Dashboard) Stats(ctx context.Context) (model.DashboardStats, error) {
	var out envelope[model.DashboardStats]
	if err := s.api.Get(ctx, "/dashboard/stats", nil, &out); err != nil {
		return model.DashboardStats{}, api.Wrap(err, "Error al obtener estadísticas del dashboard")
	}
	return out.Data, nil
}
