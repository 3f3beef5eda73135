package main

import (
	"context"

	"github.com/keydesk/keydesk/filter"
	"github.com/keydesk/keydesk/store"
	"github.com/keydesk/keydesk/tui"
	"github.com/spf13/cobra"
)

// listFlags are shared by the paginated list commands.
type listFlags struct {
	page        int
	filter      string
	search      string
	searchField string
	refresh     bool
}

func (f *listFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&f.page, "page", 1, "número de página")
	fl.StringVar(&f.filter, "filter", "", "filtra la página cargada por texto")
	fl.StringVar(&f.search, "search", "", "búsqueda en el servidor")
	fl.StringVar(&f.searchField, "search-field", "", "campo de la búsqueda en el servidor")
	fl.BoolVar(&f.refresh, "refresh", false, "ignora la caché y vuelve a pedir la página")
}

// loadView fetches one page through st and applies the local filter.
func loadView[T any](ctx context.Context, a *app, st *store.PagedStore[T], f *listFlags, title string, fields []string) (filter.View[T], error) {
	page, err := tui.Load(ctx, title, func(ctx context.Context) (store.Page[T], error) {
		st.SetSearch(ctx, f.search, f.searchField)
		return st.Fetch(ctx, a.cfg.PageSize, a.offset(f.page), f.refresh)
	})
	if err != nil {
		return filter.View[T]{}, err
	}
	return filter.ApplyView(page.Records, page.TotalRecords, page.TotalPages, page.PageNumber, f.filter, fields), nil
}

// confirm asks before a destructive action unless yes is set.
func confirm(a *app, yes bool, question string) (bool, error) {
	if yes {
		return true, nil
	}
	ok, err := tui.Ask(question, false)
	if err != nil {
		return false, err
	}
	if !ok {
		tui.ShowWarning(a.out, "Operación cancelada")
	}
	return ok, nil
}
