package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/keydesk/keydesk/api"
	"github.com/keydesk/keydesk/filter"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/model"
	"github.com/keydesk/keydesk/store"
	"github.com/keydesk/keydesk/tui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const browseHelp = "n siguiente · p anterior · g N ir a página · / texto filtrar · s texto buscar · r recargar · e N editar · q salir"

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Recorre las keys de forma interactiva",
		Long:  "Pagina las keys usando la caché de páginas.\n\n" + browseHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return (&browser{a: a, page: 1}).run(cmd.Context())
		},
	}
}

type browser struct {
	a      *app
	page   int
	query  string
	search string
	view   filter.View[model.Key]
	status string
}

func (b *browser) run(ctx context.Context) error {
	if err := b.load(ctx, false); err != nil {
		return err
	}
	sc := bufio.NewScanner(b.a.in)
	for {
		b.draw()
		fmt.Fprint(b.a.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(b.a.out)
			return sc.Err()
		}
		b.status = ""
		quit, err := b.handle(ctx, strings.TrimLeft(sc.Text(), " \t"))
		if err != nil {
			b.status = api.UserMessage(err)
		}
		if quit {
			return nil
		}
	}
}

func (b *browser) handle(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(line, "/") {
		// the filter text is kept as typed
		cmd, arg = "/", line[1:]
	}
	switch cmd {
	case "q", "quit", "exit":
		return true, nil
	case "", "n":
		if !b.view.Paginated || b.page >= b.view.TotalPages {
			return false, nil
		}
		return false, b.goTo(ctx, b.page+1)
	case "p":
		if !b.view.Paginated || b.page <= 1 {
			return false, nil
		}
		return false, b.goTo(ctx, b.page-1)
	case "g":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return false, &form.ValidationError{Field: "página", Message: "debe ser un número mayor que 0"}
		}
		return false, b.goTo(ctx, n)
	case "/":
		b.query = arg
		return false, b.load(ctx, false)
	case "s":
		b.search, b.page = arg, 1
		return false, b.load(ctx, false)
	case "r":
		return false, b.load(ctx, true)
	case "e":
		return false, b.edit(ctx, arg)
	}
	b.status = browseHelp
	return false, nil
}

// goTo loads page n, keeping the current page when the fetch fails.
func (b *browser) goTo(ctx context.Context, n int) error {
	prev := b.page
	b.page = n
	if err := b.load(ctx, false); err != nil {
		b.page = prev
		return err
	}
	return nil
}

func (b *browser) load(ctx context.Context, force bool) error {
	st := b.a.svc.Stores.Keys
	page, err := tui.Load(ctx, "Cargando keys", func(ctx context.Context) (store.Page[model.Key], error) {
		st.SetSearch(ctx, b.search, "")
		return st.Fetch(ctx, b.a.cfg.PageSize, b.a.offset(b.page), force)
	})
	if err != nil {
		return err
	}
	b.page = page.PageNumber
	b.view = filter.ApplyView(page.Records, page.TotalRecords, page.TotalPages, page.PageNumber, b.query, filter.KeyFields)
	return nil
}

// edit opens the key form for row n of the visible page and refetches the
// page after a successful save.
func (b *browser) edit(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(b.view.Records) {
		return &form.ValidationError{Field: "fila", Message: fmt.Sprintf("debe estar entre 1 y %d", len(b.view.Records))}
	}
	if !tui.HasTTY {
		return tui.ErrNoTerminal
	}
	key := b.view.Records[n-1]
	lookups, err := tui.Load(ctx, "Cargando opciones", b.a.svc.LoadKeyFormLookups)
	if err != nil {
		return err
	}
	original := form.KeyValues(key)
	submitted, err := tui.EditKey(original, lookups)
	if err != nil {
		return err
	}
	if err := updateKey(ctx, b.a, key, original, submitted); err != nil {
		return err
	}
	return b.load(ctx, true)
}

func (b *browser) draw() {
	out := b.a.out
	title := "Keys"
	if b.search != "" {
		title += fmt.Sprintf(" · búsqueda %q", b.search)
	}
	tui.Redraw(out, title)
	renderView(out, b.view, keyHeaders, keyRows, "No hay keys")
	fmt.Fprintln(out, tui.Muted(b.cacheLine()))
	if b.status != "" {
		fmt.Fprintln(out, tui.Warning(b.status))
	}
}

func (b *browser) cacheLine() string {
	st := b.a.svc.Stores.Keys
	pages := st.CachedPages()
	list := make([]string, len(pages))
	for i, p := range pages {
		list[i] = strconv.Itoa(p)
	}
	hits := counterValue(b.a.metrics, "keydesk_store_hits_total", st.Resource())
	misses := counterValue(b.a.metrics, "keydesk_store_misses_total", st.Resource())
	return fmt.Sprintf("Páginas en caché: [%s] · aciertos %.0f · fallos %.0f", strings.Join(list, " "), hits, misses)
}

// counterValue sums the counter name for resource in reg.
func counterValue(reg prometheus.Gatherer, name, resource string) float64 {
	families, err := reg.Gather()
	if err != nil {
		return 0
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "resource" && l.GetValue() == resource {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}
