package main

import (
	"context"
	"maps"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/keydesk/keydesk/filter"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/model"
	"github.com/keydesk/keydesk/tui"
	"github.com/spf13/cobra"
)

func newKeysCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Gestiona las keys de licencia",
	}
	cmd.AddCommand(
		newKeysListCmd(a),
		newKeysInactiveCmd(a),
		newKeysShowCmd(a),
		newKeysCreateCmd(a),
		newKeysUpdateCmd(a),
		newKeysDeleteCmd(a),
		newKeysBulkCmd(a),
		newKeysGenerateCodeCmd(a),
		newKeysHistoryCmd(a),
	)
	return cmd
}

func newKeysListCmd(a *app) *cobra.Command {
	var (
		f      listFlags
		client string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista las keys página a página",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if client != "" {
				q := model.QueryParams{Limit: a.cfg.PageSize, Offset: a.offset(f.page), Search: f.search, SearchField: f.searchField}
				page, err := tui.Load(cmd.Context(), "Cargando keys del cliente", func(ctx context.Context) (model.Paginated[model.Key], error) {
					return a.svc.Keys.ListByClient(ctx, client, q)
				})
				if err != nil {
					return err
				}
				view := filter.ApplyView(page.Data, page.Total, page.Pages, f.page, f.filter, filter.KeyFields)
				renderView(a.out, view, keyHeaders, keyRows, "No hay keys")
				return nil
			}
			view, err := loadView(cmd.Context(), a, a.svc.Stores.Keys, &f, "Cargando keys", filter.KeyFields)
			if err != nil {
				return err
			}
			renderView(a.out, view, keyHeaders, keyRows, "No hay keys")
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&client, "client", "", "solo las keys del cliente con este ID")
	return cmd
}

func newKeysInactiveCmd(a *app) *cobra.Command {
	var (
		refresh bool
		query   string
	)
	cmd := &cobra.Command{
		Use:   "inactive",
		Short: "Lista todas las keys inactivas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := tui.Load(cmd.Context(), "Cargando keys inactivas", func(ctx context.Context) ([]model.Key, error) {
				return a.svc.Stores.InactiveKeys.FetchAll(ctx, refresh)
			})
			if err != nil {
				return err
			}
			keys = filter.Filter(keys, query, filter.KeyFields)
			tui.Table(a.out, keyHeaders, keyRows(keys), "No hay keys inactivas")
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignora la caché")
	cmd.Flags().StringVar(&query, "filter", "", "filtra por texto")
	return cmd
}

func newKeysShowCmd(a *app) *cobra.Command {
	var (
		byCode bool
		logins bool
	)
	cmd := &cobra.Command{
		Use:   "show <id|código>",
		Short: "Muestra el detalle de una key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := tui.Load(ctx, "Cargando key", func(ctx context.Context) (model.Key, error) {
				if byCode {
					return a.svc.Keys.GetByCode(ctx, args[0])
				}
				return a.svc.Keys.Get(ctx, args[0])
			})
			if err != nil {
				return err
			}
			renderKey(a.out, key)
			if !logins {
				return nil
			}
			list, err := a.svc.KeyLogins.ListByKey(ctx, key.ID)
			if err != nil {
				return err
			}
			tui.Table(a.out, loginHeaders, loginRows(list), "La key no tiene activaciones")
			return nil
		},
	}
	cmd.Flags().BoolVar(&byCode, "code", false, "busca la key por código en lugar de por ID")
	cmd.Flags().BoolVar(&logins, "logins", false, "muestra también las activaciones")
	return cmd
}

// keyFlags are the editable key fields as flags. Empty strings clear
// nullable fields on update.
type keyFlags struct {
	code        string
	state       string
	initDate    string
	dueDate     string
	keyType     string
	client      string
	permissions []string
}

func (f *keyFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.code, "code", "", "código de la key")
	fl.StringVar(&f.state, "state", "", "estado (PENDING, ACTIVE, APPROVED, INACTIVE, EXPIRED)")
	fl.StringVar(&f.initDate, "init-date", "", "fecha de inicio AAAA-MM-DD")
	fl.StringVar(&f.dueDate, "due-date", "", "fecha de vencimiento AAAA-MM-DD")
	fl.StringVar(&f.keyType, "key-type", "", "ID del tipo de key")
	fl.StringVar(&f.client, "client", "", "ID del cliente (vacío para quitarlo)")
}

// apply overwrites v with the flags the user set.
func (f *keyFlags) apply(cmd *cobra.Command, v form.Values) {
	set := map[string]string{
		"code":      "code",
		"state":     "state",
		"init-date": "init_date",
		"due-date":  "due_date",
		"key-type":  "key_type_id",
		"client":    "client_id",
	}
	vals := map[string]string{
		"code":      f.code,
		"state":     strings.ToUpper(f.state),
		"init-date": f.initDate,
		"due-date":  f.dueDate,
		"key-type":  f.keyType,
		"client":    f.client,
	}
	for flag, field := range set {
		if cmd.Flags().Changed(flag) {
			v[field] = vals[flag]
		}
	}
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

func newKeysUpdateCmd(a *app) *cobra.Command {
	var f keyFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Actualiza una key enviando solo los campos modificados",
		Long: "Sin flags abre un formulario interactivo. Solo se envían los campos que " +
			"cambian; dejar una fecha o el cliente vacío los borra.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := tui.Load(ctx, "Cargando key", func(ctx context.Context) (model.Key, error) {
				return a.svc.Keys.Get(ctx, args[0])
			})
			if err != nil {
				return err
			}
			original := form.KeyValues(key)
			var submitted form.Values
			if anyChanged(cmd, "code", "state", "init-date", "due-date", "key-type", "client") {
				submitted = maps.Clone(original)
				f.apply(cmd, submitted)
			} else {
				if !tui.HasTTY {
					return errors.WithHint(tui.ErrNoTerminal, "usa --state, --due-date, --client u otros flags")
				}
				lookups, err := tui.Load(ctx, "Cargando opciones", a.svc.LoadKeyFormLookups)
				if err != nil {
					return err
				}
				if submitted, err = tui.EditKey(original, lookups); err != nil {
					return err
				}
			}
			return updateKey(ctx, a, key, original, submitted)
		},
	}
	f.bind(cmd)
	return cmd
}

// updateKey diffs submitted against original and sends the patch. Identical
// values print a notice and send nothing.
func updateKey(ctx context.Context, a *app, key model.Key, original, submitted form.Values) error {
	patch, err := form.KeyUpdate.Diff(original, submitted)
	if errors.Is(err, form.ErrNoChanges) {
		tui.ShowNotice(a.out, "%s", form.NoChangesMessage)
		return nil
	}
	if err != nil {
		return err
	}
	a.logger.Debug("updating key %s with %d changed fields", key.ID, len(patch))
	if err := tui.ShowSpinner(ctx, "Guardando", func(ctx context.Context) error {
		return a.svc.Keys.Update(ctx, key.ID, patch)
	}); err != nil {
		return err
	}
	tui.ShowSuccess(a.out, "Key %s actualizada", key.Code)
	return nil
}

func newKeysCreateCmd(a *app) *cobra.Command {
	var f keyFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea una key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			in := model.KeyCreate{
				Code:        f.code,
				InitDate:    f.initDate,
				DueDate:     f.dueDate,
				State:       model.Status(strings.ToUpper(f.state)),
				KeyTypeID:   f.keyType,
				Permissions: f.permissions,
			}
			if in.State == "" {
				in.State = model.StatusPending
			}
			if cmd.Flags().Changed("client") {
				if f.client == "" {
					in.ClientID = model.Null[string]()
				} else {
					in.ClientID = model.Some(f.client)
				}
			}
			if in.Code == "" {
				code, err := a.svc.Keys.GenerateCode(ctx)
				if err != nil {
					return err
				}
				in.Code = code
			}
			var key model.Key
			err := tui.ShowSpinner(ctx, "Creando key", func(ctx context.Context) error {
				var err error
				key, err = a.svc.Keys.Create(ctx, in)
				return err
			})
			if err != nil {
				return err
			}
			tui.ShowSuccess(a.out, "Key %s creada", in.Code)
			if key.ID != "" {
				renderKey(a.out, key)
			}
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringSliceVar(&f.permissions, "permission", nil, "ID de permiso (repetible)")
	return cmd
}

func newKeysDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Elimina una key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirm(a, yes, "¿Eliminar la key?")
			if err != nil || !ok {
				return err
			}
			if err := a.svc.Keys.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			tui.ShowSuccess(a.out, "Key eliminada")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "no pedir confirmación")
	return cmd
}

func newKeysBulkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk <cantidad>",
		Short: "Genera varias keys de una vez",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return &form.ValidationError{Field: "quantity", Message: "debe ser un número entero"}
			}
			if err := tui.ShowSpinner(cmd.Context(), "Generando keys", func(ctx context.Context) error {
				return a.svc.Keys.CreateBulk(ctx, n)
			}); err != nil {
				return err
			}
			tui.ShowSuccess(a.out, "%d keys generadas", n)
			return nil
		},
	}
}

func newKeysGenerateCodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-code",
		Short: "Pide al servidor un código de key libre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code, err := a.svc.Keys.GenerateCode(cmd.Context())
			if err != nil {
				return err
			}
			_, err = a.out.Write([]byte(code + "\n"))
			return err
		},
	}
}

func newKeysHistoryCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Muestra el historial de cambios de una key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := model.QueryParams{Limit: a.cfg.PageSize, Offset: a.offset(page)}
			hist, err := tui.Load(cmd.Context(), "Cargando historial", func(ctx context.Context) (model.Paginated[model.Key], error) {
				return a.svc.Keys.History(ctx, args[0], q)
			})
			if err != nil {
				return err
			}
			view := filter.ApplyView(hist.Data, hist.Total, hist.Pages, page, "", nil)
			renderView(a.out, view, keyHeaders, keyRows, "Sin historial")
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "número de página")
	return cmd
}
