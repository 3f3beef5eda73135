package main

import (
	"context"
	"maps"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/keydesk/keydesk/filter"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/model"
	"github.com/keydesk/keydesk/tui"
	"github.com/spf13/cobra"
)

func newKeyTypesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key-types",
		Short: "Gestiona los tipos de key y sus permisos",
	}

	var f listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "Lista los tipos de key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := loadView(cmd.Context(), a, a.svc.Stores.KeyTypes, &f, "Cargando tipos de key", filter.KeyTypeFields)
			if err != nil {
				return err
			}
			renderView(a.out, view, keyTypeHeaders, keyTypeRows, "No hay tipos de key")
			return nil
		},
	}
	f.bind(list)

	var in model.KeyTypeCreate
	create := &cobra.Command{
		Use:   "create",
		Short: "Crea un tipo de key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.svc.KeyTypes.Create(cmd.Context(), in); err != nil {
				return err
			}
			tui.ShowSuccess(a.out, "Tipo de key %s creado", in.Name)
			return nil
		},
	}
	create.Flags().StringVar(&in.Name, "name", "", "nombre")
	create.Flags().StringVar(&in.Description, "description", "", "descripción")
	create.Flags().StringSliceVar(&in.PermissionIDs, "permission", nil, "ID de permiso (repetible)")

	var name, description string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Actualiza el nombre o la descripción de un tipo de key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kt, err := a.svc.KeyTypes.Get(ctx, args[0])
			if err != nil {
				return err
			}
			original := form.KeyTypeValues(kt)
			submitted := maps.Clone(original)
			if cmd.Flags().Changed("name") {
				submitted["name"] = name
			}
			if cmd.Flags().Changed("description") {
				submitted["description"] = description
			}
			patch, err := form.KeyTypeUpdate.Diff(original, submitted)
			if errors.Is(err, form.ErrNoChanges) {
				tui.ShowNotice(a.out, "%s", form.NoChangesMessage)
				return nil
			}
			if err != nil {
				return err
			}
			if err := a.svc.KeyTypes.Update(ctx, kt.ID, patch); err != nil {
				return err
			}
			tui.ShowSuccess(a.out, "Tipo de key %s actualizado", kt.Name)
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "nombre")
	update.Flags().StringVar(&description, "description", "", "descripción")

	var changes model.PermissionChanges
	perms := &cobra.Command{
		Use:   "permissions <id>",
		Short: "Añade o quita permisos de un tipo de key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(changes.Create) == 0 && len(changes.Delete) == 0 {
				tui.ShowNotice(a.out, "%s", form.NoChangesMessage)
				return nil
			}
			if err := a.svc.KeyTypes.UpdatePermissions(cmd.Context(), args[0], changes); err != nil {
				return err
			}
			tui.ShowSuccess(a.out, "Permisos actualizados")
			return nil
		},
	}
	perms.Flags().StringSliceVar(&changes.Create, "add", nil, "ID de permiso a añadir (repetible)")
	perms.Flags().StringSliceVar(&changes.Delete, "remove", nil, "ID de permiso a quitar (repetible)")

	cmd.AddCommand(list, create, update, perms)
	return cmd
}

func newPermissionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Consulta los permisos",
	}
	var refresh bool
	list := &cobra.Command{
		Use:   "list",
		Short: "Lista todos los permisos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			perms, err := tui.Load(cmd.Context(), "Cargando permisos", func(ctx context.Context) ([]model.Permission, error) {
				return a.svc.Stores.Permissions.FetchAll(ctx, refresh)
			})
			if err != nil {
				return err
			}
			tui.Table(a.out, permissionHeaders, permissionRows(perms), "No hay permisos")
			return nil
		},
	}
	list.Flags().BoolVar(&refresh, "refresh", false, "ignora la caché")
	cmd.AddCommand(list)
	return cmd
}

func newLoginsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logins",
		Short: "Consulta las activaciones de keys",
	}
	var (
		f     listFlags
		keyID string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "Lista las activaciones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keyID != "" {
				logins, err := a.svc.KeyLogins.ListByKey(cmd.Context(), keyID)
				if err != nil {
					return err
				}
				tui.Table(a.out, loginHeaders, loginRows(logins), "La key no tiene activaciones")
				return nil
			}
			view, err := loadView(cmd.Context(), a, a.svc.Stores.KeyLogins, &f, "Cargando activaciones", filter.LoginFields)
			if err != nil {
				return err
			}
			renderView(a.out, view, loginHeaders, loginRows, "No hay activaciones")
			return nil
		},
	}
	f.bind(list)
	list.Flags().StringVar(&keyID, "key", "", "solo las activaciones de la key con este ID")
	cmd.AddCommand(list)
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Muestra el resumen general",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := tui.Load(cmd.Context(), "Cargando resumen", a.svc.Dashboard.Stats)
			if err != nil {
				return err
			}
			tui.Table(a.out, []string{"Métrica", "Valor"}, [][]string{
				{"Clientes", strconv.Itoa(stats.TotalClients)},
				{"Clientes activos", strconv.Itoa(stats.ActiveClients)},
				{"Keys", strconv.Itoa(stats.TotalKeys)},
				{"Keys que vencen este mes", strconv.Itoa(stats.KeysExpiringMonth)},
				{"Lotes", strconv.Itoa(stats.TotalBatches)},
				{"Usuarios", strconv.Itoa(stats.TotalUsers)},
			}, "")
			rows := make([][]string, 0, len(stats.KeysByStatus))
			for _, s := range stats.KeysByStatus {
				rows = append(rows, []string{tui.StatusBadge(model.Status(s.Status)), strconv.Itoa(s.Count)})
			}
			tui.Table(a.out, []string{"Estado", "Keys"}, rows, "Sin keys")
			recent := make([][]string, 0, len(stats.RecentBatches))
			for _, b := range stats.RecentBatches {
				recent = append(recent, []string{b.Title, strconv.Itoa(b.Quantity), tui.Date(b.CreatedAt)})
			}
			tui.Table(a.out, []string{"Lote reciente", "Cantidad", "Creado"}, recent, "Sin lotes recientes")
			return nil
		},
	}
}
