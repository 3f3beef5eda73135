package main

import (
	"context"
	"maps"

	"github.com/cockroachdb/errors"
	"github.com/keydesk/keydesk/filter"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/model"
	"github.com/keydesk/keydesk/tui"
	"github.com/spf13/cobra"
)

func newClientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Gestiona los clientes",
	}
	cmd.AddCommand(
		newClientsListCmd(a),
		newClientsCreateCmd(a),
		newClientsUpdateCmd(a),
		newClientsDeleteCmd(a),
	)
	return cmd
}

func newClientsListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista los clientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := loadView(cmd.Context(), a, a.svc.Stores.Clients, &f, "Cargando clientes", filter.ClientFields)
			if err != nil {
				return err
			}
			renderView(a.out, view, clientHeaders, clientRows, "No hay clientes")
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

type clientFlags struct {
	name, email, phone string
}

func (f *clientFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "nombre")
	cmd.Flags().StringVar(&f.email, "email", "", "correo electrónico")
	cmd.Flags().StringVar(&f.phone, "phone", "", "teléfono")
}

func newClientsCreateCmd(a *app) *cobra.Command {
	var f clientFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea un cliente",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := model.ClientCreate{Name: f.name, Email: f.email, Phone: f.phone}
			if err := tui.ShowSpinner(cmd.Context(), "Creando cliente", func(ctx context.Context) error {
				return a.svc.Clients.Create(ctx, in)
			}); err != nil {
				return err
			}
			tui.ShowSuccess(a.out, "Cliente %s creado", in.Name)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newClientsUpdateCmd(a *app) *cobra.Command {
	var f clientFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Actualiza un cliente enviando solo los campos modificados",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.svc.Clients.Get(ctx, args[0])
			if err != nil {
				return err
			}
			original := form.ClientValues(client)
			submitted := maps.Clone(original)
			for flag, v := range map[string]string{"name": f.name, "email": f.email, "phone": f.phone} {
				if cmd.Flags().Changed(flag) {
					submitted[flag] = v
				}
			}
			patch, err := form.ClientUpdate.Diff(original, submitted)
			if errors.Is(err, form.ErrNoChanges) {
				tui.ShowNotice(a.out, "%s", form.NoChangesMessage)
				return nil
			}
			if err != nil {
				return err
			}
			if err := a.svc.Clients.Update(ctx, client.ID, patch); err != nil {
				return err
			}
			tui.ShowSuccess(a.out, "Cliente %s actualizado", client.Name)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newClientsDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Elimina un cliente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirm(a, yes, "¿Eliminar el cliente?")
			if err != nil || !ok {
				return err
			}
			if err := a.svc.Clients.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			tui.ShowSuccess(a.out, "Cliente eliminado")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "no pedir confirmación")
	return cmd
}
