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

func newBatchesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "Gestiona los lotes de keys",
	}
	cmd.AddCommand(
		newBatchesListCmd(a),
		newBatchesShowCmd(a),
		newBatchesCreateCmd(a),
		newBatchesUpdateCmd(a),
	)
	return cmd
}

func newBatchesListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista los lotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := loadView(cmd.Context(), a, a.svc.Stores.Batches, &f, "Cargando lotes", filter.BatchFields)
			if err != nil {
				return err
			}
			renderView(a.out, view, batchHeaders, batchRows, "No hay lotes")
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newBatchesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Muestra un lote y sus keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := tui.Load(cmd.Context(), "Cargando lote", func(ctx context.Context) (model.Batch, error) {
				return a.svc.Batches.Get(ctx, args[0])
			})
			if err != nil {
				return err
			}
			tui.Table(a.out, []string{"Campo", "Valor"}, [][]string{
				{"Título", b.Title},
				{"Cantidad", strconv.Itoa(b.Quantity)},
				{"Descripción", tui.OrDash(b.Description)},
				{"Estados", statusCounts(b.KeyStatusCounts)},
				{"Creado", tui.Date(b.CreatedAt)},
				{"ID", b.ID},
			}, "")
			if len(b.Keys) > 0 {
				tui.Table(a.out, keyHeaders, keyRows(b.Keys), "")
			}
			return nil
		},
	}
}

func newBatchesCreateCmd(a *app) *cobra.Command {
	var (
		in     model.BatchCreate
		client string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea un lote y sus keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("client") {
				if client == "" {
					in.ClientID = model.Null[string]()
				} else {
					in.ClientID = model.Some(client)
				}
			}
			if err := tui.ShowSpinner(cmd.Context(), "Creando lote", func(ctx context.Context) error {
				return a.svc.Batches.Create(ctx, in)
			}); err != nil {
				return err
			}
			tui.ShowSuccess(a.out, "Lote %s creado con %d keys", in.Title, in.Quantity)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&in.Title, "title", "", "título")
	fl.IntVar(&in.Quantity, "quantity", 0, "número de keys")
	fl.StringVar(&in.Description, "description", "", "descripción")
	fl.StringVar(&in.KeyTypeID, "key-type", "", "ID del tipo de key")
	fl.StringVar(&client, "client", "", "ID del cliente (vacío para ninguno)")
	return cmd
}

func newBatchesUpdateCmd(a *app) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Actualiza el título o la descripción de un lote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.svc.Batches.Get(ctx, args[0])
			if err != nil {
				return err
			}
			original := form.BatchValues(b)
			submitted := maps.Clone(original)
			if cmd.Flags().Changed("title") {
				submitted["title"] = title
			}
			if cmd.Flags().Changed("description") {
				submitted["description"] = description
			}
			patch, err := form.BatchUpdate.Diff(original, submitted)
			if errors.Is(err, form.ErrNoChanges) {
				tui.ShowNotice(a.out, "%s", form.NoChangesMessage)
				return nil
			}
			if err != nil {
				return err
			}
			if err := a.svc.Batches.Update(ctx, b.ID, patch); err != nil {
				return err
			}
			tui.ShowSuccess(a.out, "Lote %s actualizado", b.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "título")
	cmd.Flags().StringVar(&description, "description", "", "descripción")
	return cmd
}
