package main

import (
	"context"

	"github.com/keydesk/keydesk/tui"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Inicia sesión y guarda el token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				var err error
				if email, password, err = tui.LoginPrompt(email); err != nil {
					return err
				}
			}
			err := tui.ShowSpinner(cmd.Context(), "Iniciando sesión", func(ctx context.Context) error {
				return a.session.Login(ctx, a.client, email, password)
			})
			if err != nil {
				return err
			}
			u, err := a.session.User()
			if err != nil {
				return err
			}
			tui.ShowSuccess(a.out, "Sesión iniciada como %s", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "correo del usuario")
	cmd.Flags().StringVar(&password, "password", "", "contraseña (si se omite se pide de forma interactiva)")
	return public(cmd)
}

func newLogoutCmd(a *app) *cobra.Command {
	return public(&cobra.Command{
		Use:   "logout",
		Short: "Cierra la sesión y borra el token guardado",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			a.svc.Stores.InvalidateAll(cmd.Context())
			tui.ShowSuccess(a.out, "Sesión cerrada")
			return nil
		},
	})
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Muestra el usuario de la sesión",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			u, err := a.session.User()
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Correo", u.Email},
				{"Nombre", tui.OrDash(u.Name)},
				{"Rol", tui.OrDash(u.Role)},
				{"Token", a.session.MaskedToken()},
			}
			if c, err := a.session.Claims(); err == nil && !c.ExpiresAt.IsZero() {
				exp := c.ExpiresAt.Local().Format("2006-01-02 15:04")
				if a.session.Expired() {
					exp = tui.Warning(exp + " (expirado)")
				}
				rows = append(rows, []string{"Expira", exp})
			}
			tui.Table(a.out, []string{"Campo", "Valor"}, rows, "")
			return nil
		},
	}
}
