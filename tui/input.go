package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"
	"github.com/keydesk/keydesk/form"
)

var inputTheme = huh.ThemeBase16()

// ErrNoTerminal is returned by prompts when stdout is not a terminal.
var ErrNoTerminal = errors.New("se requiere una terminal interactiva")

// fieldValidator adapts one schema field to a huh validator.
func fieldValidator(schema form.Schema, field string) func(string) error {
	return func(v string) error {
		for _, f := range schema.Fields {
			if f.Name != field {
				continue
			}
			if v == "" {
				if f.Required {
					return errors.New("es obligatorio")
				}
				return nil
			}
			for _, rule := range f.Rules {
				if msg := rule(v); msg != "" {
					return errors.New(msg)
				}
			}
		}
		return nil
	}
}

// LoginPrompt asks for the credentials, prefilling email.
func LoginPrompt(email string) (string, string, error) {
	if !HasTTY {
		return "", "", ErrNoTerminal
	}
	var password string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Correo").
				Prompt("> ").
				Validate(fieldValidator(form.Signin, "email")).
				Value(&email),
			huh.NewInput().
				Title("Contraseña").
				Prompt("> ").
				EchoMode(huh.EchoModePassword).
				Validate(fieldValidator(form.Signin, "password")).
				Value(&password),
		),
	).WithTheme(inputTheme).Run()
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}
