// Package tui renders keydesk output in the terminal: tables, colored status
// badges, spinners and the interactive forms.
package tui

import (
	"os"

	"github.com/mattn/go-isatty"
)

var (
	HasTTY = isatty.IsTerminal(os.Stdout.Fd())
)
