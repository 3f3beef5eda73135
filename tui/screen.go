package tui

import (
	"fmt"
	"io"

	tm "github.com/buger/goterm"
)

// ClearScreen clears the screen and moves the cursor to the top left corner
func ClearScreen() {
	if !HasTTY {
		return
	}
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

// Redraw starts a fresh screen for the pager and writes its title. Without a
// terminal the output is appended instead.
func Redraw(w io.Writer, title string) {
	ClearScreen()
	fmt.Fprintln(w, Title(title))
	fmt.Fprintln(w)
}
