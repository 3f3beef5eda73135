package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	tableBorderColor = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#AAAAAA"}
	tableBorderStyle = lipgloss.NewStyle().Foreground(tableBorderColor)
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Table writes rows to w under headers. An empty table prints emptyText.
func Table(w io.Writer, headers []string, rows [][]string, emptyText string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, Muted(emptyText))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

// Footer writes the pagination line below a table.
func Footer(w io.Writer, page, pages, total int) {
	if pages < 1 {
		pages = 1
	}
	fmt.Fprintln(w, Muted(fmt.Sprintf("Página %d de %d · %d registros", page, pages, total)))
}
