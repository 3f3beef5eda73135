package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/keydesk/keydesk/filter"
	"github.com/keydesk/keydesk/model"
	"github.com/keydesk/keydesk/tui"
)

var keyHeaders = []string{"#", "Código", "Estado", "Tipo", "Cliente", "Inicio", "Vence", "ID"}

func keyRows(keys []model.Key) [][]string {
	rows := make([][]string, 0, len(keys))
	for i, k := range keys {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			k.Code,
			tui.StatusBadge(k.State),
			tui.OrDash(k.KeyType.Name),
			tui.OrDash(k.ClientName()),
			tui.Date(k.InitDate),
			tui.Date(k.DueDate),
			k.ID,
		})
	}
	return rows
}

var clientHeaders = []string{"Nombre", "Correo", "Teléfono", "ID"}

func clientRows(clients []model.Client) [][]string {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{c.Name, c.Email, tui.OrDash(c.Phone), c.ID})
	}
	return rows
}

var batchHeaders = []string{"Título", "Cantidad", "Estados", "Creado", "ID"}

func batchRows(batches []model.Batch) [][]string {
	rows := make([][]string, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, []string{
			b.Title,
			strconv.Itoa(b.Quantity),
			statusCounts(b.KeyStatusCounts),
			tui.Date(b.CreatedAt),
			b.ID,
		})
	}
	return rows
}

func statusCounts(counts []model.KeyStatusCount) string {
	if len(counts) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s %d", tui.StatusBadge(c.State), c.Count))
	}
	return strings.Join(parts, " · ")
}

var keyTypeHeaders = []string{"Nombre", "Descripción", "Permisos", "ID"}

func keyTypeRows(types []model.KeyType) [][]string {
	rows := make([][]string, 0, len(types))
	for _, t := range types {
		rows = append(rows, []string{
			t.Name,
			tui.OrDash(tui.MaxWidth(t.Description, 40)),
			permissionNames(t.Permissions),
			t.ID,
		})
	}
	return rows
}

func permissionNames(perms []model.Permission) string {
	if len(perms) == 0 {
		return "-"
	}
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

var permissionHeaders = []string{"Nombre", "Código", "Descripción", "ID"}

func permissionRows(perms []model.Permission) [][]string {
	rows := make([][]string, 0, len(perms))
	for _, p := range perms {
		rows = append(rows, []string{p.Name, tui.OrDash(p.Code), tui.OrDash(tui.MaxWidth(p.Description, 40)), p.ID})
	}
	return rows
}

var loginHeaders = []string{"Fecha", "IP", "Equipo", "Sistema", "Key", "ID"}

func loginRows(logins []model.KeyLogin) [][]string {
	rows := make([][]string, 0, len(logins))
	for _, l := range logins {
		computer, system := "-", "-"
		if l.ComputerInfo != nil {
			computer, system = tui.OrDash(l.ComputerInfo.ComputerName), tui.OrDash(l.ComputerInfo.OS)
		}
		rows = append(rows, []string{tui.Date(l.Date), tui.OrDash(l.IP), computer, system, l.KeyID, l.ID})
	}
	return rows
}

// renderView writes a filtered or paginated page with its footer and notice.
func renderView[T any](w io.Writer, v filter.View[T], headers []string, rows func([]T) [][]string, empty string) {
	tui.Table(w, headers, rows(v.Records), empty)
	if v.Notice != "" {
		tui.ShowNotice(w, "%s (%d coincidencias)", v.Notice, v.TotalRecords)
		return
	}
	if v.Paginated {
		tui.Footer(w, v.PageNumber, v.TotalPages, v.TotalRecords)
	}
}

func renderKey(w io.Writer, k model.Key) {
	client := "-"
	if k.Client != nil {
		client = fmt.Sprintf("%s <%s>", k.Client.Name, k.Client.Email)
	}
	tui.Table(w, []string{"Campo", "Valor"}, [][]string{
		{"Código", k.Code},
		{"Estado", tui.StatusBadge(k.State)},
		{"Tipo", tui.OrDash(k.KeyType.Name)},
		{"Cliente", client},
		{"Inicio", tui.Date(k.InitDate)},
		{"Vence", tui.Date(k.DueDate)},
		{"Lote", tui.OrDash(k.BatchID)},
		{"Permisos", permissionNames(k.Permissions)},
		{"Actualizada", tui.Date(k.UpdatedAt)},
		{"ID", k.ID},
	}, "")
}
