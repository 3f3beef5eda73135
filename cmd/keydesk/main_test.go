package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keydesk/keydesk/filter"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/model"
	"github.com/keydesk/keydesk/session"
	"github.com/keydesk/keydesk/tui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	tui.HasTTY = false
	os.Exit(m.Run())
}

type harness struct {
	backend     *fakeBackend
	sessionFile string
}

func newHarness(t *testing.T, keys int, signedIn bool) *harness {
	t.Helper()
	t.Chdir(t.TempDir())
	h := &harness{
		backend:     newFakeBackend(t, keys),
		sessionFile: filepath.Join(t.TempDir(), "session.yaml"),
	}
	if signedIn {
		require.NoError(t, session.New(h.sessionFile).SetToken(h.backend.token, ""))
	}
	return h
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--api-url", h.backend.server.URL,
		"--session-file", h.sessionFile,
		"--page-size", "10",
		"--log-level", "none",
	}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandsRequireSession(t *testing.T) {
	h := newHarness(t, 3, false)
	_, err := h.run(t, "", "keys", "list")
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.Zero(t, h.backend.Calls("GET /keys"))
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t, 0, false)

	out, err := h.run(t, "", "login", "--email", "ana@example.com", "--password", "secreto")
	require.NoError(t, err)
	assert.Contains(t, out, "Sesión iniciada como ana@example.com")
	assert.FileExists(t, h.sessionFile)

	out, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "admin")
	assert.NotContains(t, out, h.backend.token)

	_, err = h.run(t, "", "logout")
	require.NoError(t, err)
	assert.NoFileExists(t, h.sessionFile)
}

func TestLoginValidatesBeforeCallingBackend(t *testing.T) {
	h := newHarness(t, 0, false)
	_, err := h.run(t, "", "login", "--email", "no-es-correo", "--password", "x")
	var verr *form.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
	assert.Zero(t, h.backend.Calls("POST /auth/login"))
}

func TestKeysListPage(t *testing.T) {
	h := newHarness(t, 25, true)
	out, err := h.run(t, "", "keys", "list", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY-0011")
	assert.NotContains(t, out, "KEY-0001")
	assert.Contains(t, out, "Página 2 de 3 · 25 registros")
}

func TestKeysListFilterHidesPagination(t *testing.T) {
	h := newHarness(t, 25, true)
	out, err := h.run(t, "", "keys", "list", "--filter", "key-0003")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY-0003")
	assert.NotContains(t, out, "KEY-0004")
	assert.Contains(t, out, filter.FilterNotice)
	assert.NotContains(t, out, "Página")
}

func TestKeysUpdateSendsOnlyChangedFields(t *testing.T) {
	h := newHarness(t, 3, true)
	out, err := h.run(t, "", "keys", "update", keyID(1), "--state", "inactive", "--client", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Key KEY-0001 actualizada")
	require.Len(t, h.backend.patches, 1)
	assert.Equal(t, map[string]any{"state": "INACTIVE", "client_id": nil}, h.backend.patches[0])
}

func TestKeysUpdateWithoutChanges(t *testing.T) {
	h := newHarness(t, 3, true)
	out, err := h.run(t, "", "keys", "update", keyID(2), "--state", "active", "--due-date", "2025-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, form.NoChangesMessage)
	assert.Zero(t, h.backend.Calls("PATCH /keys/{id}"))
}

func TestKeysUpdateRejectsInvalidDate(t *testing.T) {
	h := newHarness(t, 3, true)
	_, err := h.run(t, "", "keys", "update", keyID(2), "--due-date", "mañana")
	var verr *form.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due_date", verr.Field)
	assert.Zero(t, h.backend.Calls("PATCH /keys/{id}"))
}

func TestKeysDeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t, 3, true)
	out, err := h.run(t, "", "keys", "delete", keyID(1))
	require.NoError(t, err)
	assert.Contains(t, out, "Operación cancelada")
	assert.Zero(t, h.backend.Calls("DELETE /keys/{id}"))

	out, err = h.run(t, "", "keys", "delete", keyID(1), "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Key eliminada")
	assert.Equal(t, 1, h.backend.Calls("DELETE /keys/{id}"))
}

func TestKeysShowNotFound(t *testing.T) {
	h := newHarness(t, 1, true)
	_, err := h.run(t, "", "keys", "show", keyID(9))
	require.Error(t, err)
}

func TestBrowseUsesPageCache(t *testing.T) {
	h := newHarness(t, 25, true)
	out, err := h.run(t, "n\np\nr\n/KEY-0001\nq\n", "browse")
	require.NoError(t, err)

	// page 1, page 2, forced page 1; going back and filtering are cache hits
	assert.Equal(t, 3, h.backend.Calls("GET /keys"))
	assert.Contains(t, out, "Página 2 de 3 · 25 registros")
	assert.Contains(t, out, filter.FilterNotice)
	assert.Contains(t, out, "aciertos 2 · fallos 3")
}

func TestBrowseStopsAtLastPage(t *testing.T) {
	h := newHarness(t, 5, true)
	_, err := h.run(t, "n\nn\ng 0\n", "browse")
	require.NoError(t, err)
	assert.Equal(t, 1, h.backend.Calls("GET /keys"))
}

func TestDashboard(t *testing.T) {
	h := newHarness(t, 4, true)
	out, err := h.run(t, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Keys que vencen este mes")
	assert.Contains(t, out, model.StatusActive.Label())
}

func TestCounterValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "keydesk_store_hits_total"}, []string{"resource"})
	reg.MustRegister(c)
	c.WithLabelValues("keys").Add(3)
	c.WithLabelValues("clients").Inc()
	assert.Equal(t, float64(3), counterValue(reg, "keydesk_store_hits_total", "keys"))
	assert.Zero(t, counterValue(reg, "keydesk_store_misses_total", "keys"))
}

func TestKeyRows(t *testing.T) {
	rows := keyRows([]model.Key{
		{ID: "a", Code: "K1", State: model.StatusExpired},
		{ID: "b", Code: "K2", State: model.StatusPending, Client: &model.ClientInfo{Name: "Acme"}},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0][0])
	assert.Contains(t, rows[0][2], "Expirada")
	assert.Equal(t, "-", rows[0][4])
	assert.Equal(t, "Acme", rows[1][4])
}

func TestKeysUpdateWithoutFlagsNeedsTerminal(t *testing.T) {
	h := newHarness(t, 1, true)
	_, err := h.run(t, "", "keys", "update", keyID(1))
	assert.ErrorIs(t, err, tui.ErrNoTerminal)
	assert.Zero(t, h.backend.Calls("PATCH /keys/{id}"))
}
