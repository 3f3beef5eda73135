package tui

import (
	"bytes"
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withoutTTY(t *testing.T) {
	t.Helper()
	original := HasTTY
	HasTTY = false
	t.Cleanup(func() { HasTTY = original })
}

func TestHasTTY(t *testing.T) {
	assert.Contains(t, []bool{true, false}, HasTTY)
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"Código", "Estado"}, [][]string{{"ABC-1", "Activa"}, {"ABC-2", "Expirada"}}, "Sin keys")
	out := buf.String()
	assert.Contains(t, out, "Código")
	assert.Contains(t, out, "ABC-1")
	assert.Contains(t, out, "Expirada")
	assert.NotContains(t, out, "Sin keys")
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"Código"}, nil, "Sin keys")
	assert.Contains(t, buf.String(), "Sin keys")
}

func TestFooter(t *testing.T) {
	var buf bytes.Buffer
	Footer(&buf, 2, 0, 0)
	assert.Contains(t, buf.String(), "Página 2 de 1 · 0 registros")
}

func TestStatusBadge(t *testing.T) {
	for _, s := range model.Statuses {
		assert.Contains(t, StatusBadge(s), s.Label())
	}
	assert.Equal(t, "DESCONOCIDO", StatusBadge(model.Status("DESCONOCIDO")))
	assert.Len(t, statusColors, len(model.Statuses))
}

func TestMaxWidth(t *testing.T) {
	assert.Equal(t, "abc", MaxWidth("abc", 5))
	assert.Equal(t, "ab...", MaxWidth("abcdefgh", 5))
	assert.Equal(t, "añ...", MaxWidth("añoñoño", 5))
	assert.Equal(t, "ab", MaxWidth("abcdef", 2))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "2024-05-01", Date("2024-05-01T10:00:00Z"))
	assert.Equal(t, "-", Date(""))
}

func TestShowSpinnerWithoutTTY(t *testing.T) {
	withoutTTY(t)
	called := false
	err := ShowSpinner(context.Background(), "Cargando", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	boom := errors.New("boom")
	err = ShowSpinner(context.Background(), "Cargando", func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestLoad(t *testing.T) {
	withoutTTY(t)
	n, err := Load(context.Background(), "Cargando", func(ctx context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestPromptsRequireTerminal(t *testing.T) {
	withoutTTY(t)
	_, _, err := LoginPrompt("")
	assert.ErrorIs(t, err, ErrNoTerminal)
	_, err = EditKey(form.Values{}, testLookups())
	assert.ErrorIs(t, err, ErrNoTerminal)
	ok, err := Ask("¿Eliminar?", true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMessagesWriteToWriter(t *testing.T) {
	var buf bytes.Buffer
	ShowSuccess(&buf, "Key %s actualizada", "ABC")
	ShowError(&buf, "falló")
	ShowNotice(&buf, "aviso")
	ShowWarning(&buf, "cuidado")
	out := buf.String()
	for _, s := range []string{"Key ABC actualizada", "falló", "aviso", "cuidado"} {
		assert.Contains(t, out, s)
	}
}
