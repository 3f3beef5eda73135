package form

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/keydesk/keydesk/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	keyTypeID = "0b6f3c1e-2d4a-4f8b-9c7e-5a1d3b2c4e6f"
	clientID  = "5f1d7a3e-8c1b-4b6e-9d2a-1c3e5f7a9b0d"
)

func sampleKey() model.Key {
	return model.Key{
		ID:       "k1",
		Code:     "ABC-123",
		State:    model.StatusActive,
		InitDate: "2025-01-01T00:00:00Z",
		DueDate:  "2025-12-31T00:00:00Z",
		KeyType:  model.KeyType{ID: keyTypeID, Name: "Pro"},
		Client:   &model.ClientInfo{ID: clientID, Name: "Acme"},
	}
}

func TestKeyUpdateDiff(t *testing.T) {
	original := KeyValues(sampleKey())
	submitted := KeyValues(sampleKey())
	submitted["state"] = "INACTIVE"
	submitted["due_date"] = "2025-12-31"

	patch, err := KeyUpdate.Diff(original, submitted)
	require.NoError(t, err)
	assert.Equal(t, Patch{"state": "INACTIVE"}, patch)
}

func TestKeyUpdateDiffNoChanges(t *testing.T) {
	_, err := KeyUpdate.Diff(KeyValues(sampleKey()), KeyValues(sampleKey()))
	assert.True(t, errors.Is(err, ErrNoChanges))
}

func TestKeyUpdateDiffClearsClient(t *testing.T) {
	submitted := KeyValues(sampleKey())
	submitted["client_id"] = ""
	patch, err := KeyUpdate.Diff(KeyValues(sampleKey()), submitted)
	require.NoError(t, err)
	assert.True(t, patch.IsCleared("client_id"))
}

func TestKeyUpdateDiffValidation(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"empty code", "code", ""},
		{"long code", "code", string(make([]byte, 101))},
		{"unknown state", "state", "ARCHIVED"},
		{"bad key type", "key_type_id", "not-a-uuid"},
		{"bad client", "client_id", "nope"},
		{"bad date", "due_date", "2025-13-45"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitted := KeyValues(sampleKey())
			submitted[tt.field] = tt.value
			_, err := KeyUpdate.Diff(KeyValues(sampleKey()), submitted)
			ve, ok := AsValidationError(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidationReportsFirstFailingField(t *testing.T) {
	err := BatchCreate.Validate(map[string]any{
		"title":       "",
		"quantity":    0,
		"key_type_id": "bad",
	})
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "title", ve.Field)
	assert.Equal(t, "title: es obligatorio", ve.Error())
}

func TestBatchCreateClientIDStates(t *testing.T) {
	base := map[string]any{"title": "Lote 1", "quantity": 5, "key_type_id": keyTypeID}
	assert.NoError(t, BatchCreate.Validate(base))

	withNull := map[string]any{"title": "Lote 1", "quantity": 5, "key_type_id": keyTypeID, "client_id": nil}
	assert.NoError(t, BatchCreate.Validate(withNull))

	withBad := map[string]any{"title": "Lote 1", "quantity": 5, "key_type_id": keyTypeID, "client_id": "x"}
	ve, ok := AsValidationError(BatchCreate.Validate(withBad))
	require.True(t, ok)
	assert.Equal(t, "client_id", ve.Field)

	zero := map[string]any{"title": "Lote 1", "quantity": 0, "key_type_id": keyTypeID}
	ve, ok = AsValidationError(BatchCreate.Validate(zero))
	require.True(t, ok)
	assert.Equal(t, "quantity", ve.Field)
}

func TestClientSchemas(t *testing.T) {
	err := ClientCreate.Validate(map[string]any{"email": "a@b.co"})
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "name", ve.Field)

	err = ClientCreate.Validate(map[string]any{"name": "Acme", "email": "not-an-email", "phone": ""})
	ve, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "email", ve.Field)

	assert.NoError(t, ClientUpdate.Validate(map[string]any{"phone": "555-0100"}))

	original := ClientValues(model.Client{Name: "Acme", Email: "a@acme.io", Phone: "1"})
	submitted := Values{"name": "", "email": "a@acme.io", "phone": "1"}
	_, err = ClientUpdate.Diff(original, submitted)
	ve, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "name", ve.Field)
}

func TestKeyTypeSchemas(t *testing.T) {
	assert.NoError(t, KeyTypeCreate.Validate(map[string]any{"name": "Pro", "permission_ids": []string{keyTypeID}}))

	err := KeyTypeCreate.Validate(map[string]any{"name": "Pro", "permission_ids": []string{"x"}})
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "permission_ids", ve.Field)

	long := string(make([]byte, 256))
	patch, err := KeyTypeUpdate.Diff(KeyTypeValues(model.KeyType{Name: "Pro"}), Values{"name": "Pro", "description": long})
	assert.Nil(t, patch)
	ve, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "description", ve.Field)
	assert.Equal(t, "no puede exceder 255 caracteres", ve.Message)
}

func TestBatchUpdateDiff(t *testing.T) {
	original := BatchValues(model.Batch{Title: "Lote", Description: "desc"})
	patch, err := BatchUpdate.Diff(original, Values{"title": "Lote", "description": ""})
	require.NoError(t, err)
	assert.Equal(t, Patch{"description": ""}, patch)
}
