package model

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("inactive")
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, s)
	assert.Equal(t, "Inactiva", s.Label())

	_, err = ParseStatus("archived")
	assert.True(t, errors.Is(err, ErrUnknownStatus))
	assert.Equal(t, "weird", Status("weird").Label())
}

func TestOptionalThreeStates(t *testing.T) {
	absent, err := json.Marshal(BatchCreate{Title: "t", Quantity: 1, KeyTypeID: "k"})
	require.NoError(t, err)
	assert.NotContains(t, string(absent), "client_id")

	null, err := json.Marshal(BatchCreate{Title: "t", Quantity: 1, KeyTypeID: "k", ClientID: Null[string]()})
	require.NoError(t, err)
	assert.Contains(t, string(null), `"client_id":null`)

	set, err := json.Marshal(BatchCreate{Title: "t", Quantity: 1, KeyTypeID: "k", ClientID: Some("c1")})
	require.NoError(t, err)
	assert.Contains(t, string(set), `"client_id":"c1"`)
}

func TestOptionalUnmarshal(t *testing.T) {
	var v struct {
		A Optional[string] `json:"a"`
		B Optional[string] `json:"b"`
		C Optional[string] `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":null,"b":"x"}`), &v))
	assert.True(t, v.A.IsNull())
	got, ok := v.B.Get()
	assert.True(t, ok)
	assert.Equal(t, "x", got)
	assert.True(t, v.C.IsZero())
}

func TestQueryParamsValues(t *testing.T) {
	v := QueryParams{Limit: 10, Offset: 20, Search: "abc", SearchField: "code"}.Values()
	assert.Equal(t, "10", v.Get("limit"))
	assert.Equal(t, "20", v.Get("offset"))
	assert.Equal(t, "abc", v.Get("search"))
	assert.Equal(t, "code", v.Get("search_field"))
	assert.Empty(t, QueryParams{}.Values())
}
