package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/keydesk/keydesk/model"
	"github.com/stretchr/testify/require"
)

const clientID = "7d9f3b2a-4c1e-4f6a-9b8d-0e2c5a7f1b34"

func keyID(i int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", i)
}

func testToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1",
		"email":   "ana@example.com",
		"name":    "Ana",
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secreto"))
	require.NoError(t, err)
	return tok
}

// fakeBackend serves a fixed set of keys and records the calls it gets.
type fakeBackend struct {
	mu      sync.Mutex
	keys    []model.Key
	calls   map[string]int
	patches []map[string]any
	token   string
	server  *httptest.Server
}

func newFakeBackend(t *testing.T, total int) *fakeBackend {
	t.Helper()
	b := &fakeBackend{calls: map[string]int{}, token: testToken(t)}
	for i := 1; i <= total; i++ {
		k := model.Key{
			ID:       keyID(i),
			Code:     fmt.Sprintf("KEY-%04d", i),
			State:    model.StatusActive,
			InitDate: "2024-01-01T00:00:00Z",
			DueDate:  "2025-01-01",
			KeyType:  model.KeyType{Name: "Pro"},
		}
		if i == 1 {
			k.Client = &model.ClientInfo{ID: clientID, Name: "Acme", Email: "a@acme.io"}
		}
		b.keys = append(b.keys, k)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.count("POST /auth/login")
		writeJSON(w, model.AuthResponse{Token: b.token})
	})
	mux.HandleFunc("GET /keys", func(w http.ResponseWriter, r *http.Request) {
		b.count("GET /keys")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		b.mu.Lock()
		defer b.mu.Unlock()
		end := min(offset+limit, len(b.keys))
		var data []model.Key
		if offset < end {
			data = b.keys[offset:end]
		}
		writeJSON(w, model.Paginated[model.Key]{
			Data:   data,
			Total:  len(b.keys),
			Limit:  limit,
			Offset: offset,
			Pages:  (len(b.keys) + limit - 1) / limit,
		})
	})
	mux.HandleFunc("GET /keys/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.count("GET /keys/{id}")
		if k, ok := b.find(r.PathValue("id")); ok {
			writeJSON(w, k)
			return
		}
		http.Error(w, `{"message":"Key no encontrada"}`, http.StatusNotFound)
	})
	mux.HandleFunc("PATCH /keys/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.count("PATCH /keys/{id}")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.patches = append(b.patches, body)
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /keys/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.count("DELETE /keys/{id}")
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		b.count("GET /dashboard/stats")
		writeJSON(w, map[string]any{"data": model.DashboardStats{
			TotalKeys:         len(b.keys),
			KeysExpiringMonth: 3,
			KeysByStatus:      []model.StatusCount{{Status: "ACTIVE", Count: len(b.keys)}},
		}})
	})
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) find(id string) (model.Key, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range b.keys {
		if k.ID == id {
			return k, true
		}
	}
	return model.Key{}, false
}

func (b *fakeBackend) count(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[route]++
}

func (b *fakeBackend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
