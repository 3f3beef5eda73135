package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/keydesk/keydesk/api"
	"github.com/keydesk/keydesk/cache"
	"github.com/keydesk/keydesk/logger"
	"github.com/keydesk/keydesk/model"
)

// fakeBackend is a minimal in-memory license backend.
type fakeBackend struct {
	mu       sync.Mutex
	keys     []model.Key
	requests map[string]int
	bodies   map[string]map[string]any
	fail     map[string]failure
	srv      *httptest.Server
}

type failure struct {
	status int
	body   string
}

func keyID(i int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", i)
}

func newFakeBackend(t *testing.T, n int) *fakeBackend {
	t.Helper()
	b := &fakeBackend{requests: map[string]int{}, bodies: map[string]map[string]any{}, fail: map[string]failure{}}
	for i := 1; i <= n; i++ {
		b.keys = append(b.keys, model.Key{ID: keyID(i), Code: fmt.Sprintf("KEY-%03d", i), State: model.StatusActive})
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/keys", b.listKeys)
	mux.HandleFunc("PATCH /api/v1/keys/{id}", b.patchKey)
	mux.HandleFunc("DELETE /api/v1/keys/{id}", b.record)
	mux.HandleFunc("GET /api/v1/keys/inactive", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r)
		writeJSON(w, model.Paginated[model.Key]{Data: []model.Key{{ID: keyID(99), State: model.StatusInactive}}, Total: 1})
	})
	mux.HandleFunc("POST /api/v1/keys/generate", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r)
		writeJSON(w, model.GeneratedCode{Code: "NEW-CODE"})
	})
	mux.HandleFunc("POST /api/v1/keys/bulk", b.record)
	mux.HandleFunc("GET /api/v1/keys/code/{code}", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r)
		writeJSON(w, model.Key{ID: keyID(1), Code: r.PathValue("code")})
	})
	mux.HandleFunc("POST /api/v1/batches", b.record)
	mux.HandleFunc("GET /api/v1/batches", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r)
		writeJSON(w, model.Paginated[model.Batch]{})
	})
	mux.HandleFunc("PATCH /api/v1/key-types/{id}/permissions", b.record)
	mux.HandleFunc("GET /api/v1/key-types", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r)
		writeJSON(w, model.Paginated[model.KeyType]{Data: []model.KeyType{{ID: keyID(50), Name: "Pro"}}, Total: 1})
	})
	mux.HandleFunc("GET /api/v1/clients", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r)
		writeJSON(w, model.Paginated[model.Client]{Data: []model.Client{{ID: keyID(60), Name: "Acme"}}, Total: 1})
	})
	mux.HandleFunc("POST /api/v1/clients", b.record)
	mux.HandleFunc("GET /api/v1/permissions", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r)
		writeJSON(w, map[string]any{"data": []model.Permission{{ID: keyID(70), Name: "export"}}})
	})
	mux.HandleFunc("GET /api/v1/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r)
		writeJSON(w, map[string]any{"data": model.DashboardStats{TotalKeys: 57, TotalClients: 3}})
	})
	mux.HandleFunc("GET /api/v1/key-logins/key/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r)
		writeJSON(w, []model.KeyLogin{{ID: keyID(80), KeyID: r.PathValue("id"), IP: "10.0.0.1"}})
	})
	b.srv = httptest.NewServer(b.wrap(mux))
	t.Cleanup(b.srv.Close)
	return b
}

// wrap answers with a configured failure before reaching the handlers.
func (b *fakeBackend) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		f, ok := b.fail[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if ok {
			b.record(nil, r)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			w.Write([]byte(f.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *fakeBackend) record(_ http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := r.Method + " " + r.URL.Path
	b.requests[key]++
	if r.Body != nil && r.ContentLength != 0 {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			b.bodies[key] = body
		}
	}
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[key]
}

func (b *fakeBackend) body(key string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[key]
}

func (b *fakeBackend) failWith(key string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[key] = failure{status: status, body: body}
}

func (b *fakeBackend) listKeys(w http.ResponseWriter, r *http.Request) {
	b.record(w, r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 10
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	start := min(offset, len(b.keys))
	end := min(offset+limit, len(b.keys))
	writeJSON(w, model.Paginated[model.Key]{
		Data:   b.keys[start:end],
		Total:  len(b.keys),
		Limit:  limit,
		Offset: offset,
		Pages:  (len(b.keys) + limit - 1) / limit,
	})
}

func (b *fakeBackend) patchKey(w http.ResponseWriter, r *http.Request) {
	b.record(w, r)
	id := r.PathValue("id")
	body := b.body("PATCH " + r.URL.Path)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.keys {
		if b.keys[i].ID != id {
			continue
		}
		if s, ok := body["state"].(string); ok {
			b.keys[i].State = model.Status(s)
		}
		if c, ok := body["code"].(string); ok {
			b.keys[i].Code = c
		}
		writeJSON(w, b.keys[i])
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestService(t *testing.T, b *fakeBackend) *Service {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	c := cache.NewInMemory(ctx)
	t.Cleanup(func() {
		c.Close()
		cancel()
	})
	log := logger.NewTestLogger()
	client := api.New(log, b.srv.URL+"/api/v1", api.StaticToken("test-token"))
	return New(client, c, log)
}
