// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests:
// a fake remote catalog service, a credential store on a temp dir, and a
// Valkey client for session-flow tests (skipped when unavailable).
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"shopdesk/internal/catalog"
	"shopdesk/internal/catalogapi"
	"shopdesk/internal/creds"
	"shopdesk/internal/middleware"
	"shopdesk/internal/models"
	"shopdesk/internal/session"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testValkeyClient returns a Redis client for session-flow tests on DB 15.
// Skips the test if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// offlineSessionStore builds a session store whose Valkey client is never
// dialed. For tests that exercise code paths not touching sessions.
func offlineSessionStore(t *testing.T) *session.Store {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:1"})
	t.Cleanup(func() { client.Close() })
	return session.NewStore(client, false)
}

func testCredStore(t *testing.T) *creds.Store {
	t.Helper()
	store, err := creds.Open(filepath.Join(t.TempDir(), "credentials.db"))
	if err != nil {
		t.Fatalf("creds.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// fakeCatalog is an in-memory stand-in for the remote catalog service,
// speaking the same routes the real one does.
type fakeCatalog struct {
	mu     sync.Mutex
	nextID int
	items  []models.Product
}

func newFakeCatalog(seed ...models.Product) *fakeCatalog {
	fc := &fakeCatalog{nextID: 1000, items: seed}
	return fc
}

func (fc *fakeCatalog) handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", fc.list)
	r.Post("/", fc.create)
	r.Get("/categories", fc.categories)
	r.Get("/category/{category}", fc.listByCategory)
	r.Get("/{id}", fc.get)
	r.Put("/{id}", fc.replace)
	r.Delete("/{id}", fc.remove)
	return r
}

func (fc *fakeCatalog) list(w http.ResponseWriter, r *http.Request) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	json.NewEncoder(w).Encode(fc.items)
}

func (fc *fakeCatalog) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	fc.mu.Lock()
	defer fc.mu.Unlock()
	for _, p := range fc.items {
		if p.ID == id {
			json.NewEncoder(w).Encode(p)
			return
		}
	}
	http.Error(w, "product not found", http.StatusNotFound)
}

func (fc *fakeCatalog) create(w http.ResponseWriter, r *http.Request) {
	var draft models.Draft
	json.NewDecoder(r.Body).Decode(&draft)
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.nextID++
	p := models.Product{ID: fc.nextID, Title: draft.Title, Price: draft.Price, Description: draft.Description, Category: draft.Category, Image: draft.Image, Rating: draft.Rating}
	fc.items = append(fc.items, p)
	json.NewEncoder(w).Encode(p)
}

func (fc *fakeCatalog) replace(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var draft models.Draft
	json.NewDecoder(r.Body).Decode(&draft)
	p := models.Product{ID: id, Title: draft.Title, Price: draft.Price, Description: draft.Description, Category: draft.Category, Image: draft.Image, Rating: draft.Rating}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	for i := range fc.items {
		if fc.items[i].ID == id {
			fc.items[i] = p
		}
	}
	json.NewEncoder(w).Encode(p)
}

func (fc *fakeCatalog) remove(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	fc.mu.Lock()
	defer fc.mu.Unlock()
	kept := fc.items[:0]
	for _, p := range fc.items {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	fc.items = kept
	json.NewEncoder(w).Encode(map[string]int{"id": id})
}

func (fc *fakeCatalog) categories(w http.ResponseWriter, r *http.Request) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	seen := map[string]bool{}
	cats := []string{}
	for _, p := range fc.items {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	json.NewEncoder(w).Encode(cats)
}

func (fc *fakeCatalog) listByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	fc.mu.Lock()
	defer fc.mu.Unlock()
	matched := []models.Product{}
	for _, p := range fc.items {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	json.NewEncoder(w).Encode(matched)
}

// seedProducts is the fixture the fake catalog starts with.
func seedProducts() []models.Product {
	return []models.Product{
		{ID: 1, Title: "Slim Backpack", Price: 109.95, Description: "Fits 15 inch laptops", Category: "men's clothing", Image: "https://img.example/1.png"},
		{ID: 2, Title: "Premium Shirt", Price: 22.3, Description: "Slim fitting casual wear", Category: "men's clothing", Image: "https://img.example/2.png"},
		{ID: 3, Title: "Portable SSD", Price: 114, Description: "USB 3.0 external drive", Category: "electronics", Image: "https://img.example/3.png"},
	}
}

// newProductsRouter wires a Products handler group against a fake remote
// catalog and mounts it on the product routes. Response caching is off.
func newProductsRouter(t *testing.T, seed ...models.Product) *chi.Mux {
	t.Helper()

	srv := httptest.NewServer(newFakeCatalog(seed...).handler())
	t.Cleanup(srv.Close)

	client := catalogapi.New(srv.URL, 5*time.Second)
	container := catalog.New(client)
	p := NewProducts(container, nil)

	r := chi.NewRouter()
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", p.List)
		r.Post("/", p.Create)
		r.Get("/category/{category}", p.ListByCategory)
		r.Get("/{id}", p.Get)
		r.Put("/{id}", p.Update)
		r.Delete("/{id}", p.Delete)
	})
	r.Get("/api/categories", p.Categories)
	return r
}

// doJSON performs a request with an optional JSON body and decodes the
// response into out when it is non-nil.
func doJSON(t *testing.T, h http.Handler, method, target, body string, out any) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if out != nil && w.Code < 300 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w
}

// withSession attaches authenticated session data to a request context,
// the way LoadSession does for a real session cookie.
func withSession(r *http.Request, username, email string) *http.Request {
	data := &session.Data{Username: username, Email: email, CreatedAt: time.Now()}
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, data))
}
