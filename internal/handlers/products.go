// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shopdesk/internal/cache"
	"shopdesk/internal/catalog"
	"shopdesk/internal/models"
)

// Products groups the product management HTTP handlers. All of them drive
// the catalog state container; reads go through its derived queries.
type Products struct {
	container *catalog.Container
	cache     *cache.CatalogCache // optional; nil disables response caching
}

// NewProducts creates a new Products handler group. cc may be nil when no
// cache is configured.
func NewProducts(container *catalog.Container, cc *cache.CatalogCache) *Products {
	return &Products{
		container: container,
		cache:     cc,
	}
}

// List fetches the catalog and responds with the filtered view. The
// `search` and `category` query parameters set the container's filters;
// omitting them resets the filters, so the plain listing is cacheable.
func (p *Products) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")
	unfiltered := search == "" && category == ""

	if unfiltered {
		if body, ok := p.cached(r, cache.ProductsKey()); ok {
			serveCached(w, body)
			return
		}
	}

	if err := p.container.LoadAll(r.Context()); err != nil {
		writeRemoteError(w, err)
		return
	}

	if category == "" {
		category = catalog.AllCategories
	}
	p.container.SetSearchTerm(search)
	p.container.SetCategoryFilter(category)

	body, err := json.Marshal(p.container.FilteredProducts())
	if err != nil {
		slog.Error("marshal products failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if unfiltered {
		p.store(r, cache.ProductsKey(), body)
	}
	serveJSON(w, http.StatusOK, body)
}

// ListByCategory responds with the remote's listing for one category,
// replacing the container's collection.
func (p *Products) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	key := cache.CategoryListingKey(category)
	if body, ok := p.cached(r, key); ok {
		serveCached(w, body)
		return
	}

	if err := p.container.LoadByCategory(r.Context(), category); err != nil {
		writeRemoteError(w, err)
		return
	}

	body, err := json.Marshal(p.container.Products())
	if err != nil {
		slog.Error("marshal products failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	p.store(r, key, body)
	serveJSON(w, http.StatusOK, body)
}

// Get fetches one product by ID and records it as the container's
// selection.
func (p *Products) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	product, err := p.container.LoadByID(r.Context(), id)
	if err != nil {
		writeRemoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create validates a draft and dispatches the create command. The
// response carries the record with its server-assigned ID.
func (p *Products) Create(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	product, err := p.container.Create(r.Context(), draft)
	if err != nil {
		writeRemoteError(w, err)
		return
	}

	p.invalidate(r)
	writeJSON(w, http.StatusCreated, product)
}

// Update validates a draft and dispatches a whole-record replacement.
func (p *Products) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	product, err := p.container.Update(r.Context(), id, draft)
	if err != nil {
		writeRemoteError(w, err)
		return
	}

	p.invalidate(r)
	writeJSON(w, http.StatusOK, product)
}

// Delete dispatches the remove command.
func (p *Products) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := p.container.Remove(r.Context(), id); err != nil {
		writeRemoteError(w, err)
		return
	}

	p.invalidate(r)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": id})
}

// Categories responds with the category set: the explicit remote list
// once loaded, the collection-derived set otherwise.
func (p *Products) Categories(w http.ResponseWriter, r *http.Request) {
	if body, ok := p.cached(r, cache.CategoriesKey()); ok {
		serveCached(w, body)
		return
	}

	if err := p.container.LoadCategories(r.Context()); err != nil {
		writeRemoteError(w, err)
		return
	}

	body, err := json.Marshal(p.container.Categories())
	if err != nil {
		slog.Error("marshal categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	p.store(r, cache.CategoriesKey(), body)
	serveJSON(w, http.StatusOK, body)
}

// decodeDraft decodes and validates a product draft, writing the error
// response itself when the payload is rejected.
func decodeDraft(w http.ResponseWriter, r *http.Request) (models.Draft, bool) {
	var draft models.Draft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return models.Draft{}, false
	}
	if errs := fieldErrors(draft); errs != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return models.Draft{}, false
	}
	return draft, true
}

// parseID reads the {id} route parameter, writing a 400 when it is not a
// number.
func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func (p *Products) cached(r *http.Request, key string) ([]byte, bool) {
	if p.cache == nil {
		return nil, false
	}
	return p.cache.Get(r.Context(), key)
}

func (p *Products) store(r *http.Request, key string, body []byte) {
	if p.cache == nil {
		return
	}
	p.cache.Set(r.Context(), key, body)
}

func (p *Products) invalidate(r *http.Request) {
	if p.cache == nil {
		return
	}
	p.cache.InvalidateAll(r.Context())
}

// serveJSON writes pre-marshaled JSON.
func serveJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// serveCached writes a cache hit, marking it for observability.
func serveCached(w http.ResponseWriter, body []byte) {
	w.Header().Set("X-Cache", "hit")
	serveJSON(w, http.StatusOK, body)
}
