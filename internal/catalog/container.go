// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog holds the in-memory product collection and the state
// around it: category set, selection, filters, and the status of the last
// asynchronous command. Commands orchestrate calls to the remote catalog
// client and apply their results in a single locked step; derived queries
// are pure reads over the current state.
//
// Commands are not serialized against each other. When two commands
// overlap, the status and error fields reflect whichever finished last.
// This mirrors the management UI's one-operation-at-a-time usage; callers
// that need stricter ordering must provide it themselves.
package catalog

import (
	"context"
	"strings"
	"sync"

	"shopdesk/internal/models"
)

// AllCategories is the sentinel category filter meaning "no filter".
const AllCategories = "all"

// Status describes the lifecycle of the most recent asynchronous command.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Client is the narrow interface the container needs from the remote
// catalog service. *catalogapi.Client satisfies it.
type Client interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id int) (models.Product, error)
	Create(ctx context.Context, draft models.Draft) (models.Product, error)
	Replace(ctx context.Context, id int, draft models.Draft) (models.Product, error)
	Delete(ctx context.Context, id int) error
	Categories(ctx context.Context) ([]string, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
}

// Container owns the in-memory catalog state. Create one per application
// with New; there is no package-level instance.
type Container struct {
	client Client

	mu         sync.Mutex
	items      []models.Product
	categories []string
	// explicitCategories is set once LoadCategories has replaced the
	// category set; after that, LoadAll no longer derives categories from
	// the collection.
	explicitCategories bool

	// Selection is a weak reference: the ID is resolved against the
	// current collection on read, so deleting the record invalidates it.
	// selectedCopy keeps the fetched record for IDs not present in the
	// collection (direct LoadByID without a prior LoadAll).
	selectedID   int
	selectedSet  bool
	selectedCopy models.Product

	searchTerm     string
	categoryFilter string

	status  Status
	lastErr error

	// version increments on every state mutation and keys the memoized
	// filtered view.
	version     uint64
	filtered    []models.Product
	filteredVer uint64
	filteredOK  bool
}

// New creates a container bound to the given remote client. The initial
// status is idle and the category filter is the AllCategories sentinel.
func New(client Client) *Container {
	return &Container{
		client:         client,
		status:         StatusIdle,
		categoryFilter: AllCategories,
	}
}

// begin marks a new command as in flight, clearing any previous error.
func (c *Container) begin() {
	c.mu.Lock()
	c.status = StatusPending
	c.lastErr = nil
	c.bump()
	c.mu.Unlock()
}

// fail records a command failure. State touched by the command is left as
// it was before the command started. Callers must hold c.mu.
func (c *Container) fail(err error) {
	c.status = StatusFailed
	c.lastErr = err
	c.bump()
}

// succeed records a command success. Callers must hold c.mu.
func (c *Container) succeed() {
	c.status = StatusSucceeded
	c.bump()
}

// bump invalidates the memoized filtered view. Callers must hold c.mu.
func (c *Container) bump() {
	c.version++
	c.filteredOK = false
}

// LoadAll fetches the full product collection from the remote service.
// On success the collection is replaced wholesale and, unless an explicit
// category list has been loaded, the category set is re-derived from the
// collection. On failure the previous collection stays untouched.
func (c *Container) LoadAll(ctx context.Context) error {
	c.begin()
	items, err := c.client.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(err)
		return err
	}
	c.items = items
	if !c.explicitCategories {
		c.categories = dedupCategories(items)
	}
	c.succeed()
	return nil
}

// LoadByID fetches one product and records it as the selected product.
// On failure the previous selection stays untouched.
func (c *Container) LoadByID(ctx context.Context, id int) (models.Product, error) {
	c.begin()
	p, err := c.client.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(err)
		return models.Product{}, err
	}
	c.selectedID = p.ID
	c.selectedSet = true
	c.selectedCopy = p
	c.succeed()
	return p, nil
}

// LoadByCategory replaces the collection with the remote's listing for one
// category. The category set is left alone: deriving it from a narrowed
// collection would discard known categories.
func (c *Container) LoadByCategory(ctx context.Context, category string) error {
	c.begin()
	items, err := c.client.ListByCategory(ctx, category)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(err)
		return err
	}
	c.items = items
	c.succeed()
	return nil
}

// Create sends a new draft to the remote service and, on success, appends
// the server-assigned record at the back of the collection. An unseen
// category joins the category set.
func (c *Container) Create(ctx context.Context, draft models.Draft) (models.Product, error) {
	c.begin()
	p, err := c.client.Create(ctx, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(err)
		return models.Product{}, err
	}
	c.items = append(c.items, p)
	if p.Category != "" && !containsString(c.categories, p.Category) {
		c.categories = append(c.categories, p.Category)
	}
	c.succeed()
	return p, nil
}

// Update sends a whole-record replacement and, on success, swaps the
// matching collection entry in place. When no entry matches the ID the
// collection is left unchanged; the remote service decided the outcome
// and the container does not synthesize a local not-found.
func (c *Container) Update(ctx context.Context, id int, draft models.Draft) (models.Product, error) {
	c.begin()
	p, err := c.client.Replace(ctx, id, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(err)
		return models.Product{}, err
	}
	for i := range c.items {
		if c.items[i].ID == p.ID {
			c.items[i] = p
			break
		}
	}
	c.succeed()
	return p, nil
}

// Remove deletes a product by ID. Removing an ID that is not in the
// collection is a no-op; a selection pointing at the removed ID is
// cleared.
func (c *Container) Remove(ctx context.Context, id int) error {
	c.begin()
	err := c.client.Delete(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(err)
		return err
	}
	kept := c.items[:0]
	for _, p := range c.items {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.items = kept
	if c.selectedSet && c.selectedID == id {
		c.selectedSet = false
	}
	c.succeed()
	return nil
}

// LoadCategories fetches the canonical category list and replaces the
// category set wholesale. Derivation from the collection stops once an
// explicit list has been loaded.
func (c *Container) LoadCategories(ctx context.Context) error {
	c.begin()
	cats, err := c.client.Categories(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(err)
		return err
	}
	c.categories = dedupStrings(cats)
	c.explicitCategories = true
	c.succeed()
	return nil
}

// SetSearchTerm updates the search filter. Immediate; no remote call.
func (c *Container) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searchTerm == term {
		return
	}
	c.searchTerm = term
	c.bump()
}

// SetCategoryFilter updates the category filter. Immediate; no remote call.
func (c *Container) SetCategoryFilter(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.categoryFilter == category {
		return
	}
	c.categoryFilter = category
	c.bump()
}

// ResetFilters clears the search term and restores the AllCategories
// sentinel.
func (c *Container) ResetFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searchTerm == "" && c.categoryFilter == AllCategories {
		return
	}
	c.searchTerm = ""
	c.categoryFilter = AllCategories
	c.bump()
}

// ClearSelected drops the selected-product reference.
func (c *Container) ClearSelected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.selectedSet {
		return
	}
	c.selectedSet = false
	c.bump()
}

// Products returns a copy of the current collection.
func (c *Container) Products() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Product, len(c.items))
	copy(out, c.items)
	return out
}

// Categories returns a copy of the current category set: the explicit
// remote list when one has been loaded, the collection-derived set
// otherwise. Never contains duplicates.
func (c *Container) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// UniqueCategories returns the distinct categories present in the current
// collection, in first-seen order, independent of any explicitly loaded
// list.
func (c *Container) UniqueCategories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return dedupCategories(c.items)
}

// FilteredProducts returns the subset of the collection matching the
// active filters: the search term must appear case-insensitively in the
// title, description, or category, AND the category must equal the filter
// exactly unless the filter is the AllCategories sentinel. An empty term
// matches everything. The result is memoized against the state version,
// so repeated reads of unchanged state return the same slice; callers
// must not mutate it.
func (c *Container) FilteredProducts() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filteredOK && c.filteredVer == c.version {
		return c.filtered
	}

	term := strings.ToLower(c.searchTerm)
	out := make([]models.Product, 0, len(c.items))
	for _, p := range c.items {
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		if c.categoryFilter != AllCategories && p.Category != c.categoryFilter {
			continue
		}
		out = append(out, p)
	}

	c.filtered = out
	c.filteredVer = c.version
	c.filteredOK = true
	return out
}

// Selected resolves the weak selection reference against the current
// collection, falling back to the last-fetched copy for records that were
// never part of the collection. Returns nil when nothing is selected.
func (c *Container) Selected() *models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.selectedSet {
		return nil
	}
	for i := range c.items {
		if c.items[i].ID == c.selectedID {
			p := c.items[i]
			return &p
		}
	}
	p := c.selectedCopy
	return &p
}

// Status reports the lifecycle state of the most recent command.
func (c *Container) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Err returns the error recorded by the last failed command, or nil.
func (c *Container) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SearchTerm returns the active search term.
func (c *Container) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchTerm
}

// CategoryFilter returns the active category filter.
func (c *Container) CategoryFilter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categoryFilter
}

// matchesTerm reports whether the lowercased term is a substring of the
// product's title, description, or category.
func matchesTerm(p models.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(strings.ToLower(p.Category), term)
}

// dedupCategories extracts the distinct category values of a collection
// in first-seen order.
func dedupCategories(items []models.Product) []string {
	cats := make([]string, 0, len(items))
	for _, p := range items {
		if p.Category != "" {
			cats = append(cats, p.Category)
		}
	}
	return dedupStrings(cats)
}

// dedupStrings removes duplicates while preserving first-seen order.
func dedupStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// containsString reports whether s is present in list.
func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
