// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalogapi is the HTTP client for the remote product catalog
// service. The remote service is the source of truth for all product
// records; this package only maps requests and responses and normalizes
// failures into *RemoteError values. It performs no retries and attaches
// no interpretation to server error payloads.
package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"shopdesk/internal/models"
)

// DefaultTimeout bounds every catalog request when the caller's context
// carries no earlier deadline.
const DefaultTimeout = 15 * time.Second

// RemoteError is the normalized failure for any catalog request that did
// not produce a 2xx response. Payload carries the raw server body when one
// was returned; StatusCode is zero for transport-level failures.
type RemoteError struct {
	StatusCode int
	Payload    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("catalog request failed: %s", e.Payload)
	}
	if e.Payload == "" {
		return fmt.Sprintf("catalog service error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("catalog service error (status %d): %s", e.StatusCode, e.Payload)
}

// Client issues read/write operations against the remote catalog service.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a catalog client for the given base URL (e.g.
// "https://fakestoreapi.com/products"). A zero timeout falls back to
// DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// List fetches the full product collection.
func (c *Client) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get fetches a single product by its server-assigned ID.
func (c *Client) Get(ctx context.Context, id int) (models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodGet, "/"+strconv.Itoa(id), nil, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Create sends a new product draft; the response carries the
// server-assigned ID.
func (c *Client) Create(ctx context.Context, draft models.Draft) (models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodPost, "", draft, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Replace sends a whole-record replacement for an existing product.
func (c *Client) Replace(ctx context.Context, id int, draft models.Draft) (models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodPut, "/"+strconv.Itoa(id), draft, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Delete removes a product by ID.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/"+strconv.Itoa(id), nil, nil)
}

// Categories fetches the canonical category list.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListByCategory fetches the products belonging to one category.
func (c *Client) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/category/"+url.PathEscape(category), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// do performs one HTTP round trip. A non-nil body is JSON-encoded; a
// non-nil out receives the decoded 2xx response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("catalog marshal: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &RemoteError{Payload: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{StatusCode: resp.StatusCode, Payload: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{StatusCode: resp.StatusCode, Payload: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("catalog unmarshal: %w", err)
	}
	return nil
}
