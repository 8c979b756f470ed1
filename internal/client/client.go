// Package client is a typed HTTP client for the catalog REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Product mirrors the API product representation.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	StockQuantity int       `json:"stock_quantity"`
	ImageURL      *string   `json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductInput is the body sent on create and update. A nil number is sent
// as null, which the API rejects on create and ignores on update.
type ProductInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         *float64 `json:"price"`
	Category      string   `json:"category"`
	StockQuantity *int     `json:"stock_quantity"`
	ImageURL      *string  `json:"image_url,omitempty"`
}

// ListOptions controls paging and filtering. Zero values use the API defaults.
type ListOptions struct {
	Skip     int
	Limit    int
	Category string
}

// FieldError is one rejected field reported by the API.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Detail     string
	Fields     []FieldError
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// TransportError is returned when the API could not be reached or answered garbage.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// APIClient talks to the catalog API at baseURL.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// New creates an APIClient. A nil httpClient gets a client with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

func (c *APIClient) ListProducts(ctx context.Context, opts ListOptions) ([]Product, error) {
	q := url.Values{}
	if opts.Skip > 0 {
		q.Set("skip", strconv.Itoa(opts.Skip))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Category != "" {
		q.Set("category", opts.Category)
	}

	path := "/api/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	products := []Product{}
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *APIClient) ListProductsByCategory(ctx context.Context, category string, opts ListOptions) ([]Product, error) {
	q := url.Values{}
	if opts.Skip > 0 {
		q.Set("skip", strconv.Itoa(opts.Skip))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/api/products/category/" + url.PathEscape(category)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	products := []Product{}
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *APIClient) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *APIClient) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodPost, "/api/products", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *APIClient) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *APIClient) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil)
}

// Health calls the API liveness endpoint.
func (c *APIClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: "decode " + method + " " + path + " response", Err: err}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Fields []FieldError    `json:"fields"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(raw, &payload); err != nil {
		apiErr.Detail = strings.TrimSpace(string(raw))
		return apiErr
	}

	// detail is normally a string but some servers send structured detail
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		apiErr.Detail = detail
	} else if len(payload.Detail) > 0 {
		apiErr.Detail = string(payload.Detail)
	}
	apiErr.Fields = payload.Fields
	return apiErr
}
