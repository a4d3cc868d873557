// Package sdk is a small Go client for the GhibliGroceries storefront API.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/notabhay/ghibligroceries/internal/domain"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// SearchResult is the outcome of a search call.
type SearchResult struct {
	Products      []domain.Product `json:"products"`
	TotalResults  int              `json:"totalResults"`
	SearchTerm    string           `json:"searchTerm"`
	CorrectedTerm string           `json:"correctedTerm"`
	Fallback      bool             `json:"fallback"`
}

// HealthReport is the aggregated health of the API and its components.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Client talks to a GhibliGroceries API server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search runs an AI-enhanced product search.
func (c *Client) Search(ctx context.Context, query string) (SearchResult, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return SearchResult{}, fmt.Errorf("encode search request: %w", err)
	}

	var out SearchResult
	if err := c.do(ctx, http.MethodPost, "/api/ai-search", body, &out); err != nil {
		return SearchResult{}, err
	}
	return out, nil
}

// Categories lists the store's product categories.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var out struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// CategoryProducts lists the products of one category.
func (c *Client) CategoryProducts(ctx context.Context, categoryID int) ([]domain.Product, error) {
	var out struct {
		Products []domain.Product `json:"products"`
	}
	path := "/api/categories/" + strconv.Itoa(categoryID) + "/products"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// Product fetches one product by ID.
func (c *Client) Product(ctx context.Context, id int) (domain.Product, error) {
	var out struct {
		Product domain.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products/"+strconv.Itoa(id), nil, &out); err != nil {
		return domain.Product{}, err
	}
	return out.Product, nil
}

// Featured fetches n featured products. n <= 0 uses the server default.
func (c *Client) Featured(ctx context.Context, n int) ([]domain.Product, error) {
	path := "/api/products/featured"
	if n > 0 {
		path += "?count=" + strconv.Itoa(n)
	}
	var out struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// Health fetches the API health report. A degraded or unhealthy report is
// returned alongside a nil error; only transport and decode failures err.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return HealthReport{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return HealthReport{}, fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	// The health endpoint answers 503 with a body when unhealthy.
	var report HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return HealthReport{}, fmt.Errorf("decode health response: %w", err)
	}
	return report, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
