package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/notabhay/ghibligroceries/internal/domain"
	healthuc "github.com/notabhay/ghibligroceries/internal/usecase/health"
)

// --- Mocks ---

type mockSearcher struct {
	result domain.SearchResult
	err    error
	query  string
}

func (m *mockSearcher) Search(_ context.Context, query string) (domain.SearchResult, error) {
	m.query = query
	return m.result, m.err
}

type mockBrowser struct {
	categories []domain.Category
	product    domain.Product
	productErr error
	byCategory []domain.Product
	featured   []domain.Product
	featuredN  int
}

func (m *mockBrowser) Categories(_ context.Context) ([]domain.Category, error) {
	return m.categories, nil
}

func (m *mockBrowser) Product(_ context.Context, _ int) (domain.Product, error) {
	return m.product, m.productErr
}

func (m *mockBrowser) CategoryProducts(_ context.Context, _ int) ([]domain.Product, error) {
	return m.byCategory, nil
}

func (m *mockBrowser) Featured(_ context.Context, n int) ([]domain.Product, error) {
	m.featuredN = n
	return m.featured, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestServer(search *mockSearcher, browse *mockBrowser, health *mockHealth) http.Handler {
	if search == nil {
		search = &mockSearcher{}
	}
	if browse == nil {
		browse = &mockBrowser{}
	}
	if health == nil {
		health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	return NewServer(search, browse, health, zap.NewNop()).Routes()
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestSearch_Success(t *testing.T) {
	search := &mockSearcher{result: domain.SearchResult{
		Products:      []domain.Product{{ID: 1, Name: "Sourdough Loaf"}},
		Total:         1,
		SearchTerm:    "fresh bred",
		CorrectedTerm: "fresh bread",
	}}
	h := newTestServer(search, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/ai-search", `{"query": "fresh bred"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if search.query != "fresh bred" {
		t.Errorf("query not forwarded, got %q", search.query)
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.TotalResults != 1 || resp.CorrectedTerm != "fresh bread" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Fallback {
		t.Error("fallback must be unset on the enhanced path")
	}
}

func TestSearch_QueryParamFallback(t *testing.T) {
	search := &mockSearcher{result: domain.SearchResult{SearchTerm: "milk"}}
	h := newTestServer(search, nil, nil)

	doJSON(t, h, http.MethodGet, "/api/ai-search?query=milk", "")

	if search.query != "milk" {
		t.Errorf("expected query from URL parameter, got %q", search.query)
	}
}

func TestSearch_BodyTakesPrecedenceOverParam(t *testing.T) {
	search := &mockSearcher{}
	h := newTestServer(search, nil, nil)

	doJSON(t, h, http.MethodPost, "/api/ai-search?query=param", `{"query": "body"}`)

	if search.query != "body" {
		t.Errorf("body query must win, got %q", search.query)
	}
}

func TestSearch_EmptyQueryIs400(t *testing.T) {
	search := &mockSearcher{err: domain.ErrEmptyQuery}
	h := newTestServer(search, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/ai-search", `{"query": ""}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success || resp.Message != "Search query is required" {
		t.Errorf("unexpected error body: %+v", resp)
	}
	if !strings.Contains(rec.Body.String(), `"message"`) {
		t.Errorf("error envelope must use the message key, got %s", rec.Body.String())
	}
}

func TestSearch_UnavailableIs503(t *testing.T) {
	search := &mockSearcher{err: domain.ErrSearchUnavailable}
	h := newTestServer(search, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/ai-search", `{"query": "milk"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "AI search is temporarily unavailable" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestSearch_UnexpectedErrorIs500WithGenericMessage(t *testing.T) {
	search := &mockSearcher{err: errors.New("pq: connection reset")}
	h := newTestServer(search, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/ai-search", `{"query": "milk"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Error("internal error detail must not leak to clients")
	}
	if !strings.Contains(rec.Body.String(), "An error occurred during search") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestSearch_CatalogUnavailableIs500(t *testing.T) {
	search := &mockSearcher{err: domain.ErrCatalogUnavailable}
	h := newTestServer(search, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/ai-search", `{"query": "milk"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("catalog failures are server errors, expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "An error occurred during search") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestSearch_NilProductsEncodedAsEmptyArray(t *testing.T) {
	search := &mockSearcher{result: domain.SearchResult{SearchTerm: "milk"}}
	h := newTestServer(search, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/ai-search", `{"query": "milk"}`)

	if !strings.Contains(rec.Body.String(), `"products":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestProduct_NotFoundIs404(t *testing.T) {
	browse := &mockBrowser{productErr: domain.ErrNotFound}
	h := newTestServer(nil, browse, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/products/42", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestProduct_NonNumericIDIs400(t *testing.T) {
	h := newTestServer(nil, &mockBrowser{}, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/products/abc", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFeatured_RouteNotShadowedByProductID(t *testing.T) {
	browse := &mockBrowser{featured: []domain.Product{{ID: 9, Name: "Oat Milk"}}}
	h := newTestServer(nil, browse, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/products/featured?count=3", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if browse.featuredN != 3 {
		t.Errorf("count parameter not forwarded, got %d", browse.featuredN)
	}
}

func TestCategories_Success(t *testing.T) {
	browse := &mockBrowser{categories: []domain.Category{{ID: 1, Name: "Bakery"}}}
	h := newTestServer(nil, browse, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/categories", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"category_name":"Bakery"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHealth_UnhealthyIs503(t *testing.T) {
	health := &mockHealth{report: healthuc.Report{
		Status: healthuc.Unhealthy,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckError},
	}}
	h := newTestServer(nil, nil, health)

	rec := doJSON(t, h, http.MethodGet, "/api/health", "")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHealth_DegradedIs200(t *testing.T) {
	health := &mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK, "ai": healthuc.CheckError},
	}}
	h := newTestServer(nil, nil, health)

	rec := doJSON(t, h, http.MethodGet, "/api/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("degraded still serves traffic, expected 200, got %d", rec.Code)
	}
}
