// Package httpapi exposes the storefront JSON API over chi.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/notabhay/ghibligroceries/internal/domain"
	healthuc "github.com/notabhay/ghibligroceries/internal/usecase/health"
)

// Searcher resolves search queries.
type Searcher interface {
	Search(ctx context.Context, query string) (domain.SearchResult, error)
}

// Browser serves the catalog browsing surface.
type Browser interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Product(ctx context.Context, id int) (domain.Product, error)
	CategoryProducts(ctx context.Context, categoryID int) ([]domain.Product, error)
	Featured(ctx context.Context, n int) ([]domain.Product, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// statusMapping pairs a domain sentinel with its HTTP rendering.
type statusMapping struct {
	sentinel error
	status   int
	message  string
}

// Server holds the API handlers and their collaborators.
type Server struct {
	search   Searcher
	browse   Browser
	health   HealthChecker
	logger   *zap.Logger
	mappings []statusMapping
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, browse Browser, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		search: search,
		browse: browse,
		health: health,
		logger: logger,
		mappings: []statusMapping{
			{domain.ErrEmptyQuery, http.StatusBadRequest, "Search query is required"},
			{domain.ErrSearchUnavailable, http.StatusServiceUnavailable, "AI search is temporarily unavailable"},
			{domain.ErrNotFound, http.StatusNotFound, "Resource not found"},
		},
	}
}

// Routes mounts every API endpoint on a fresh router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/api/ai-search", s.handleSearch)
	r.Get("/api/ai-search", s.handleSearch)
	r.Get("/api/categories", s.handleCategories)
	r.Get("/api/categories/{categoryID}/products", s.handleCategoryProducts)
	r.Get("/api/products/featured", s.handleFeatured)
	r.Get("/api/products/{productID}", s.handleProduct)
	r.Get("/api/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	return r
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Success       bool             `json:"success"`
	Products      []domain.Product `json:"products"`
	TotalResults  int              `json:"totalResults"`
	SearchTerm    string           `json:"searchTerm"`
	CorrectedTerm string           `json:"correctedTerm,omitempty"`
	Fallback      bool             `json:"fallback,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleSearch serves the AI-enhanced search endpoint. The query arrives
// in the JSON body; the query string parameter is kept for older clients.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if r.Body != nil {
		// A missing or malformed body is not an error on its own; the
		// query may still arrive via the URL.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Query == "" {
		req.Query = r.URL.Query().Get("query")
	}

	result, err := s.search.Search(r.Context(), req.Query)
	if err != nil {
		s.writeSearchError(w, err)
		return
	}

	products := result.Products
	if products == nil {
		products = []domain.Product{}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Success:       true,
		Products:      products,
		TotalResults:  result.Total,
		SearchTerm:    result.SearchTerm,
		CorrectedTerm: result.CorrectedTerm,
		Fallback:      result.Fallback,
	})
}

// handleCategories serves GET /api/categories.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.browse.Categories(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"categories": cats,
	})
}

// handleCategoryProducts serves GET /api/categories/{categoryID}/products.
func (s *Server) handleCategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	products, err := s.browse.CategoryProducts(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"products": products,
	})
}

// handleProduct serves GET /api/products/{productID}.
func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := s.browse.Product(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"product": product,
	})
}

// handleFeatured serves GET /api/products/featured. An absent or invalid
// count falls back to the service default.
func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			count = n
		}
	}

	products, err := s.browse.Featured(r.Context(), count)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"products": products,
	})
}

// handleHealth serves GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// writeSearchError renders a search failure. Unmapped errors collapse to
// a generic message so internals stay out of responses.
func (s *Server) writeSearchError(w http.ResponseWriter, err error) {
	for _, m := range s.mappings {
		if errors.Is(err, m.sentinel) {
			s.logger.Warn("Search request failed", zap.Error(err))
			writeError(w, m.status, m.message)
			return
		}
	}
	s.logger.Error("Search request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "An error occurred during search")
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	for _, m := range s.mappings {
		if errors.Is(err, m.sentinel) {
			s.logger.Warn("Request failed", zap.Error(err))
			writeError(w, m.status, m.message)
			return
		}
	}
	s.logger.Error("Request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}
