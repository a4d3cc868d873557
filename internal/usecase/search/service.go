// Package search orchestrates the AI-enhanced product search pipeline:
// prompt construction, model call, response extraction, and the ranked
// catalog query, with a deterministic text-search fallback.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/notabhay/ghibligroceries/internal/ai"
	"github.com/notabhay/ghibligroceries/internal/domain"
	"github.com/notabhay/ghibligroceries/internal/metrics"
)

const defaultLimit = 20

// Service resolves raw queries into ranked results. It holds no
// per-request state, so one instance serves concurrent requests.
type Service struct {
	catalog         Catalog
	enhancer        Enhancer
	fallbackEnabled bool
	limit           int
	logger          *zap.Logger
}

// New creates a search service with fallback enabled and the default
// result limit.
func New(catalog Catalog, enhancer Enhancer, logger *zap.Logger) *Service {
	return &Service{
		catalog:         catalog,
		enhancer:        enhancer,
		fallbackEnabled: true,
		limit:           defaultLimit,
		logger:          logger,
	}
}

// WithFallback sets whether the plain text search runs when the AI path
// fails. With fallback disabled those failures surface as
// domain.ErrSearchUnavailable.
func (s *Service) WithFallback(enabled bool) *Service {
	s.fallbackEnabled = enabled
	return s
}

// WithLimit sets the maximum result count per search.
func (s *Service) WithLimit(limit int) *Service {
	if limit > 0 {
		s.limit = limit
	}
	return s
}

// Search resolves a raw query into a ranked result set.
//
// The request walks a fixed path: reject blank input, build a prompt from
// the current categories, call the AI upstream, extract its parameters,
// run the enhanced catalog query. Any AI-path failure diverts to the
// fallback text search when enabled. A catalog failure on the enhanced
// query re-enters the fallback exactly once; a failure of the fallback
// itself is terminal.
func (s *Service) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		metrics.SearchRequestsTotal.WithLabelValues("rejected").Inc()
		return domain.SearchResult{}, domain.ErrEmptyQuery
	}

	s.logger.Info("AI search initiated", zap.String("query", query))

	params, err := s.enhance(ctx, query)
	if err != nil {
		return s.fallback(ctx, query, err)
	}

	products, err := s.catalog.SearchEnhanced(ctx, params, s.limit)
	if err != nil {
		s.logger.Error("Enhanced catalog search failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return s.fallback(ctx, query, err)
	}

	s.logger.Info("Enhanced search completed",
		zap.String("original_query", query),
		zap.String("corrected_query", params.CorrectedQuery),
		zap.Int("keywords", len(params.Keywords)),
		zap.Int("suggested_categories", len(params.Categories)),
		zap.Int("results", len(products)),
	)
	metrics.SearchRequestsTotal.WithLabelValues("enhanced").Inc()

	result := domain.SearchResult{
		Products:   products,
		Total:      len(products),
		SearchTerm: query,
	}
	if params.CorrectedQuery != "" && params.CorrectedQuery != query {
		result.CorrectedTerm = params.CorrectedQuery
	}
	return result, nil
}

// enhance fetches category context, builds the prompt, calls the AI
// upstream, and extracts the enhanced parameters.
func (s *Service) enhance(ctx context.Context, query string) (domain.EnhancedParams, error) {
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return domain.EnhancedParams{}, fmt.Errorf("fetch category context: %w", err)
	}

	raw, err := s.enhancer.Enhance(ctx, ai.BuildPrompt(query, categories))
	if err != nil {
		return domain.EnhancedParams{}, err
	}

	params, err := ai.ExtractParams(raw)
	if err != nil {
		// The upstream answered but the answer carried no usable payload.
		// Logged apart from transport failures so the two can be told apart.
		s.logger.Error("Malformed AI response",
			zap.String("query", query),
			zap.String("raw_response", truncateForLog(raw)),
			zap.Error(err),
		)
		return domain.EnhancedParams{}, err
	}
	return params, nil
}

// fallback runs the plain text search after an AI-path or catalog
// failure. cause is the error that diverted the request here.
//
// With fallback disabled the request terminates, and the cause decides
// how: a failed AI path is a degraded service, a failed catalog query is
// a server fault.
func (s *Service) fallback(ctx context.Context, query string, cause error) (domain.SearchResult, error) {
	if !s.fallbackEnabled {
		if errors.Is(cause, domain.ErrAIUnavailable) || errors.Is(cause, domain.ErrAIMalformed) {
			metrics.SearchRequestsTotal.WithLabelValues("unavailable").Inc()
			return domain.SearchResult{}, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, cause)
		}
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return domain.SearchResult{}, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, cause)
	}

	s.logger.Info("Falling back to traditional search",
		zap.String("query", query),
		zap.String("reason", failureCategory(cause)),
	)

	products, err := s.catalog.SearchByText(ctx, query, s.limit)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return domain.SearchResult{}, fmt.Errorf("fallback search: %w", err)
	}

	metrics.SearchRequestsTotal.WithLabelValues("fallback").Inc()
	return domain.SearchResult{
		Products:   products,
		Total:      len(products),
		SearchTerm: query,
		Fallback:   true,
	}, nil
}

func failureCategory(err error) string {
	switch {
	case errors.Is(err, domain.ErrAIMalformed):
		return "malformed_response"
	case errors.Is(err, domain.ErrAIUnavailable):
		return "upstream_unavailable"
	default:
		return "catalog_error"
	}
}

const rawResponseLogLimit = 2048

func truncateForLog(s string) string {
	if len(s) > rawResponseLogLimit {
		return s[:rawResponseLogLimit]
	}
	return s
}
