// Package browse serves the catalog browsing surface: category listings,
// product detail, and the featured strip.
package browse

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/notabhay/ghibligroceries/internal/domain"
)

const (
	defaultFeaturedCount = 2
	maxFeaturedCount     = 12
)

// Service answers catalog browsing requests.
type Service struct {
	catalog          Catalog
	featuredCount    int
	featuredCountMax int
	logger           *zap.Logger
}

// New creates a browse service with the default featured counts.
func New(catalog Catalog, logger *zap.Logger) *Service {
	return &Service{
		catalog:          catalog,
		featuredCount:    defaultFeaturedCount,
		featuredCountMax: maxFeaturedCount,
		logger:           logger,
	}
}

// WithFeaturedCount sets the default size of the featured strip.
func (s *Service) WithFeaturedCount(n int) *Service {
	if n > 0 {
		s.featuredCount = n
	}
	return s
}

// WithMaxFeaturedCount caps the client-requested featured count.
func (s *Service) WithMaxFeaturedCount(n int) *Service {
	if n > 0 {
		s.featuredCountMax = n
	}
	return s
}

// Categories lists every category that has products. An empty catalog
// yields an empty, non-nil slice.
func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.catalog.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return cats, nil
}

// Product returns one product by ID. A non-positive ID resolves to
// domain.ErrNotFound without touching the catalog.
func (s *Service) Product(ctx context.Context, id int) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return s.catalog.ProductByID(ctx, id)
}

// CategoryProducts lists the products of a category and its direct
// children. An unknown category yields an empty listing rather than an
// error; the storefront renders it as an empty shelf.
func (s *Service) CategoryProducts(ctx context.Context, categoryID int) ([]domain.Product, error) {
	if categoryID <= 0 {
		return nil, fmt.Errorf("category %d: %w", categoryID, domain.ErrNotFound)
	}

	products, err := s.catalog.ProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list category %d products: %w", categoryID, err)
	}
	if products == nil {
		products = []domain.Product{}
	}

	s.logger.Debug("Category listing served",
		zap.Int("category_id", categoryID),
		zap.Int("results", len(products)),
	)
	return products, nil
}

// Featured returns n randomly picked active products. n <= 0 falls back
// to the configured default and the count is capped.
func (s *Service) Featured(ctx context.Context, n int) ([]domain.Product, error) {
	if n <= 0 {
		n = s.featuredCount
	}
	if n > s.featuredCountMax {
		n = s.featuredCountMax
	}

	products, err := s.catalog.FeaturedProducts(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("featured products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}
