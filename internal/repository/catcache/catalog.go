// Package catcache decorates the catalog with a read-through cache for
// slow-changing reads: categories, product detail, and featured picks.
// Search queries and AI responses are never cached.
package catcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/notabhay/ghibligroceries/internal/cache"
	"github.com/notabhay/ghibligroceries/internal/domain"
)

const keyPrefix = "ghibligroceries:catalog:"

// reader is the consumer interface for the wrapped catalog.
type reader interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	ProductByID(ctx context.Context, id int) (domain.Product, error)
	ProductsByCategory(ctx context.Context, categoryID int) ([]domain.Product, error)
	FeaturedProducts(ctx context.Context, n int) ([]domain.Product, error)
}

// store is the consumer interface for the cache backend.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Catalog is a caching decorator over catalog reads. Cache failures are
// logged and fall through to the inner catalog; they never fail a read.
type Catalog struct {
	inner       reader
	store       store
	categoryTTL time.Duration
	productTTL  time.Duration
	cacheTotal  *prometheus.CounterVec
	logger      *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner reader,
	s store,
	categoryTTL, productTTL time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Catalog {
	return &Catalog{
		inner:       inner,
		store:       s,
		categoryTTL: categoryTTL,
		productTTL:  productTTL,
		cacheTotal:  cacheTotal,
		logger:      logger,
	}
}

// Categories returns the cached category list or reads through.
func (c *Catalog) Categories(ctx context.Context) ([]domain.Category, error) {
	key := keyPrefix + "categories"

	var cached []domain.Category
	if c.getFromCache(ctx, key, &cached) {
		return cached, nil
	}

	cats, err := c.inner.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	c.putToCache(ctx, key, cats, c.categoryTTL)
	return cats, nil
}

// ProductByID returns a cached product or reads through. Missing products
// are not negatively cached.
func (c *Catalog) ProductByID(ctx context.Context, id int) (domain.Product, error) {
	key := keyPrefix + "product:" + strconv.Itoa(id)

	var cached domain.Product
	if c.getFromCache(ctx, key, &cached) {
		return cached, nil
	}

	p, err := c.inner.ProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	c.putToCache(ctx, key, p, c.productTTL)
	return p, nil
}

// ProductsByCategory passes through uncached: category listings page
// against live stock data.
func (c *Catalog) ProductsByCategory(ctx context.Context, categoryID int) ([]domain.Product, error) {
	return c.inner.ProductsByCategory(ctx, categoryID)
}

// FeaturedProducts caches one random pick per TTL window, which also keeps
// the storefront's featured strip stable between page loads.
func (c *Catalog) FeaturedProducts(ctx context.Context, n int) ([]domain.Product, error) {
	key := keyPrefix + "featured:" + strconv.Itoa(n)

	var cached []domain.Product
	if c.getFromCache(ctx, key, &cached) {
		return cached, nil
	}

	products, err := c.inner.FeaturedProducts(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("read featured products: %w", err)
	}
	c.putToCache(ctx, key, products, c.productTTL)
	return products, nil
}

func (c *Catalog) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Catalog) getFromCache(ctx context.Context, key string, out any) bool {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached catalog entry", zap.String("key", key), zap.Error(err))
		}
		c.incCache("miss")
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("Failed to parse cached catalog entry", zap.String("key", key), zap.Error(err))
		c.incCache("miss")
		return false
	}

	c.incCache("hit")
	return true
}

func (c *Catalog) putToCache(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode catalog entry for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, ttl); err != nil {
		c.logger.Warn("Failed to cache catalog entry", zap.String("key", key), zap.Error(err))
	}
}
