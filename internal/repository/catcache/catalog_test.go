package catcache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/notabhay/ghibligroceries/internal/cache"
	"github.com/notabhay/ghibligroceries/internal/domain"
)

// --- Mocks ---

type mockReader struct {
	categories       []domain.Category
	categoriesErr    error
	categoriesCalls  int
	product          domain.Product
	productErr       error
	productCalls     int
	byCategory       []domain.Product
	byCategoryCalls  int
	featured         []domain.Product
	featuredCalls    int
}

func (m *mockReader) Categories(_ context.Context) ([]domain.Category, error) {
	m.categoriesCalls++
	return m.categories, m.categoriesErr
}

func (m *mockReader) ProductByID(_ context.Context, _ int) (domain.Product, error) {
	m.productCalls++
	return m.product, m.productErr
}

func (m *mockReader) ProductsByCategory(_ context.Context, _ int) ([]domain.Product, error) {
	m.byCategoryCalls++
	return m.byCategory, nil
}

func (m *mockReader) FeaturedProducts(_ context.Context, _ int) ([]domain.Product, error) {
	m.featuredCalls++
	return m.featured, nil
}

type mockStore struct {
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string][]byte{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, cache.ErrKeyNotFound
	}
	return data, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func newCatalog(inner *mockReader, s *mockStore) *Catalog {
	return New(inner, s, time.Minute, time.Minute, nil, zap.NewNop())
}

// --- Tests ---

func TestCategories_MissPopulatesCache(t *testing.T) {
	inner := &mockReader{categories: []domain.Category{{ID: 1, Name: "Bread"}}}
	store := newMockStore()
	c := newCatalog(inner, store)

	cats, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Bread" {
		t.Fatalf("unexpected categories: %+v", cats)
	}
	if inner.categoriesCalls != 1 {
		t.Errorf("expected one inner call, got %d", inner.categoriesCalls)
	}
	if store.sets != 1 {
		t.Errorf("expected cache population, got %d sets", store.sets)
	}
}

func TestCategories_HitSkipsInner(t *testing.T) {
	inner := &mockReader{}
	store := newMockStore()
	cached, _ := json.Marshal([]domain.Category{{ID: 2, Name: "Dairy"}})
	store.data[keyPrefix+"categories"] = cached
	c := newCatalog(inner, store)

	cats, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Dairy" {
		t.Fatalf("unexpected categories: %+v", cats)
	}
	if inner.categoriesCalls != 0 {
		t.Error("cache hit must not reach the inner catalog")
	}
}

func TestCategories_StoreErrorFallsThrough(t *testing.T) {
	inner := &mockReader{categories: []domain.Category{{ID: 1, Name: "Bread"}}}
	store := newMockStore()
	store.getErr = errors.New("connection refused")
	c := newCatalog(inner, store)

	cats, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("cache failure must not fail the read: %v", err)
	}
	if len(cats) != 1 {
		t.Fatalf("unexpected categories: %+v", cats)
	}
	if inner.categoriesCalls != 1 {
		t.Error("store failure must fall through to the inner catalog")
	}
}

func TestCategories_CorruptEntryFallsThrough(t *testing.T) {
	inner := &mockReader{categories: []domain.Category{{ID: 1, Name: "Bread"}}}
	store := newMockStore()
	store.data[keyPrefix+"categories"] = []byte("not json")
	c := newCatalog(inner, store)

	if _, err := c.Categories(context.Background()); err != nil {
		t.Fatalf("corrupt cache entry must not fail the read: %v", err)
	}
	if inner.categoriesCalls != 1 {
		t.Error("corrupt entry must fall through to the inner catalog")
	}
}

func TestProductByID_ErrorNotCached(t *testing.T) {
	inner := &mockReader{productErr: domain.ErrNotFound}
	store := newMockStore()
	c := newCatalog(inner, store)

	if _, err := c.ProductByID(context.Background(), 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.sets != 0 {
		t.Error("failed lookups must not be cached")
	}
}

func TestProductsByCategory_AlwaysPassesThrough(t *testing.T) {
	inner := &mockReader{byCategory: []domain.Product{{ID: 1, Name: "Milk"}}}
	store := newMockStore()
	c := newCatalog(inner, store)

	for i := 0; i < 2; i++ {
		if _, err := c.ProductsByCategory(context.Background(), 3); err != nil {
			t.Fatal(err)
		}
	}
	if inner.byCategoryCalls != 2 {
		t.Errorf("category listings are uncached, expected 2 inner calls, got %d", inner.byCategoryCalls)
	}
	if store.sets != 0 {
		t.Error("category listings must not populate the cache")
	}
}

func TestFeaturedProducts_SecondReadFromCache(t *testing.T) {
	inner := &mockReader{featured: []domain.Product{{ID: 7, Name: "Oat Milk"}}}
	store := newMockStore()
	c := newCatalog(inner, store)

	for i := 0; i < 2; i++ {
		products, err := c.FeaturedProducts(context.Background(), 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(products) != 1 || products[0].ID != 7 {
			t.Fatalf("unexpected products: %+v", products)
		}
	}
	if inner.featuredCalls != 1 {
		t.Errorf("expected one inner call, got %d", inner.featuredCalls)
	}
}
