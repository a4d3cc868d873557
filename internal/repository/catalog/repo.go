// Package catalog implements read-only product catalog queries on Postgres.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/notabhay/ghibligroceries/internal/domain"
)

// productSelect is the shared projection: every product query returns the
// same columns with the category name joined in.
const productSelect = `SELECT p.product_id, p.name, COALESCE(p.description, ''), p.price, p.stock_quantity,
	COALESCE(p.image_path, ''), p.category_id, COALESCE(c.category_name, ''), p.is_active
FROM products p
LEFT JOIN categories c ON p.category_id = c.category_id`

// textSearchSQL ranks plain text matches in four tiers: exact name,
// name prefix, name substring, description substring. Ties break on name.
const textSearchSQL = productSelect + `
WHERE lower(p.name) = lower($1)
   OR p.name ILIKE $2
   OR p.name ILIKE $3
   OR p.description ILIKE $3
ORDER BY CASE
	WHEN lower(p.name) = lower($1) THEN 1
	WHEN p.name ILIKE $2 THEN 2
	WHEN p.name ILIKE $3 THEN 3
	WHEN p.description ILIKE $3 THEN 4
	ELSE 5
END, p.name ASC
LIMIT $4`

// Repository executes catalog queries against a Postgres pool.
// All operations are read-only; the catalog schema is owned elsewhere.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New creates a catalog repository.
func New(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	return &Repository{pool: pool, logger: logger}
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping catalog: %w", err)
	}
	return nil
}

// Categories returns the distinct categories that currently have products,
// ordered by name. This doubles as the context list for prompt construction.
func (r *Repository) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT c.category_id, c.category_name
FROM categories c
JOIN products p ON c.category_id = p.category_id
ORDER BY c.category_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	return cats, nil
}

// SearchByText runs the fallback ranked text search over product names and
// descriptions. An empty term yields an empty result without a round-trip.
func (r *Repository) SearchByText(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	if term == "" {
		return nil, nil
	}

	products, err := r.queryProducts(ctx, textSearchSQL, textSearchArgs(term, limit)...)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}

	r.logger.Debug("Text search completed",
		zap.String("term", term),
		zap.Int("results", len(products)),
	)
	return products, nil
}

// SearchEnhanced runs the AI-parameterized search. With categories present
// the filter is category membership and everything else only ranks; without
// them the corrected query and keywords form the filter. Entirely empty
// params yield an empty result without a round-trip.
func (r *Repository) SearchEnhanced(ctx context.Context, params domain.EnhancedParams, limit int) ([]domain.Product, error) {
	if params.IsEmpty() {
		return nil, nil
	}

	sql, args := enhancedQuery(params, limit)

	products, err := r.queryProducts(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("enhanced search: %w", err)
	}

	r.logger.Debug("Enhanced search completed",
		zap.Int("keywords", len(params.Keywords)),
		zap.Int("categories", len(params.Categories)),
		zap.Int("results", len(products)),
	)
	return products, nil
}

// ProductByID returns one product with its category name.
func (r *Repository) ProductByID(ctx context.Context, id int) (domain.Product, error) {
	row := r.pool.QueryRow(ctx, productSelect+" WHERE p.product_id = $1", id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
		}
		return domain.Product{}, fmt.Errorf("query product %d: %w", id, err)
	}
	return p, nil
}

// ProductsByCategory returns the products of a category and its direct
// child categories, ordered by name.
func (r *Repository) ProductsByCategory(ctx context.Context, categoryID int) ([]domain.Product, error) {
	childRows, err := r.pool.Query(ctx, "SELECT category_id FROM categories WHERE parent_id = $1", categoryID)
	if err != nil {
		return nil, fmt.Errorf("query child categories: %w", err)
	}
	defer childRows.Close()

	ids := []int{categoryID}
	for childRows.Next() {
		var id int
		if err := childRows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan child category: %w", err)
		}
		ids = append(ids, id)
	}
	if err := childRows.Err(); err != nil {
		return nil, fmt.Errorf("read child categories: %w", err)
	}

	products, err := r.queryProducts(ctx,
		productSelect+" WHERE p.category_id = ANY($1) ORDER BY p.name ASC", ids)
	if err != nil {
		return nil, fmt.Errorf("query products by category: %w", err)
	}
	return products, nil
}

// FeaturedProducts returns n randomly selected products.
func (r *Repository) FeaturedProducts(ctx context.Context, n int) ([]domain.Product, error) {
	products, err := r.queryProducts(ctx,
		productSelect+" WHERE p.is_active ORDER BY random() LIMIT $1", n)
	if err != nil {
		return nil, fmt.Errorf("query featured products: %w", err)
	}
	return products, nil
}

// textSearchArgs binds a term to textSearchSQL: the exact form, the
// prefix pattern, the substring pattern, and the limit.
func textSearchArgs(term string, limit int) []any {
	return []any{term, term + "%", "%" + term + "%", limit}
}

func (r *Repository) queryProducts(ctx context.Context, sql string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity,
		&p.ImagePath, &p.CategoryID, &p.CategoryName, &p.IsActive,
	)
	return p, err
}
