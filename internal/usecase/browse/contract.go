package browse

import (
	"context"

	"github.com/notabhay/ghibligroceries/internal/domain"
)

// Catalog defines the product store contract for browsing operations.
type Catalog interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	ProductByID(ctx context.Context, id int) (domain.Product, error)
	ProductsByCategory(ctx context.Context, categoryID int) ([]domain.Product, error)
	FeaturedProducts(ctx context.Context, n int) ([]domain.Product, error)
}
