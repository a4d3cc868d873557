package search

import (
	"context"

	"github.com/notabhay/ghibligroceries/internal/domain"
)

// Catalog defines the product store contract for search operations.
type Catalog interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	SearchByText(ctx context.Context, term string, limit int) ([]domain.Product, error)
	SearchEnhanced(ctx context.Context, params domain.EnhancedParams, limit int) ([]domain.Product, error)
}

// Enhancer sends a prompt to the AI upstream and returns its raw text
// completion.
type Enhancer interface {
	Enhance(ctx context.Context, prompt string) (string, error)
}
