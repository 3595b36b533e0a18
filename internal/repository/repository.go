package repository

import (
	"context"

	"github.com/kaifgrit/Rifakat/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	// Category matches exactly. Empty lists every product.
	Category string
}

// ProductRepository defines the interface for product persistence operations.
// Lookups of unknown ids return an error wrapping apperrors.ErrNotFound.
type ProductRepository interface {
	// List returns the products matching filter in store order.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetByIDs returns the products whose ids are in ids. Unknown and
	// malformed ids are skipped. Decorators must not serve it from a cache:
	// updates and deletes load through it.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	// Create inserts product, assigning its ID when empty.
	Create(ctx context.Context, product *domain.Product) error

	// Update replaces an existing product.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product by its identifier.
	Delete(ctx context.Context, id string) error

	// DeleteMany removes every product in ids and reports how many existed.
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}
