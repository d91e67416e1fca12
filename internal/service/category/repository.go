package category

import (
	"context"

	"github.com/dnbdoctor/labelops/internal/domain"
)

// Repository defines the data access contract for categories.
// Implementations must be safe for concurrent use.
type Repository interface {
	// List returns all categories with their derived subscriber counts,
	// ordered by name.
	List(ctx context.Context) ([]domain.Category, error)

	// Get returns a single category. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.Category, error)

	// Create inserts a new category.
	Create(ctx context.Context, c *domain.Category) error

	// Delete removes a category and clears the reference on any
	// subscribers that pointed at it.
	Delete(ctx context.Context, id string) error
}
