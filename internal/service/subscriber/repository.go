package subscriber

import (
	"context"

	"github.com/dnbdoctor/labelops/internal/domain"
)

// Repository defines the data access contract for subscribers.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single subscriber. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Subscriber, error)

	// GetByEmail returns the non-soft-deleted subscriber with the given
	// normalized email. Returns ErrNotFound if none exists.
	GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error)

	// List returns subscribers matching the filter plus the total match
	// count, ordered by subscribed_at DESC.
	List(ctx context.Context, f ListFilter) ([]domain.Subscriber, int, error)

	// Stats returns aggregate counters over non-soft-deleted subscribers.
	Stats(ctx context.Context) (domain.SubscriberStats, error)

	// Create inserts a new subscriber. Returns ErrAlreadyExists when the
	// email is already taken by a live row.
	Create(ctx context.Context, s *domain.Subscriber) error

	// Update modifies a subscriber. Only non-nil fields are applied.
	Update(ctx context.Context, id string, u UpdateFields) error

	// Delete removes a subscriber: soft sets the flag, hard removes the row.
	Delete(ctx context.Context, id string, soft bool) error

	// ListByCategories returns active, non-soft-deleted subscribers
	// belonging to any of the given categories.
	ListByCategories(ctx context.Context, categoryIDs []string) ([]domain.Subscriber, error)

	// RecordSend bumps email_count and last_email_sent for the given ids.
	RecordSend(ctx context.Context, ids []string) error
}

// ListFilter controls pagination and filtering for subscriber lists.
// Zero values mean "no filter".
type ListFilter struct {
	Search          string
	Status          domain.SubscriberStatus
	CategoryID      string
	ShowSoftDeleted bool
	Limit           int
	Offset          int
}

// UpdateFields holds the mutable fields for a subscriber update.
// Nil fields are not applied. A non-nil CategoryID pointing at an empty
// string clears the category.
type UpdateFields struct {
	Name       *string
	Tags       *[]string
	CategoryID *string
	Notes      *string
	Status     *domain.SubscriberStatus
}
