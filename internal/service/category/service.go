// Package category manages the subscriber grouping taxonomy used for
// targeted newsletter sends.
package category

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dnbdoctor/labelops/internal/domain"
)

// Service implements category business logic.
type Service struct {
	repo Repository
}

// NewService creates a category service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all categories with subscriber counts.
func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

// Get returns a single category.
func (s *Service) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.repo.Get(ctx, id)
}

// CreateInput holds the fields for creating a category.
type CreateInput struct {
	Name        string               `json:"name"`
	Color       domain.CategoryColor `json:"color"`
	Description string               `json:"description"`
}

// Create validates and persists a new category. An empty color defaults to
// purple; an unknown color is rejected rather than stored.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Category, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.Color == "" {
		in.Color = domain.ColorPurple
	}
	if !in.Color.Valid() {
		return nil, ErrInvalidColor
	}

	now := time.Now().UTC()
	c := &domain.Category{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Color:       in.Color,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a category. Subscribers referencing it are detached, not
// deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
