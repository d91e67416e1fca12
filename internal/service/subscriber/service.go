package subscriber

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/pkg/logger"
)

// DefaultPageSize caps unbounded list requests.
const DefaultPageSize = 25

// Service implements subscriber business logic on top of a Repository.
// All public methods are safe for concurrent use if the underlying
// repository is concurrency-safe.
type Service struct {
	repo Repository
}

// NewService creates a subscriber service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a single subscriber.
func (s *Service) Get(ctx context.Context, id string) (*domain.Subscriber, error) {
	return s.repo.Get(ctx, id)
}

// List returns subscribers matching the filter and the total match count.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Subscriber, int, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, f)
}

// Stats returns the dashboard counters.
func (s *Service) Stats(ctx context.Context) (domain.SubscriberStats, error) {
	return s.repo.Stats(ctx)
}

// CreateInput holds the fields for creating a subscriber.
type CreateInput struct {
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Tags       []string `json:"tags"`
	CategoryID string   `json:"category"`
	Notes      string   `json:"notes"`
	Source     string   `json:"source"`
	Status     domain.SubscriberStatus `json:"status"`

	// UpdateExisting switches a duplicate-email create into an update of
	// the existing record instead of a conflict.
	UpdateExisting bool `json:"updateExisting"`
}

// Create validates and persists a new subscriber. When the email is already
// taken it returns a *ConflictError, unless UpdateExisting is set, in which
// case the existing record is updated with the submitted fields and
// returned.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Subscriber, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || !domain.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !in.UpdateExisting {
			return nil, &ConflictError{ExistingEmail: existing.Email, Status: existing.Status}
		}
		return s.updateExisting(ctx, existing, in)
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("check existing: %w", err)
	}

	now := time.Now().UTC()
	sub := &domain.Subscriber{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         in.Name,
		Status:       in.Status,
		Source:       in.Source,
		Tags:         in.Tags,
		Notes:        in.Notes,
		SubscribedAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if sub.Status == "" {
		sub.Status = domain.SubscriberActive
	}
	if in.CategoryID != "" {
		cid := in.CategoryID
		sub.CategoryID = &cid
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		// A concurrent create can still lose the race on the unique index.
		if errors.Is(err, ErrAlreadyExists) {
			return nil, &ConflictError{ExistingEmail: email, Status: sub.Status}
		}
		return nil, fmt.Errorf("create subscriber: %w", err)
	}

	logger.Info("subscriber created", "email", sub.Email, "source", sub.Source)
	return sub, nil
}

func (s *Service) updateExisting(ctx context.Context, existing *domain.Subscriber, in CreateInput) (*domain.Subscriber, error) {
	u := UpdateFields{}
	if in.Name != "" {
		u.Name = &in.Name
	}
	if in.Tags != nil {
		u.Tags = &in.Tags
	}
	if in.CategoryID != "" {
		u.CategoryID = &in.CategoryID
	}
	if in.Notes != "" {
		u.Notes = &in.Notes
	}
	if in.Status != "" {
		u.Status = &in.Status
	}
	if err := s.repo.Update(ctx, existing.ID, u); err != nil {
		return nil, fmt.Errorf("update existing: %w", err)
	}
	return s.repo.Get(ctx, existing.ID)
}

// Update modifies mutable subscriber fields.
func (s *Service) Update(ctx context.Context, id string, u UpdateFields) error {
	if u.Status != nil && !u.Status.Valid() {
		return ErrInvalidStatus
	}
	return s.repo.Update(ctx, id, u)
}

// Delete removes a subscriber. Soft deletion flips the flag; hard deletion
// removes the row.
func (s *Service) Delete(ctx context.Context, id string, soft bool) error {
	if err := s.repo.Delete(ctx, id, soft); err != nil {
		return err
	}
	logger.Info("subscriber deleted", "id", id, "soft", soft)
	return nil
}

// ListByCategories returns sendable subscribers for the given categories.
func (s *Service) ListByCategories(ctx context.Context, categoryIDs []string) ([]domain.Subscriber, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	return s.repo.ListByCategories(ctx, categoryIDs)
}

// RecordSend bumps the per-subscriber send counters after a dispatch.
func (s *Service) RecordSend(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.repo.RecordSend(ctx, ids)
}
