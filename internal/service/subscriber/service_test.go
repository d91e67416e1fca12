package subscriber_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/service/subscriber"
)

// memRepo is an in-memory subscriber repository for unit testing.
type memRepo struct {
	mu   sync.Mutex
	subs map[string]*domain.Subscriber // keyed by id
}

func newMemRepo() *memRepo {
	return &memRepo{subs: make(map[string]*domain.Subscriber)}
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, subscriber.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.Email == email && !s.SoftDeleted {
			cp := *s
			return &cp, nil
		}
	}
	return nil, subscriber.ErrNotFound
}

func (m *memRepo) List(_ context.Context, f subscriber.ListFilter) ([]domain.Subscriber, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Subscriber
	for _, s := range m.subs {
		if s.SoftDeleted && !f.ShowSoftDeleted {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.CategoryID != "" && (s.CategoryID == nil || *s.CategoryID != f.CategoryID) {
			continue
		}
		if f.Search != "" &&
			!strings.Contains(s.Email, strings.ToLower(f.Search)) &&
			!strings.Contains(strings.ToLower(s.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	total := len(out)
	if f.Offset >= len(out) {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(out) || f.Limit <= 0 {
		end = len(out)
	}
	return out[f.Offset:end], total, nil
}

func (m *memRepo) Stats(_ context.Context) (domain.SubscriberStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st domain.SubscriberStats
	for _, s := range m.subs {
		if s.SoftDeleted {
			continue
		}
		st.TotalSubscribers++
		switch s.Status {
		case domain.SubscriberActive:
			st.ActiveSubscribers++
		case domain.SubscriberPending:
			st.PendingSubscribers++
		}
	}
	return st, nil
}

func (m *memRepo) Create(_ context.Context, s *domain.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.subs {
		if existing.Email == s.Email && !existing.SoftDeleted {
			return subscriber.ErrAlreadyExists
		}
	}
	cp := *s
	m.subs[cp.ID] = &cp
	return nil
}

func (m *memRepo) Update(_ context.Context, id string, u subscriber.UpdateFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return subscriber.ErrNotFound
	}
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Tags != nil {
		s.Tags = *u.Tags
	}
	if u.CategoryID != nil {
		if *u.CategoryID == "" {
			s.CategoryID = nil
		} else {
			cid := *u.CategoryID
			s.CategoryID = &cid
		}
	}
	if u.Notes != nil {
		s.Notes = *u.Notes
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string, soft bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return subscriber.ErrNotFound
	}
	if soft {
		s.SoftDeleted = true
	} else {
		delete(m.subs, id)
	}
	return nil
}

func (m *memRepo) ListByCategories(_ context.Context, categoryIDs []string) ([]domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		want[id] = true
	}
	var out []domain.Subscriber
	for _, s := range m.subs {
		if s.SoftDeleted || s.Status != domain.SubscriberActive {
			continue
		}
		if s.CategoryID != nil && want[*s.CategoryID] {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memRepo) RecordSend(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, id := range ids {
		if s, ok := m.subs[id]; ok {
			s.EmailCount++
			s.LastEmailSent = &now
		}
	}
	return nil
}

func TestCreateNormalizesEmail(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	s, err := svc.Create(context.Background(), subscriber.CreateInput{Email: "  Bass.Head@Example.COM "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.Email != "bass.head@example.com" {
		t.Errorf("email = %q, want normalized lowercase", s.Email)
	}
	if s.Status != domain.SubscriberActive {
		t.Errorf("status = %s, want default ACTIVE", s.Status)
	}
}

func TestCreateRejectsInvalidEmail(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	for _, bad := range []string{"", "nope", "a@b", "spaces in@mail.com"} {
		if _, err := svc.Create(context.Background(), subscriber.CreateInput{Email: bad}); !errors.Is(err, subscriber.ErrInvalidEmail) {
			t.Errorf("Create(%q) err = %v, want ErrInvalidEmail", bad, err)
		}
	}
}

func TestCreateDuplicateReturnsConflictDetails(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, subscriber.CreateInput{Email: "dup@example.com", Status: domain.SubscriberPending}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(ctx, subscriber.CreateInput{Email: "DUP@example.com", Name: "Second"})
	var conflict *subscriber.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want *ConflictError", err)
	}
	if conflict.ExistingEmail != "dup@example.com" || conflict.Status != domain.SubscriberPending {
		t.Errorf("conflict details = %+v", conflict)
	}
	if !errors.Is(err, subscriber.ErrAlreadyExists) {
		t.Error("conflict should unwrap to ErrAlreadyExists")
	}
}

func TestCreateUpdateExistingPath(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	ctx := context.Background()

	orig, err := svc.Create(ctx, subscriber.CreateInput{Email: "merge@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Create(ctx, subscriber.CreateInput{
		Email:          "merge@example.com",
		Name:           "Merged Name",
		Tags:           []string{"vip"},
		UpdateExisting: true,
	})
	if err != nil {
		t.Fatalf("update-existing create: %v", err)
	}
	if updated.ID != orig.ID {
		t.Errorf("update-existing changed identity: %s vs %s", updated.ID, orig.ID)
	}
	if updated.Name != "Merged Name" || len(updated.Tags) != 1 {
		t.Errorf("fields not merged: %+v", updated)
	}
}

func TestSoftDeleteListExclusion(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	ctx := context.Background()

	s, _ := svc.Create(ctx, subscriber.CreateInput{Email: "gone@example.com"})
	svc.Create(ctx, subscriber.CreateInput{Email: "kept@example.com"})

	if err := svc.Delete(ctx, s.ID, true); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	visible, total, _ := svc.List(ctx, subscriber.ListFilter{})
	if total != 1 || len(visible) != 1 || visible[0].Email != "kept@example.com" {
		t.Fatalf("default list should exclude soft-deleted, got %d rows", total)
	}

	all, total, _ := svc.List(ctx, subscriber.ListFilter{ShowSoftDeleted: true})
	if total != 2 || len(all) != 2 {
		t.Fatalf("showSoftDeleted list should include both, got %d rows", total)
	}
}

func TestHardDeleteRemovesRow(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	ctx := context.Background()

	s, _ := svc.Create(ctx, subscriber.CreateInput{Email: "hard@example.com"})
	if err := svc.Delete(ctx, s.ID, false); err != nil {
		t.Fatalf("hard delete: %v", err)
	}
	if _, err := svc.Get(ctx, s.ID); !errors.Is(err, subscriber.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after hard delete, got %v", err)
	}
}

func TestStatsCountByStatus(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	ctx := context.Background()

	svc.Create(ctx, subscriber.CreateInput{Email: "a@example.com"})
	svc.Create(ctx, subscriber.CreateInput{Email: "b@example.com", Status: domain.SubscriberPending})
	svc.Create(ctx, subscriber.CreateInput{Email: "c@example.com", Status: domain.SubscriberUnsubscribed})

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalSubscribers != 3 || st.ActiveSubscribers != 1 || st.PendingSubscribers != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestRecordSendBumpsCounters(t *testing.T) {
	repo := newMemRepo()
	svc := subscriber.NewService(repo)
	ctx := context.Background()

	s, _ := svc.Create(ctx, subscriber.CreateInput{Email: "counted@example.com"})
	if err := svc.RecordSend(ctx, []string{s.ID}); err != nil {
		t.Fatalf("record send: %v", err)
	}

	got, _ := svc.Get(ctx, s.ID)
	if got.EmailCount != 1 || got.LastEmailSent == nil {
		t.Fatalf("counters not bumped: %+v", got)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := subscriber.NewService(newMemRepo())
	if _, _, err := svc.List(context.Background(), subscriber.ListFilter{Status: "BOUNCED"}); !errors.Is(err, subscriber.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}
