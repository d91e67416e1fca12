package category_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/service/category"
)

type memRepo struct {
	mu   sync.Mutex
	cats map[string]*domain.Category
}

func newMemRepo() *memRepo { return &memRepo{cats: make(map[string]*domain.Category)} }

func (m *memRepo) List(_ context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Category
	for _, c := range m.cats {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cats[id]
	if !ok {
		return nil, category.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) Create(_ context.Context, c *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.cats[cp.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cats[id]; !ok {
		return category.ErrNotFound
	}
	delete(m.cats, id)
	return nil
}

func TestCreateDefaultsColor(t *testing.T) {
	svc := category.NewService(newMemRepo())
	c, err := svc.Create(context.Background(), category.CreateInput{Name: "Neurofunk Heads"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Color != domain.ColorPurple {
		t.Errorf("color = %s, want default purple", c.Color)
	}
}

func TestCreateRejectsUnknownColor(t *testing.T) {
	svc := category.NewService(newMemRepo())
	_, err := svc.Create(context.Background(), category.CreateInput{Name: "X", Color: "magenta"})
	if !errors.Is(err, category.ErrInvalidColor) {
		t.Fatalf("err = %v, want ErrInvalidColor", err)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc := category.NewService(newMemRepo())
	_, err := svc.Create(context.Background(), category.CreateInput{Color: domain.ColorBlue})
	if !errors.Is(err, category.ErrNameRequired) {
		t.Fatalf("err = %v, want ErrNameRequired", err)
	}
}

func TestColorStyleFallback(t *testing.T) {
	known := domain.ColorGreen.Style()
	unknown := domain.CategoryColor("magenta").Style()
	if known == unknown {
		t.Error("known color resolved to the default style")
	}
	if unknown != domain.CategoryColor("other").Style() {
		t.Error("unknown colors should share the default style")
	}
}
