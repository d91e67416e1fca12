package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/service/category"
)

// CategoryRepo implements category.Repository against PostgreSQL.
type CategoryRepo struct{ db *sql.DB }

// NewCategoryRepo creates a Postgres-backed category repository.
func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.color, COALESCE(c.description,''),
		       COUNT(s.id) FILTER (WHERE s.soft_deleted = false),
		       c.created_at, c.updated_at
		FROM newsletter_categories c
		LEFT JOIN newsletter_subscribers s ON s.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Description,
			&c.SubscriberCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (*domain.Category, error) {
	c := &domain.Category{}
	err := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.name, c.color, COALESCE(c.description,''),
		       (SELECT COUNT(*) FROM newsletter_subscribers s
		        WHERE s.category_id = c.id AND s.soft_deleted = false),
		       c.created_at, c.updated_at
		FROM newsletter_categories c
		WHERE c.id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Color, &c.Description,
		&c.SubscriberCount, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, category.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO newsletter_categories (id, name, color, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, c.ID, c.Name, c.Color, c.Description)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Delete removes a category inside a transaction, detaching any subscribers
// that referenced it first.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE newsletter_subscribers SET category_id = NULL, updated_at = NOW()
		WHERE category_id = $1
	`, id); err != nil {
		return fmt.Errorf("detach subscribers: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM newsletter_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return category.ErrNotFound
	}
	return tx.Commit()
}
