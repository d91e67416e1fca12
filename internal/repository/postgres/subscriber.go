// Package postgres implements the service repositories against PostgreSQL
// using database/sql and the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/service/subscriber"
)

// SubscriberRepo implements subscriber.Repository against PostgreSQL.
type SubscriberRepo struct{ db *sql.DB }

// NewSubscriberRepo creates a Postgres-backed subscriber repository.
func NewSubscriberRepo(db *sql.DB) *SubscriberRepo { return &SubscriberRepo{db: db} }

const subscriberColumns = `id, email, COALESCE(name,''), status, COALESCE(source,''),
	tags, COALESCE(notes,''), category_id, email_count, last_email_sent,
	soft_deleted, subscribed_at, created_at, updated_at`

func scanSubscriber(row interface{ Scan(...any) error }) (*domain.Subscriber, error) {
	s := &domain.Subscriber{}
	var tags pq.StringArray
	err := row.Scan(
		&s.ID, &s.Email, &s.Name, &s.Status, &s.Source,
		&tags, &s.Notes, &s.CategoryID, &s.EmailCount, &s.LastEmailSent,
		&s.SoftDeleted, &s.SubscribedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Tags = tags
	return s, nil
}

func (r *SubscriberRepo) Get(ctx context.Context, id string) (*domain.Subscriber, error) {
	s, err := scanSubscriber(r.db.QueryRowContext(ctx, `
		SELECT `+subscriberColumns+` FROM newsletter_subscribers WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, subscriber.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	return s, nil
}

func (r *SubscriberRepo) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	s, err := scanSubscriber(r.db.QueryRowContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM newsletter_subscribers
		WHERE email = $1 AND soft_deleted = false
	`, domain.NormalizeEmail(email)))
	if err == sql.ErrNoRows {
		return nil, subscriber.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscriber by email: %w", err)
	}
	return s, nil
}

func (r *SubscriberRepo) List(ctx context.Context, f subscriber.ListFilter) ([]domain.Subscriber, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = subscriber.DefaultPageSize
	}

	where := ""
	args := []any{}
	idx := 1
	add := func(clause string, vals ...any) {
		where += clause
		args = append(args, vals...)
		idx += len(vals)
	}

	if !f.ShowSoftDeleted {
		where += " AND soft_deleted = false"
	}
	if f.Search != "" {
		add(fmt.Sprintf(" AND (email ILIKE $%d OR name ILIKE $%d)", idx, idx), "%"+f.Search+"%")
	}
	if f.Status != "" {
		add(fmt.Sprintf(" AND status = $%d", idx), string(f.Status))
	}
	if f.CategoryID != "" {
		add(fmt.Sprintf(" AND category_id = $%d", idx), f.CategoryID)
	}

	var total int
	countQ := `SELECT COUNT(*) FROM newsletter_subscribers WHERE 1=1` + where
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count subscribers: %w", err)
	}

	q := fmt.Sprintf(`SELECT `+subscriberColumns+`
		FROM newsletter_subscribers WHERE 1=1%s
		ORDER BY subscribed_at DESC LIMIT $%d OFFSET $%d`, where, idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan subscriber: %w", err)
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

func (r *SubscriberRepo) Stats(ctx context.Context) (domain.SubscriberStats, error) {
	var st domain.SubscriberStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'ACTIVE'),
		       COUNT(*) FILTER (WHERE status = 'PENDING')
		FROM newsletter_subscribers WHERE soft_deleted = false
	`).Scan(&st.TotalSubscribers, &st.ActiveSubscribers, &st.PendingSubscribers)
	if err != nil {
		return st, fmt.Errorf("subscriber stats: %w", err)
	}
	return st, nil
}

func (r *SubscriberRepo) Create(ctx context.Context, s *domain.Subscriber) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO newsletter_subscribers
			(id, email, name, status, source, tags, notes, category_id,
			 email_count, soft_deleted, subscribed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, false, $9, NOW(), NOW())
	`, s.ID, s.Email, s.Name, s.Status, s.Source, pq.Array(s.Tags), s.Notes,
		s.CategoryID, s.SubscribedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return subscriber.ErrAlreadyExists
		}
		return fmt.Errorf("create subscriber: %w", err)
	}
	return nil
}

func (r *SubscriberRepo) Update(ctx context.Context, id string, u subscriber.UpdateFields) error {
	sets := []string{}
	args := []any{}
	idx := 1
	add := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Tags != nil {
		add("tags", pq.Array(*u.Tags))
	}
	if u.CategoryID != nil {
		if *u.CategoryID == "" {
			sets = append(sets, "category_id = NULL")
		} else {
			add("category_id", *u.CategoryID)
		}
	}
	if u.Notes != nil {
		add("notes", *u.Notes)
	}
	if u.Status != nil {
		add("status", string(*u.Status))
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")
	q := fmt.Sprintf("UPDATE newsletter_subscribers SET %s WHERE id = $%d",
		joinComma(sets), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update subscriber: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return subscriber.ErrNotFound
	}
	return nil
}

func (r *SubscriberRepo) Delete(ctx context.Context, id string, soft bool) error {
	var res sql.Result
	var err error
	if soft {
		res, err = r.db.ExecContext(ctx, `
			UPDATE newsletter_subscribers SET soft_deleted = true, updated_at = NOW()
			WHERE id = $1 AND soft_deleted = false
		`, id)
	} else {
		res, err = r.db.ExecContext(ctx, `DELETE FROM newsletter_subscribers WHERE id = $1`, id)
	}
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return subscriber.ErrNotFound
	}
	return nil
}

func (r *SubscriberRepo) ListByCategories(ctx context.Context, categoryIDs []string) ([]domain.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM newsletter_subscribers
		WHERE category_id = ANY($1) AND status = 'ACTIVE' AND soft_deleted = false
		ORDER BY subscribed_at DESC
	`, pq.Array(categoryIDs))
	if err != nil {
		return nil, fmt.Errorf("list by categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *SubscriberRepo) RecordSend(ctx context.Context, ids []string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE newsletter_subscribers
		SET email_count = email_count + 1, last_email_sent = NOW(), updated_at = NOW()
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("record send: %w", err)
	}
	return nil
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
