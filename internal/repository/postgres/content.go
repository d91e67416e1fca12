package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dnbdoctor/labelops/internal/domain"
)

// ContentRepo provides database operations for the public-site content
// entities: releases, artists, and news posts.
type ContentRepo struct{ db *sql.DB }

// NewContentRepo creates a Postgres-backed content repository.
func NewContentRepo(db *sql.DB) *ContentRepo { return &ContentRepo{db: db} }

func (r *ContentRepo) ListReleases(ctx context.Context, limit int) ([]domain.Release, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, artist, catalog_no, COALESCE(cover_url,''),
		       COALESCE(description,''), released_at, created_at, updated_at
		FROM releases ORDER BY released_at DESC NULLS LAST LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	defer rows.Close()

	var out []domain.Release
	for rows.Next() {
		var rel domain.Release
		if err := rows.Scan(&rel.ID, &rel.Title, &rel.Artist, &rel.CatalogNo,
			&rel.CoverURL, &rel.Description, &rel.ReleasedAt, &rel.CreatedAt, &rel.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}

func (r *ContentRepo) CreateRelease(ctx context.Context, rel *domain.Release) error {
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO releases (id, title, artist, catalog_no, cover_url, description, released_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`, rel.ID, rel.Title, rel.Artist, rel.CatalogNo, rel.CoverURL, rel.Description, rel.ReleasedAt)
	if err != nil {
		return fmt.Errorf("create release: %w", err)
	}
	return nil
}

func (r *ContentRepo) ListArtists(ctx context.Context) ([]domain.Artist, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(bio,''), COALESCE(image_url,''), links, created_at, updated_at
		FROM artists ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer rows.Close()

	var out []domain.Artist
	for rows.Next() {
		var a domain.Artist
		var links pq.StringArray
		if err := rows.Scan(&a.ID, &a.Name, &a.Bio, &a.ImageURL, &links, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		a.Links = links
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ContentRepo) CreateArtist(ctx context.Context, a *domain.Artist) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO artists (id, name, bio, image_url, links, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`, a.ID, a.Name, a.Bio, a.ImageURL, pq.Array(a.Links))
	if err != nil {
		return fmt.Errorf("create artist: %w", err)
	}
	return nil
}

func (r *ContentRepo) ListNews(ctx context.Context, limit int) ([]domain.NewsPost, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, COALESCE(summary,''), COALESCE(body,''), COALESCE(link,''),
		       COALESCE(image_url,''), COALESCE(source_guid,''), published_at, created_at, updated_at
		FROM news_posts ORDER BY published_at DESC NULLS LAST LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	var out []domain.NewsPost
	for rows.Next() {
		var p domain.NewsPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Summary, &p.Body, &p.Link,
			&p.ImageURL, &p.SourceGUID, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan news post: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ContentRepo) CreateNews(ctx context.Context, p *domain.NewsPost) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO news_posts (id, title, summary, body, link, image_url, source_guid, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`, p.ID, p.Title, p.Summary, p.Body, p.Link, p.ImageURL, p.SourceGUID, p.PublishedAt)
	if err != nil {
		return fmt.Errorf("create news post: %w", err)
	}
	return nil
}

// UpsertNewsByGUID inserts a feed-imported post, updating the existing row
// when the source GUID was imported before. Returns true when a new row was
// inserted.
func (r *ContentRepo) UpsertNewsByGUID(ctx context.Context, p *domain.NewsPost) (bool, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	var inserted bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO news_posts (id, title, summary, body, link, image_url, source_guid, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (source_guid) DO UPDATE SET
			title = EXCLUDED.title, summary = EXCLUDED.summary,
			body = EXCLUDED.body, link = EXCLUDED.link,
			image_url = EXCLUDED.image_url, updated_at = NOW()
		RETURNING (xmax = 0)
	`, p.ID, p.Title, p.Summary, p.Body, p.Link, p.ImageURL, p.SourceGUID, p.PublishedAt).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert news post: %w", err)
	}
	return inserted, nil
}
