// Package api exposes the labelops HTTP surface: the subscriber admin API,
// the public subscribe endpoint, label content, and the newsletter send
// endpoint.
package api

import (
	"context"

	"github.com/dnbdoctor/labelops/internal/dispatch"
	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/news"
	"github.com/dnbdoctor/labelops/internal/service/category"
	"github.com/dnbdoctor/labelops/internal/service/subscriber"
)

// ContentStore is the content repository surface the handlers read and
// write. *postgres.ContentRepo satisfies it.
type ContentStore interface {
	ListReleases(ctx context.Context, limit int) ([]domain.Release, error)
	CreateRelease(ctx context.Context, rel *domain.Release) error
	ListArtists(ctx context.Context) ([]domain.Artist, error)
	CreateArtist(ctx context.Context, a *domain.Artist) error
	ListNews(ctx context.Context, limit int) ([]domain.NewsPost, error)
	CreateNews(ctx context.Context, p *domain.NewsPost) error
}

// NewsletterSender dispatches a bulk send. *dispatch.Dispatcher satisfies
// it.
type NewsletterSender interface {
	Send(ctx context.Context, req dispatch.SendRequest) (*dispatch.SendResult, error)
}

// Handlers holds the service dependencies for all HTTP handlers.
type Handlers struct {
	subscribers *subscriber.Service
	categories  *category.Service
	dispatcher  NewsletterSender
	content     ContentStore
	importer    *news.Importer

	defaultPageSize int
}

// NewHandlers wires the handler set. content and importer may be nil when
// the content endpoints are not served.
func NewHandlers(
	subscribers *subscriber.Service,
	categories *category.Service,
	dispatcher NewsletterSender,
	content ContentStore,
	importer *news.Importer,
	defaultPageSize int,
) *Handlers {
	if defaultPageSize <= 0 {
		defaultPageSize = 25
	}
	return &Handlers{
		subscribers:     subscribers,
		categories:      categories,
		dispatcher:      dispatcher,
		content:         content,
		importer:        importer,
		defaultPageSize: defaultPageSize,
	}
}
