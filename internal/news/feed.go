// Package news imports label news from an RSS/Atom feed into the content
// store and turns posts into newsletter drafts.
package news

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/dnbdoctor/labelops/internal/config"
	"github.com/dnbdoctor/labelops/internal/dispatch"
	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/pkg/logger"
)

// ContentStore is the slice of the content repository the importer writes
// through.
type ContentStore interface {
	UpsertNewsByGUID(ctx context.Context, p *domain.NewsPost) (bool, error)
}

// Importer pulls feed items and upserts them as news posts, keyed by the
// item GUID so repeated imports are idempotent.
type Importer struct {
	parser   *gofeed.Parser
	store    ContentStore
	url      string
	maxItems int
}

// NewImporter creates a feed importer from config.
func NewImporter(store ContentStore, cfg config.FeedConfig) *Importer {
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = 10
	}
	return &Importer{
		parser:   gofeed.NewParser(),
		store:    store,
		url:      cfg.URL,
		maxItems: maxItems,
	}
}

// ImportResult summarizes one feed import run.
type ImportResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// Import fetches the feed and upserts up to maxItems posts. Items without a
// GUID or link are skipped; a single bad item does not abort the run.
func (i *Importer) Import(ctx context.Context) (*ImportResult, error) {
	feed, err := i.parser.ParseURLWithContext(i.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", i.url, err)
	}

	res := &ImportResult{}
	for n, item := range feed.Items {
		if n >= i.maxItems {
			break
		}
		guid := item.GUID
		if guid == "" {
			guid = item.Link
		}
		if guid == "" {
			res.Skipped++
			continue
		}

		post := &domain.NewsPost{
			Title:       item.Title,
			Summary:     item.Description,
			Body:        item.Content,
			Link:        item.Link,
			SourceGUID:  guid,
			PublishedAt: item.PublishedParsed,
		}
		if item.Image != nil {
			post.ImageURL = item.Image.URL
		}

		inserted, err := i.store.UpsertNewsByGUID(ctx, post)
		if err != nil {
			logger.Warn("feed item import failed", "guid", guid, "error", err)
			res.Skipped++
			continue
		}
		if inserted {
			res.Imported++
		} else {
			res.Updated++
		}
	}

	logger.Info("feed import finished",
		"imported", res.Imported, "updated", res.Updated, "skipped", res.Skipped)
	return res, nil
}

// DraftFromPost pre-fills a newsletter draft announcing a news post.
func DraftFromPost(p domain.NewsPost) dispatch.Draft {
	body := p.Summary
	if body == "" {
		body = p.Body
	}
	if p.Link != "" {
		body += "\n\nRead more: " + p.Link
	}
	return dispatch.Draft{
		TemplateID: dispatch.TemplateCustom,
		Subject:    p.Title,
		Message:    "Hey {name},\n\n" + body + "\n\nDnB Doctor",
	}
}
