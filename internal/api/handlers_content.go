package api

import (
	"net/http"
	"strconv"

	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/pkg/httputil"
)

func limitParam(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}

// ListReleases returns the catalog, newest first.
func (h *Handlers) ListReleases(w http.ResponseWriter, r *http.Request) {
	releases, err := h.content.ListReleases(r.Context(), limitParam(r))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if releases == nil {
		releases = []domain.Release{}
	}
	httputil.OK(w, map[string]any{"releases": releases})
}

// CreateRelease adds a catalog entry.
func (h *Handlers) CreateRelease(w http.ResponseWriter, r *http.Request) {
	var rel domain.Release
	if !httputil.Decode(w, r, &rel) {
		return
	}
	if rel.Title == "" || rel.Artist == "" {
		httputil.BadRequest(w, "title and artist are required")
		return
	}
	if err := h.content.CreateRelease(r.Context(), &rel); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, map[string]any{"success": true, "release": rel})
}

// ListArtists returns the roster.
func (h *Handlers) ListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.content.ListArtists(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if artists == nil {
		artists = []domain.Artist{}
	}
	httputil.OK(w, map[string]any{"artists": artists})
}

// CreateArtist adds a roster profile.
func (h *Handlers) CreateArtist(w http.ResponseWriter, r *http.Request) {
	var a domain.Artist
	if !httputil.Decode(w, r, &a) {
		return
	}
	if a.Name == "" {
		httputil.BadRequest(w, "artist name is required")
		return
	}
	if err := h.content.CreateArtist(r.Context(), &a); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, map[string]any{"success": true, "artist": a})
}

// ListNews returns recent news posts.
func (h *Handlers) ListNews(w http.ResponseWriter, r *http.Request) {
	posts, err := h.content.ListNews(r.Context(), limitParam(r))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if posts == nil {
		posts = []domain.NewsPost{}
	}
	httputil.OK(w, map[string]any{"news": posts})
}

// CreateNews adds a news post.
func (h *Handlers) CreateNews(w http.ResponseWriter, r *http.Request) {
	var p domain.NewsPost
	if !httputil.Decode(w, r, &p) {
		return
	}
	if p.Title == "" {
		httputil.BadRequest(w, "title is required")
		return
	}
	if err := h.content.CreateNews(r.Context(), &p); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, map[string]any{"success": true, "post": p})
}

// ImportNewsFeed pulls the label's RSS feed into the news table.
func (h *Handlers) ImportNewsFeed(w http.ResponseWriter, r *http.Request) {
	res, err := h.importer.Import(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"success": true, "result": res})
}
