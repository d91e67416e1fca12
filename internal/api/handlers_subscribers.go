package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/pkg/httputil"
	"github.com/dnbdoctor/labelops/internal/service/subscriber"
)

// subscriberListResponse is the subscriber list envelope.
type subscriberListResponse struct {
	Success     bool                   `json:"success"`
	Subscribers []domain.Subscriber    `json:"subscribers"`
	Pagination  PaginationMeta         `json:"pagination"`
	Stats       domain.SubscriberStats `json:"stats"`
}

// ListSubscribers returns one page of subscribers plus aggregate stats.
func (h *Handlers) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := ParsePagination(r, h.defaultPageSize)

	filter := subscriber.ListFilter{
		Search:          q.Get("search"),
		Status:          domain.SubscriberStatus(q.Get("status")),
		CategoryID:      q.Get("category"),
		ShowSoftDeleted: q.Get("showDeleted") == "true" || q.Get("showSoftDeleted") == "true",
		Limit:           p.PageSize,
		Offset:          p.Offset,
	}

	subs, total, err := h.subscribers.List(r.Context(), filter)
	if err != nil {
		if errors.Is(err, subscriber.ErrInvalidStatus) {
			httputil.BadRequest(w, "invalid status filter")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	stats, err := h.subscribers.Stats(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	if subs == nil {
		subs = []domain.Subscriber{}
	}
	httputil.OK(w, subscriberListResponse{
		Success:     true,
		Subscribers: subs,
		Pagination:  p.Meta(total),
		Stats:       stats,
	})
}

// CreateSubscriber adds a subscriber. A duplicate email yields a 409 with
// the existing record's email and status in the details, unless the request
// sets updateExisting.
func (h *Handlers) CreateSubscriber(w http.ResponseWriter, r *http.Request) {
	var in subscriber.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	if in.Source == "" {
		in.Source = "manual"
	}

	sub, err := h.subscribers.Create(r.Context(), in)
	if err != nil {
		h.writeCreateError(w, err)
		return
	}

	httputil.Created(w, map[string]any{"success": true, "subscriber": sub})
}

// PublicSubscribe is the unauthenticated signup endpoint used by the site's
// subscribe form. New signups start out pending confirmation.
func (h *Handlers) PublicSubscribe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email  string `json:"email"`
		Name   string `json:"name"`
		Source string `json:"source"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}
	if body.Source == "" {
		body.Source = "website"
	}

	sub, err := h.subscribers.Create(r.Context(), subscriber.CreateInput{
		Email:  body.Email,
		Name:   body.Name,
		Source: body.Source,
		Status: domain.SubscriberPending,
	})
	if err != nil {
		var conflict *subscriber.ConflictError
		if errors.As(err, &conflict) {
			// Already on the list; don't leak their status to the public form.
			httputil.OK(w, map[string]any{"success": true, "message": "You are already subscribed"})
			return
		}
		h.writeCreateError(w, err)
		return
	}

	httputil.Created(w, map[string]any{
		"success": true,
		"message": "Thanks for subscribing!",
		"id":      sub.ID,
	})
}

func (h *Handlers) writeCreateError(w http.ResponseWriter, err error) {
	var conflict *subscriber.ConflictError
	switch {
	case errors.As(err, &conflict):
		httputil.ErrorWithDetails(w, http.StatusConflict, "Subscriber already exists", map[string]string{
			"existingEmail": conflict.ExistingEmail,
			"status":        string(conflict.Status),
		})
	case errors.Is(err, subscriber.ErrInvalidEmail):
		httputil.BadRequest(w, "invalid email format")
	case errors.Is(err, subscriber.ErrInvalidStatus):
		httputil.BadRequest(w, "invalid status")
	default:
		httputil.InternalError(w, err)
	}
}

// updateSubscriberRequest carries the mutable fields; absent fields are
// left unchanged. An explicit empty category clears the assignment.
type updateSubscriberRequest struct {
	Name       *string                  `json:"name"`
	Tags       *[]string                `json:"tags"`
	CategoryID *string                  `json:"category"`
	Notes      *string                  `json:"notes"`
	Status     *domain.SubscriberStatus `json:"status"`
}

// UpdateSubscriber modifies an existing subscriber.
func (h *Handlers) UpdateSubscriber(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body updateSubscriberRequest
	if !httputil.Decode(w, r, &body) {
		return
	}

	err := h.subscribers.Update(r.Context(), id, subscriber.UpdateFields{
		Name:       body.Name,
		Tags:       body.Tags,
		CategoryID: body.CategoryID,
		Notes:      body.Notes,
		Status:     body.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, subscriber.ErrNotFound):
			httputil.NotFound(w, "subscriber not found")
		case errors.Is(err, subscriber.ErrInvalidStatus):
			httputil.BadRequest(w, "invalid status")
		default:
			httputil.InternalError(w, err)
		}
		return
	}

	httputil.OK(w, map[string]any{"success": true})
}

// DeleteSubscriber removes a subscriber. soft=true (the default for the
// admin UI) flags the row; soft=false removes it permanently.
func (h *Handlers) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	soft := r.URL.Query().Get("soft") == "true"

	if err := h.subscribers.Delete(r.Context(), id, soft); err != nil {
		if errors.Is(err, subscriber.ErrNotFound) {
			httputil.NotFound(w, "subscriber not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	httputil.NoContent(w)
}
