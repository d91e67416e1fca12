package api

import (
	"errors"
	"net/http"

	"github.com/dnbdoctor/labelops/internal/dispatch"
	"github.com/dnbdoctor/labelops/internal/pkg/httputil"
)

// ListTemplates returns the available newsletter templates.
func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{"templates": dispatch.Templates()})
}

// sendNewsletterRequest accepts both the flat shape and the nested
// emailData shape older clients send.
type sendNewsletterRequest struct {
	dispatch.SendRequest
	EmailData *struct {
		Subject  string `json:"subject"`
		Message  string `json:"message"`
		Template string `json:"template"`
	} `json:"emailData"`
}

// SendNewsletter dispatches a bulk send and reports a human-readable
// summary message.
func (h *Handlers) SendNewsletter(w http.ResponseWriter, r *http.Request) {
	var body sendNewsletterRequest
	if !httputil.Decode(w, r, &body) {
		return
	}
	req := body.SendRequest
	if body.EmailData != nil {
		req.Subject = body.EmailData.Subject
		req.Message = body.EmailData.Message
		req.Template = body.EmailData.Template
	}

	res, err := h.dispatcher.Send(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrEmptySubject),
			errors.Is(err, dispatch.ErrEmptyMessage),
			errors.Is(err, dispatch.ErrNoRecipients):
			httputil.BadRequest(w, err.Error())
		case errors.Is(err, dispatch.ErrSendInProgress):
			httputil.Error(w, http.StatusConflict, err.Error())
		default:
			httputil.InternalError(w, err)
		}
		return
	}

	httputil.OK(w, res)
}
