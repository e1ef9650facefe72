// internal/app/features/complaints/related.go
package complaints

import (
	"context"
	"net/http"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/features/shared/jsonapi"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeUpdates handles GET /api/complaints/{id}/updates, oldest first.
func (h *Handler) ServeUpdates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	items, err := h.Svc.Updates(ctx, jsonapi.Actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "load complaint history", err)
		return
	}
	if items == nil {
		items = []backend.Update{}
	}
	jsonapi.Write(w, http.StatusOK, map[string]any{"items": items})
}

// ServeMedia handles GET /api/complaints/{id}/media.
func (h *Handler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	items, err := h.Svc.Media(ctx, jsonapi.Actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "load complaint media", err)
		return
	}
	if items == nil {
		items = []backend.Media{}
	}
	jsonapi.Write(w, http.StatusOK, map[string]any{"items": items})
}

type mediaRequest struct {
	FilePath  string `json:"file_path"`
	MediaType string `json:"media_type"` // image | video
}

// HandleAddMedia handles POST /api/complaints/{id}/media. The file itself
// is stored elsewhere; this records its path.
func (h *Handler) HandleAddMedia(w http.ResponseWriter, r *http.Request) {
	var req mediaRequest
	if err := jsonapi.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad media body", err, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Svc.AddMedia(ctx, jsonapi.Actor(r), chi.URLParam(r, "id"), req.FilePath, req.MediaType)
	if err != nil {
		h.ErrLog.Respond(w, r, "attach media", err)
		return
	}
	jsonapi.Write(w, http.StatusCreated, m)
}

// ServeFeedback handles GET /api/complaints/{id}/feedback. 404 until the
// author has left feedback.
func (h *Handler) ServeFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	f, err := h.Svc.Feedback(ctx, jsonapi.Actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "load feedback", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, f)
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// HandleFeedback handles POST /api/complaints/{id}/feedback.
func (h *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := jsonapi.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad feedback body", err, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	f, err := h.Svc.LeaveFeedback(ctx, jsonapi.Actor(r), chi.URLParam(r, "id"), req.Rating, req.Comment)
	if err != nil {
		h.ErrLog.Respond(w, r, "submit feedback", err)
		return
	}
	jsonapi.Write(w, http.StatusCreated, f)
}
