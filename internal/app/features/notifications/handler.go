// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/cityseva/internal/app/civic"
	uierrors "github.com/dalemusser/cityseva/internal/app/features/errors"
	"github.com/dalemusser/cityseva/internal/app/features/shared/jsonapi"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
)

// Handler serves the caller's notifications.
type Handler struct {
	Svc    *civic.Service
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs a notifications Handler.
func NewHandler(svc *civic.Service, errLog *uierrors.ErrorLogger) *Handler {
	return &Handler{Svc: svc, ErrLog: errLog}
}

// ServeList handles GET /api/notifications?unread=true, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	unread, _ := strconv.ParseBool(query.Get(r, "unread"))
	page := jsonapi.Page(r)
	items, err := h.Svc.Notifications(ctx, jsonapi.Actor(r), unread, page)
	if err != nil {
		h.ErrLog.Respond(w, r, "list notifications", err)
		return
	}
	jsonapi.WriteList(w, page, items)
}

// HandleRead handles POST /api/notifications/{id}/read. Notifications of
// other users answer 404.
func (h *Handler) HandleRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.MarkNotificationRead(ctx, jsonapi.Actor(r), chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Respond(w, r, "mark notification read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
