// internal/app/features/userinfo/handler.go
package userinfo

import (
	"context"
	"net/http"

	"github.com/dalemusser/cityseva/internal/app/civic"
	uierrors "github.com/dalemusser/cityseva/internal/app/features/errors"
	"github.com/dalemusser/cityseva/internal/app/features/shared/jsonapi"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
)

// Handler serves the caller's own account.
type Handler struct {
	Svc    *civic.Service
	ErrLog *uierrors.ErrorLogger
}

// NewHandler creates a new userinfo handler.
func NewHandler(svc *civic.Service, errLog *uierrors.ErrorLogger) *Handler {
	return &Handler{Svc: svc, ErrLog: errLog}
}

// ServeUserInfo handles GET /api/me. The account is re-read on every call
// so role changes made after the token was issued show up here.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	actor := jsonapi.Actor(r)
	u, err := h.Svc.GetUser(ctx, actor, actor.ID)
	if err != nil {
		h.ErrLog.Respond(w, r, "load account", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, u)
}
