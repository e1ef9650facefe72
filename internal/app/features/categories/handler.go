// internal/app/features/categories/handler.go
package categories

import (
	"context"
	"net/http"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/civic"
	uierrors "github.com/dalemusser/cityseva/internal/app/features/errors"
	"github.com/dalemusser/cityseva/internal/app/features/shared/jsonapi"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves complaint categories.
type Handler struct {
	Svc    *civic.Service
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a categories Handler.
func NewHandler(svc *civic.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, ErrLog: errLog, Log: logger}
}

// ServeList handles GET /api/categories, ordered by name.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cats, err := h.Svc.Backend().ListCategories(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "list categories", err)
		return
	}
	if cats == nil {
		cats = []backend.Category{}
	}
	jsonapi.Write(w, http.StatusOK, map[string]any{"items": cats})
}

// ServeCategory handles GET /api/categories/{id}.
func (h *Handler) ServeCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Svc.Backend().GetCategory(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "load category", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, c)
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Department  string `json:"department"`
	Icon        string `json:"icon"`
}

// HandleCreate handles POST /api/categories. Admin only.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := jsonapi.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad category body", err, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Svc.CreateCategory(ctx, jsonapi.Actor(r), backend.Category{
		Name:        req.Name,
		Description: req.Description,
		Department:  req.Department,
		Icon:        req.Icon,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "create category", err)
		return
	}
	jsonapi.Write(w, http.StatusCreated, c)
}

// HandleDelete handles DELETE /api/categories/{id}. A category still used
// by complaints answers 409.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.DeleteCategory(ctx, jsonapi.Actor(r), chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Respond(w, r, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
