// internal/app/features/officialrequests/handler.go
package officialrequests

import (
	"context"
	"net/http"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/civic"
	uierrors "github.com/dalemusser/cityseva/internal/app/features/errors"
	"github.com/dalemusser/cityseva/internal/app/features/shared/jsonapi"
	"github.com/dalemusser/cityseva/internal/app/system/normalize"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves applications for the official role.
type Handler struct {
	Svc    *civic.Service
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs an official-requests Handler.
func NewHandler(svc *civic.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, ErrLog: errLog, Log: logger}
}

// ServeList handles GET /api/official-requests?status=pending. Admins see
// every request; other users see their own.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	page := jsonapi.Page(r)
	items, err := h.Svc.ListOfficialRequests(ctx, jsonapi.Actor(r), backend.RequestFilter{
		Status: normalize.Status(normalize.FilterValue(query.Get(r, "status"))),
		Page:   page,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "list official requests", err)
		return
	}
	jsonapi.WriteList(w, page, items)
}

type submitRequest struct {
	Department    string `json:"department"`
	Position      string `json:"position"`
	EmployeeID    string `json:"employee_id"`
	OfficePhone   string `json:"office_phone"`
	Justification string `json:"justification"`
}

// HandleSubmit handles POST /api/official-requests. Citizens only, one
// pending request at a time.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := jsonapi.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad official request body", err, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Svc.SubmitOfficialRequest(ctx, jsonapi.Actor(r), civic.OfficialRequestInput{
		Department:    req.Department,
		Position:      req.Position,
		EmployeeID:    req.EmployeeID,
		OfficePhone:   req.OfficePhone,
		Justification: req.Justification,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "submit official request", err)
		return
	}
	jsonapi.Write(w, http.StatusCreated, out)
}

type reviewRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

// HandleReview handles POST /api/official-requests/{id}/review. Approval
// promotes the requester; either way they are notified.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := jsonapi.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad review body", err, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Svc.ReviewOfficialRequest(ctx, jsonapi.Actor(r), chi.URLParam(r, "id"), req.Approve, req.Notes)
	if err != nil {
		h.ErrLog.Respond(w, r, "review official request", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, out)
}
