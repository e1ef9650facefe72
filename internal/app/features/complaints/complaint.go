// internal/app/features/complaints/complaint.go
package complaints

import (
	"context"
	"net/http"

	"github.com/dalemusser/cityseva/internal/app/civic"
	"github.com/dalemusser/cityseva/internal/app/features/shared/jsonapi"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

type submitRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	CategoryID  string   `json:"category_id"`
	Priority    string   `json:"priority"`
}

// HandleSubmit handles POST /api/complaints. The complaint starts pending
// with a "Complaint submitted" history entry.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := jsonapi.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad complaint body", err, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Svc.SubmitComplaint(ctx, jsonapi.Actor(r), civic.ComplaintInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "submit complaint", err)
		return
	}
	jsonapi.Write(w, http.StatusCreated, c)
}

// ServeComplaint handles GET /api/complaints/{id}.
func (h *Handler) ServeComplaint(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Svc.GetComplaint(ctx, jsonapi.Actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "load complaint", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, c)
}

// HandleDelete handles DELETE /api/complaints/{id}. Authors may delete
// while pending; admins always.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Svc.DeleteComplaint(ctx, jsonapi.Actor(r), chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Respond(w, r, "delete complaint", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// HandleStatus handles POST /api/complaints/{id}/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := jsonapi.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad status body", err, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Svc.ChangeStatus(ctx, jsonapi.Actor(r), chi.URLParam(r, "id"), req.Status, req.Comment)
	if err != nil {
		h.ErrLog.Respond(w, r, "change complaint status", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, c)
}

type assignRequest struct {
	AssigneeID string `json:"assignee_id"` // empty clears the assignment
}

// HandleAssign handles POST /api/complaints/{id}/assign.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := jsonapi.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad assign body", err, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Svc.Assign(ctx, jsonapi.Actor(r), chi.URLParam(r, "id"), req.AssigneeID)
	if err != nil {
		h.ErrLog.Respond(w, r, "assign complaint", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, c)
}
