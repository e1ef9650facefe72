// internal/app/features/users/users.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/civic"
	"github.com/dalemusser/cityseva/internal/app/features/shared/jsonapi"
	"github.com/dalemusser/cityseva/internal/app/system/auditlog"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister handles POST /api/users. New accounts are citizens.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := jsonapi.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad register body", err, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Svc.Register(ctx, civic.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	}, auditlog.ClientIP(r))
	if err != nil {
		h.ErrLog.Respond(w, r, "register user", err)
		return
	}
	jsonapi.Write(w, http.StatusCreated, u)
}

// ServeList handles GET /api/users?role=official. Staff only.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	page := jsonapi.Page(r)
	users, err := h.Svc.ListUsers(ctx, jsonapi.Actor(r), backend.UserFilter{Role: query.Get(r, "role"), Page: page})
	if err != nil {
		h.ErrLog.Respond(w, r, "list users", err)
		return
	}
	jsonapi.WriteList(w, page, users)
}

// ServeUser handles GET /api/users/{id}.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Svc.GetUser(ctx, jsonapi.Actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "load user", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, u)
}

// HandleDelete handles DELETE /api/users/{id}, removing the account and
// everything it owns.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Svc.DeleteUser(ctx, jsonapi.Actor(r), chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Respond(w, r, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
