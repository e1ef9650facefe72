// internal/app/features/userinfo/routes.go
package userinfo

import (
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter mounted at /api/me.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireActor)
	r.Get("/", h.ServeUserInfo)
	return r
}
