// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the account endpoints (typically under "/api/users").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Registration is public.
	r.Post("/", h.HandleRegister)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireActor)
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeUser)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
