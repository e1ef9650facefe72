// internal/app/features/categories/routes.go
package categories

import (
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the category endpoints. Reads are public.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeCategory)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Post("/", h.HandleCreate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
