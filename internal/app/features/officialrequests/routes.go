// internal/app/features/officialrequests/routes.go
package officialrequests

import (
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the endpoints under /api/official-requests.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireActor)
		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleSubmit)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Post("/{id}/review", h.HandleReview)
	})

	return r
}
