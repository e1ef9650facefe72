// internal/app/features/complaints/routes.go
package complaints

import (
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the complaint endpoints (typically under "/api/complaints").
// Every route needs a signed-in actor; citizens only ever see their own
// complaints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireActor)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleSubmit)

	r.Route("/{id}", func(cr chi.Router) {
		cr.Get("/", h.ServeComplaint)
		cr.Delete("/", h.HandleDelete)

		cr.Get("/updates", h.ServeUpdates)

		cr.Get("/media", h.ServeMedia)
		cr.Post("/media", h.HandleAddMedia)

		cr.Get("/feedback", h.ServeFeedback)
		cr.Post("/feedback", h.HandleFeedback)

		// Staff only.
		cr.Group(func(sr chi.Router) {
			sr.Use(auth.RequireRole(models.RoleOfficial, models.RoleAdmin))
			sr.Post("/status", h.HandleStatus)
			sr.Post("/assign", h.HandleAssign)
		})
	})

	return r
}
