// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the notification endpoints under /api/notifications.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireActor)
	r.Get("/", h.ServeList)
	r.Post("/{id}/read", h.HandleRead)
	return r
}
