// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under the path where this router is mounted
// (typically "/api/audit-logs"). Admins only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeList)
	})

	return r
}
