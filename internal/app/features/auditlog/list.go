// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"time"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/features/shared/jsonapi"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

const dateLayout = "2006-01-02"

// ServeList handles GET /api/audit-logs, newest first.
//
// Filters: user_id, action, resource_type, resource_id, start_date and
// end_date (YYYY-MM-DD, UTC, end_date inclusive). Unparseable dates are
// ignored.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	page := jsonapi.Page(r)
	f := backend.AuditFilter{
		UserID:       query.Get(r, "user_id"),
		Action:       query.Get(r, "action"),
		ResourceType: query.Get(r, "resource_type"),
		ResourceID:   query.Get(r, "resource_id"),
		Page:         page,
	}
	if d := query.Get(r, "start_date"); d != "" {
		if t, err := time.Parse(dateLayout, d); err == nil {
			f.Since = &t
		}
	}
	if d := query.Get(r, "end_date"); d != "" {
		if t, err := time.Parse(dateLayout, d); err == nil {
			// End of day
			endOfDay := t.Add(24*time.Hour - time.Microsecond)
			f.Until = &endOfDay
		}
	}

	items, err := h.Svc.AuditLogs(ctx, jsonapi.Actor(r), f)
	if err != nil {
		h.ErrLog.Respond(w, r, "list audit logs", err)
		return
	}
	jsonapi.WriteList(w, page, items)
}
