// internal/app/features/complaints/list.go
package complaints

import (
	"net/http"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/features/shared/jsonapi"
	"github.com/dalemusser/cityseva/internal/app/system/normalize"
	"github.com/dalemusser/cityseva/internal/app/system/paging"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Items []backend.Complaint `json:"items"`
	Range paging.Range        `json:"range"`
	Total int64               `json:"total"`
}

// ServeList handles GET /api/complaints, newest first.
//
// Filters: status, priority, category_id, author_id, assignee_id.
// Paging: start (1-based), limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "complaint list")
	defer cancel()

	actor := jsonapi.Actor(r)
	page := jsonapi.Page(r)
	f := backend.ComplaintFilter{
		Status:     normalize.Status(normalize.FilterValue(query.Get(r, "status"))),
		Priority:   normalize.Status(normalize.FilterValue(query.Get(r, "priority"))),
		CategoryID: query.Get(r, "category_id"),
		AuthorID:   query.Get(r, "author_id"),
		AssigneeID: query.Get(r, "assignee_id"),
		Page:       page,
	}

	items, err := h.Svc.ListComplaints(ctx, actor, f)
	if err != nil {
		h.ErrLog.Respond(w, r, "list complaints", err)
		return
	}
	total, err := h.Svc.CountComplaints(ctx, actor, f)
	if err != nil {
		h.ErrLog.Respond(w, r, "count complaints", err)
		return
	}
	if items == nil {
		items = []backend.Complaint{}
	}

	jsonapi.Write(w, http.StatusOK, listResponse{
		Items: items,
		Range: paging.ComputeRange(page.Offset+1, page.Limit, len(items)),
		Total: total,
	})
}
