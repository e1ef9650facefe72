// internal/app/backend/docbackend/convert.go
package docbackend

import (
	"errors"
	"time"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/store/query"
	"github.com/dalemusser/cityseva/internal/app/system/isotime"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, backend.ErrNotFound
	}
	return oid, nil
}

func parseOptID(id string) (*primitive.ObjectID, error) {
	if id == "" {
		return nil, nil
	}
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

func hexOpt(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}

// ts parses a stored timestamp; a malformed value reads as the zero time.
func ts(s string) time.Time {
	t, _ := isotime.Parse(s)
	return t
}

// mapErr translates store sentinels. Each store has its own ErrDuplicate,
// so callers pass the one that applies.
func mapErr(err, dup error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, query.ErrNotFound):
		return backend.ErrNotFound
	case dup != nil && errors.Is(err, dup):
		return backend.ErrDuplicate
	}
	return err
}

func userView(u models.User) backend.User {
	return backend.User{
		ID:           u.ID.Hex(),
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Department:   u.Department,
		IsActive:     u.IsActive,
		IsOnline:     u.IsOnline,
		CreatedAt:    ts(u.CreatedAt),
		LastLogin:    isotime.ParsePtr(u.LastLogin),
	}
}

func categoryView(c models.Category) backend.Category {
	return backend.Category{
		ID:          c.ID.Hex(),
		Name:        c.Name,
		Description: c.Description,
		Department:  c.Department,
		Icon:        c.Icon,
		CreatedAt:   ts(c.CreatedAt),
	}
}

// complaintView uses the names embedded at write time; ListComplaints
// overwrites them with current ones.
func complaintView(c models.Complaint) backend.Complaint {
	return backend.Complaint{
		ID:           c.ID.Hex(),
		Title:        c.Title,
		Description:  c.Description,
		Location:     c.Location,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		CategoryID:   c.CategoryID.Hex(),
		CategoryName: c.CategoryName,
		AuthorID:     c.UserID.Hex(),
		AuthorName:   c.AuthorName,
		AssigneeID:   hexOpt(c.AssignedTo),
		AssigneeName: c.AssigneeName,
		Status:       c.Status,
		Priority:     c.Priority,
		CreatedAt:    ts(c.CreatedAt),
		UpdatedAt:    ts(c.UpdatedAt),
		AssignedAt:   isotime.ParsePtr(c.AssignedAt),
		ResolvedAt:   isotime.ParsePtr(c.ResolvedAt),
	}
}

func updateView(u models.ComplaintUpdate) backend.Update {
	return backend.Update{
		ID:          u.ID.Hex(),
		ComplaintID: u.ComplaintID.Hex(),
		UserID:      u.UserID.Hex(),
		Status:      u.Status,
		Comment:     u.Comment,
		CreatedAt:   ts(u.CreatedAt),
	}
}

func mediaView(m models.ComplaintMedia) backend.Media {
	return backend.Media{
		ID:          m.ID.Hex(),
		ComplaintID: m.ComplaintID.Hex(),
		FilePath:    m.FilePath,
		MediaType:   m.MediaType,
		CreatedAt:   ts(m.CreatedAt),
	}
}

func feedbackView(f models.Feedback) backend.Feedback {
	return backend.Feedback{
		ID:          f.ID.Hex(),
		ComplaintID: f.ComplaintID.Hex(),
		UserID:      f.UserID.Hex(),
		Rating:      f.Rating,
		Comment:     f.Comment,
		CreatedAt:   ts(f.CreatedAt),
	}
}

func notificationView(n models.Notification) backend.Notification {
	return backend.Notification{
		ID:          n.ID.Hex(),
		UserID:      n.UserID.Hex(),
		ComplaintID: hexOpt(n.ComplaintID),
		Title:       n.Title,
		Message:     n.Message,
		IsRead:      n.IsRead,
		CreatedAt:   ts(n.CreatedAt),
	}
}

func auditView(a models.AuditLog) backend.AuditEntry {
	return backend.AuditEntry{
		ID:           a.ID.Hex(),
		UserID:       hexOpt(a.UserID),
		Action:       a.Action,
		ResourceType: a.ResourceType,
		ResourceID:   a.ResourceID,
		Details:      a.Details,
		IPAddress:    a.IPAddress,
		CreatedAt:    ts(a.CreatedAt),
	}
}

func requestView(r models.OfficialRequest) backend.OfficialRequest {
	return backend.OfficialRequest{
		ID:            r.ID.Hex(),
		UserID:        r.UserID.Hex(),
		Department:    r.Department,
		Position:      r.Position,
		EmployeeID:    r.EmployeeID,
		OfficePhone:   r.OfficePhone,
		Justification: r.Justification,
		Status:        r.Status,
		ReviewedBy:    hexOpt(r.ReviewedBy),
		ReviewedAt:    isotime.ParsePtr(r.ReviewedAt),
		ReviewNotes:   r.ReviewNotes,
		CreatedAt:     ts(r.CreatedAt),
	}
}

func mapSlice[M, V any](in []M, conv func(M) V) []V {
	out := make([]V, len(in))
	for i, m := range in {
		out[i] = conv(m)
	}
	return out
}
