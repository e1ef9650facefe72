// internal/app/backend/sqlbackend/convert.go
package sqlbackend

import (
	"errors"
	"strconv"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/domain/records"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func parseID(id string) (uint, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, backend.ErrNotFound
	}
	return uint(n), nil
}

func parseOptID(id string) (*uint, error) {
	if id == "" {
		return nil, nil
	}
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func fmtID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func fmtOptID(id *uint) string {
	if id == nil {
		return ""
	}
	return fmtID(*id)
}

// mapErr translates gorm and postgres errors to backend sentinels. A
// foreign-key violation means a referenced row is missing.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return backend.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return backend.ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return backend.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return backend.ErrDuplicate
		case "23503":
			return backend.ErrNotFound
		}
	}
	return err
}

func userView(u records.User) backend.User {
	return backend.User{
		ID:           fmtID(u.ID),
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Department:   u.Department,
		IsActive:     u.IsActive,
		IsOnline:     u.IsOnline,
		CreatedAt:    u.CreatedAt,
		LastLogin:    u.LastLogin,
	}
}

func categoryView(c records.Category) backend.Category {
	return backend.Category{
		ID:          fmtID(c.ID),
		Name:        c.Name,
		Description: c.Description,
		Department:  c.Department,
		Icon:        c.Icon,
		CreatedAt:   c.CreatedAt,
	}
}

// complaintView expects Category, Author and Assignee to be preloaded.
func complaintView(c records.Complaint) backend.Complaint {
	v := backend.Complaint{
		ID:           fmtID(c.ID),
		Title:        c.Title,
		Description:  c.Description,
		Location:     c.Location,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		CategoryID:   fmtID(c.CategoryID),
		CategoryName: c.Category.Name,
		AuthorID:     fmtID(c.UserID),
		AuthorName:   c.Author.Username,
		AssigneeID:   fmtOptID(c.AssignedTo),
		Status:       c.Status,
		Priority:     c.Priority,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		AssignedAt:   c.AssignedAt,
		ResolvedAt:   c.ResolvedAt,
	}
	if c.Assignee != nil {
		v.AssigneeName = c.Assignee.Username
	}
	return v
}

func updateView(u records.ComplaintUpdate) backend.Update {
	return backend.Update{
		ID:          fmtID(u.ID),
		ComplaintID: fmtID(u.ComplaintID),
		UserID:      fmtID(u.UserID),
		Status:      u.Status,
		Comment:     u.Comment,
		CreatedAt:   u.CreatedAt,
	}
}

func mediaView(m records.ComplaintMedia) backend.Media {
	return backend.Media{
		ID:          fmtID(m.ID),
		ComplaintID: fmtID(m.ComplaintID),
		FilePath:    m.FilePath,
		MediaType:   m.MediaType,
		CreatedAt:   m.CreatedAt,
	}
}

func feedbackView(f records.Feedback) backend.Feedback {
	return backend.Feedback{
		ID:          fmtID(f.ID),
		ComplaintID: fmtID(f.ComplaintID),
		UserID:      fmtID(f.UserID),
		Rating:      f.Rating,
		Comment:     f.Comment,
		CreatedAt:   f.CreatedAt,
	}
}

func notificationView(n records.Notification) backend.Notification {
	return backend.Notification{
		ID:          fmtID(n.ID),
		UserID:      fmtID(n.UserID),
		ComplaintID: fmtOptID(n.ComplaintID),
		Title:       n.Title,
		Message:     n.Message,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}

func auditView(a records.AuditLog) backend.AuditEntry {
	return backend.AuditEntry{
		ID:           fmtID(a.ID),
		UserID:       fmtOptID(a.UserID),
		Action:       a.Action,
		ResourceType: a.ResourceType,
		ResourceID:   a.ResourceID,
		Details:      a.Details,
		IPAddress:    a.IPAddress,
		CreatedAt:    a.CreatedAt,
	}
}

func requestView(r records.OfficialRequest) backend.OfficialRequest {
	return backend.OfficialRequest{
		ID:            fmtID(r.ID),
		UserID:        fmtID(r.UserID),
		Department:    r.Department,
		Position:      r.Position,
		EmployeeID:    r.EmployeeID,
		OfficePhone:   r.OfficePhone,
		Justification: r.Justification,
		Status:        r.Status,
		ReviewedBy:    fmtOptID(r.ReviewedBy),
		ReviewedAt:    r.ReviewedAt,
		ReviewNotes:   r.ReviewNotes,
		CreatedAt:     r.CreatedAt,
	}
}

func mapSlice[R, V any](in []R, conv func(R) V) []V {
	out := make([]V, len(in))
	for i, r := range in {
		out[i] = conv(r)
	}
	return out
}
