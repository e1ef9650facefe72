// internal/app/migration/convert.go
package migration

import (
	"github.com/dalemusser/cityseva/internal/app/migration/idmap"
	"github.com/dalemusser/cityseva/internal/app/system/isotime"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/domain/records"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// resolver rewrites one row's foreign keys through the mapper.
type resolver struct {
	m       *idmap.Mapper
	log     *zap.Logger
	child   Kind
	childID uint

	userNames     map[uint]string
	categoryNames map[uint]string
}

// required resolves a foreign key the row cannot exist without.
func (r *resolver) required(parent idmap.Kind, id uint) (primitive.ObjectID, error) {
	doc, ok := r.m.Lookup(parent, id)
	if !ok {
		return primitive.NilObjectID, &MissingParentError{Child: r.child, ChildID: r.childID, Parent: Kind(parent), ParentID: id}
	}
	return doc, nil
}

// optional resolves a nullable foreign key. A reference to a parent that
// did not migrate is dropped with a warning; the row still migrates.
func (r *resolver) optional(parent idmap.Kind, id *uint, field string) *primitive.ObjectID {
	if id == nil {
		return nil
	}
	doc, ok := r.m.Lookup(parent, *id)
	if !ok {
		r.log.Warn("clearing reference to unmigrated parent",
			zap.String("kind", string(r.child)),
			zap.Uint("legacy_id", r.childID),
			zap.String("field", field),
			zap.String("parent", string(parent)),
			zap.Uint("parent_id", *id))
		return nil
	}
	return &doc
}

func convertUser(u records.User, _ *resolver) (any, error) {
	created := isotime.Format(u.CreatedAt)
	return models.User{
		LegacyID:     u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Department:   u.Department,
		IsActive:     u.IsActive,
		IsOnline:     u.IsOnline,
		CreatedAt:    created,
		UpdatedAt:    created,
		LastLogin:    isotime.FormatPtr(u.LastLogin),
	}, nil
}

func convertCategory(c records.Category, _ *resolver) (any, error) {
	created := isotime.Format(c.CreatedAt)
	return models.Category{
		LegacyID:    c.ID,
		Name:        c.Name,
		Description: c.Description,
		Department:  c.Department,
		Icon:        c.Icon,
		CreatedAt:   created,
		UpdatedAt:   created,
	}, nil
}

func convertComplaint(c records.Complaint, r *resolver) (any, error) {
	author, err := r.required(idmap.Users, c.UserID)
	if err != nil {
		return nil, err
	}
	cat, err := r.required(idmap.Categories, c.CategoryID)
	if err != nil {
		return nil, err
	}
	doc := models.Complaint{
		LegacyID:     c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Location:     c.Location,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		CategoryID:   cat,
		CategoryName: r.categoryNames[c.CategoryID],
		UserID:       author,
		AuthorName:   r.userNames[c.UserID],
		AssignedTo:   r.optional(idmap.Users, c.AssignedTo, "assigned_to"),
		Status:       c.Status,
		Priority:     c.Priority,
		CreatedAt:    isotime.Format(c.CreatedAt),
		UpdatedAt:    isotime.Format(c.UpdatedAt),
		AssignedAt:   isotime.FormatPtr(c.AssignedAt),
		ResolvedAt:   isotime.FormatPtr(c.ResolvedAt),
	}
	if doc.AssignedTo != nil {
		doc.AssigneeName = r.userNames[*c.AssignedTo]
	}
	if doc.Status == models.StatusResolved && doc.ResolvedAt == nil {
		doc.ResolvedAt = &doc.UpdatedAt
	}
	if doc.Status != models.StatusResolved {
		doc.ResolvedAt = nil
	}
	return doc, nil
}

func convertMedia(m records.ComplaintMedia, r *resolver) (any, error) {
	complaint, err := r.required(idmap.Complaints, m.ComplaintID)
	if err != nil {
		return nil, err
	}
	return models.ComplaintMedia{
		LegacyID:    m.ID,
		ComplaintID: complaint,
		FilePath:    m.FilePath,
		MediaType:   m.MediaType,
		CreatedAt:   isotime.Format(m.CreatedAt),
	}, nil
}

func convertUpdate(u records.ComplaintUpdate, r *resolver) (any, error) {
	complaint, err := r.required(idmap.Complaints, u.ComplaintID)
	if err != nil {
		return nil, err
	}
	user, err := r.required(idmap.Users, u.UserID)
	if err != nil {
		return nil, err
	}
	return models.ComplaintUpdate{
		LegacyID:    u.ID,
		ComplaintID: complaint,
		UserID:      user,
		Status:      u.Status,
		Comment:     u.Comment,
		CreatedAt:   isotime.Format(u.CreatedAt),
	}, nil
}

func convertFeedback(f records.Feedback, r *resolver) (any, error) {
	complaint, err := r.required(idmap.Complaints, f.ComplaintID)
	if err != nil {
		return nil, err
	}
	user, err := r.required(idmap.Users, f.UserID)
	if err != nil {
		return nil, err
	}
	return models.Feedback{
		LegacyID:    f.ID,
		ComplaintID: complaint,
		UserID:      user,
		Rating:      f.Rating,
		Comment:     f.Comment,
		CreatedAt:   isotime.Format(f.CreatedAt),
	}, nil
}

func convertAuditLog(a records.AuditLog, r *resolver) (any, error) {
	return models.AuditLog{
		LegacyID:     a.ID,
		UserID:       r.optional(idmap.Users, a.UserID, "user_id"),
		Action:       a.Action,
		ResourceType: a.ResourceType,
		ResourceID:   a.ResourceID,
		Details:      a.Details,
		IPAddress:    a.IPAddress,
		CreatedAt:    isotime.Format(a.CreatedAt),
	}, nil
}

func convertNotification(n records.Notification, r *resolver) (any, error) {
	user, err := r.required(idmap.Users, n.UserID)
	if err != nil {
		return nil, err
	}
	return models.Notification{
		LegacyID:    n.ID,
		UserID:      user,
		ComplaintID: r.optional(idmap.Complaints, n.ComplaintID, "complaint_id"),
		Title:       n.Title,
		Message:     n.Message,
		IsRead:      n.IsRead,
		CreatedAt:   isotime.Format(n.CreatedAt),
	}, nil
}

func convertOfficialRequest(o records.OfficialRequest, r *resolver) (any, error) {
	user, err := r.required(idmap.Users, o.UserID)
	if err != nil {
		return nil, err
	}
	created := isotime.Format(o.CreatedAt)
	return models.OfficialRequest{
		LegacyID:      o.ID,
		UserID:        user,
		Department:    o.Department,
		Position:      o.Position,
		EmployeeID:    o.EmployeeID,
		OfficePhone:   o.OfficePhone,
		Justification: o.Justification,
		Status:        o.Status,
		ReviewedBy:    r.optional(idmap.Users, o.ReviewedBy, "reviewed_by"),
		ReviewedAt:    isotime.FormatPtr(o.ReviewedAt),
		ReviewNotes:   o.ReviewNotes,
		CreatedAt:     created,
		UpdatedAt:     created,
	}, nil
}
