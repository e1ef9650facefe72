// internal/app/backend/sqlbackend/sqlbackend.go
//
// Package sqlbackend implements backend.Backend over the relational
// schema. Cascading deletes are left to the foreign-key constraints.
package sqlbackend

import (
	"context"
	"time"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/sqlstore"
	"github.com/dalemusser/cityseva/internal/app/system/normalize"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/domain/records"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Backend struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Name() string { return backend.SQL }

func (b *Backend) Ping(ctx context.Context) error {
	return sqlstore.Ping(ctx, b.db)
}

func (b *Backend) q(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

func page(q *gorm.DB, p backend.Page) *gorm.DB {
	limit, offset := p.Bounds()
	return q.Limit(limit).Offset(offset)
}

func now() time.Time { return time.Now().UTC() }

// first loads one row by primary key.
func first[T any](ctx context.Context, db *gorm.DB, id string, preload ...string) (T, error) {
	var out T
	n, err := parseID(id)
	if err != nil {
		return out, err
	}
	q := db.WithContext(ctx)
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.First(&out, n).Error; err != nil {
		return out, mapErr(err)
	}
	return out, nil
}

// updateByID applies fields to one row and reports ErrNotFound when no
// row matched.
func (b *Backend) updateByID(ctx context.Context, model any, id string, fields map[string]any) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	res := b.q(ctx).Model(model).Where("id = ?", n).Updates(fields)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return backend.ErrNotFound
	}
	return nil
}

// taken reports whether col already holds value ignoring case. The unique
// indexes are case-sensitive; the document store folds case.
func (b *Backend) taken(ctx context.Context, model any, col, value string) (bool, error) {
	var n int64
	err := b.q(ctx).Model(model).Where("LOWER("+col+") = LOWER(?)", value).Count(&n).Error
	return n > 0, err
}

func dupErr(err error) error {
	if err != nil {
		return err
	}
	return backend.ErrDuplicate
}

// ---- users

func (b *Backend) CreateUser(ctx context.Context, u backend.User) (backend.User, error) {
	rec := records.User{
		Email:        normalize.Email(u.Email),
		Username:     normalize.Name(u.Username),
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Department:   u.Department,
		IsActive:     u.IsActive,
		CreatedAt:    now(),
	}
	if rec.Role == "" {
		rec.Role = models.RoleCitizen
	}
	if dup, err := b.taken(ctx, &records.User{}, "username", rec.Username); err != nil || dup {
		return backend.User{}, dupErr(err)
	}
	if err := b.q(ctx).Create(&rec).Error; err != nil {
		return backend.User{}, mapErr(err)
	}
	return userView(rec), nil
}

func (b *Backend) GetUser(ctx context.Context, id string) (backend.User, error) {
	u, err := first[records.User](ctx, b.db, id)
	if err != nil {
		return backend.User{}, err
	}
	return userView(u), nil
}

func (b *Backend) GetUserByEmail(ctx context.Context, email string) (backend.User, error) {
	var u records.User
	if err := b.q(ctx).Where("email = ?", normalize.Email(email)).First(&u).Error; err != nil {
		return backend.User{}, mapErr(err)
	}
	return userView(u), nil
}

func (b *Backend) GetUserByUsername(ctx context.Context, username string) (backend.User, error) {
	var u records.User
	if err := b.q(ctx).Where("LOWER(username) = LOWER(?)", normalize.Name(username)).First(&u).Error; err != nil {
		return backend.User{}, mapErr(err)
	}
	return userView(u), nil
}

func (b *Backend) ListUsers(ctx context.Context, f backend.UserFilter) ([]backend.User, error) {
	q := b.q(ctx)
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	var out []records.User
	if err := page(q.Order("id"), f.Page).Find(&out).Error; err != nil {
		return nil, err
	}
	return mapSlice(out, userView), nil
}

func (b *Backend) SetUserRole(ctx context.Context, id, role string, department *string) error {
	return b.updateByID(ctx, &records.User{}, id, map[string]any{"role": role, "department": department})
}

func (b *Backend) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return b.updateByID(ctx, &records.User{}, id, map[string]any{"last_login": at.UTC()})
}

// DeleteUser relies on the schema: owned rows cascade, the reviewer,
// assignee and audit actor references are set to NULL.
func (b *Backend) DeleteUser(ctx context.Context, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	return mapErr(b.q(ctx).Delete(&records.User{}, n).Error)
}

// ---- categories

func (b *Backend) CreateCategory(ctx context.Context, c backend.Category) (backend.Category, error) {
	rec := records.Category{
		Name:        normalize.Name(c.Name),
		Description: c.Description,
		Department:  c.Department,
		Icon:        c.Icon,
		CreatedAt:   now(),
	}
	if dup, err := b.taken(ctx, &records.Category{}, "name", rec.Name); err != nil || dup {
		return backend.Category{}, dupErr(err)
	}
	if err := b.q(ctx).Create(&rec).Error; err != nil {
		return backend.Category{}, mapErr(err)
	}
	return categoryView(rec), nil
}

func (b *Backend) GetCategory(ctx context.Context, id string) (backend.Category, error) {
	c, err := first[records.Category](ctx, b.db, id)
	if err != nil {
		return backend.Category{}, err
	}
	return categoryView(c), nil
}

func (b *Backend) ListCategories(ctx context.Context) ([]backend.Category, error) {
	var out []records.Category
	if err := b.q(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return mapSlice(out, categoryView), nil
}

func (b *Backend) DeleteCategory(ctx context.Context, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	return b.q(ctx).Transaction(func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Model(&records.Complaint{}).Where("category_id = ?", n).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return backend.ErrCategoryInUse
		}
		return mapErr(tx.Delete(&records.Category{}, n).Error)
	})
}

// ---- complaints

var complaintJoins = []string{"Category", "Author", "Assignee"}

func (b *Backend) CreateComplaint(ctx context.Context, c backend.Complaint) (backend.Complaint, error) {
	cat, err := parseID(c.CategoryID)
	if err != nil {
		return backend.Complaint{}, err
	}
	author, err := parseID(c.AuthorID)
	if err != nil {
		return backend.Complaint{}, err
	}
	ts := now()
	rec := records.Complaint{
		Title:       c.Title,
		Description: c.Description,
		Location:    c.Location,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		CategoryID:  cat,
		UserID:      author,
		Status:      c.Status,
		Priority:    c.Priority,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		ResolvedAt:  c.ResolvedAt,
	}
	if rec.Status == "" {
		rec.Status = models.StatusPending
	}
	if err := b.q(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return backend.Complaint{}, mapErr(err)
	}
	return b.GetComplaint(ctx, fmtID(rec.ID))
}

func (b *Backend) GetComplaint(ctx context.Context, id string) (backend.Complaint, error) {
	c, err := first[records.Complaint](ctx, b.db, id, complaintJoins...)
	if err != nil {
		return backend.Complaint{}, err
	}
	return complaintView(c), nil
}

func complaintWhere(q *gorm.DB, f backend.ComplaintFilter) (*gorm.DB, bool) {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	for col, v := range map[string]string{"category_id": f.CategoryID, "user_id": f.AuthorID, "assigned_to": f.AssigneeID} {
		if v == "" {
			continue
		}
		n, err := parseID(v)
		if err != nil {
			return q, false
		}
		q = q.Where(col+" = ?", n)
	}
	return q, true
}

func (b *Backend) ListComplaints(ctx context.Context, f backend.ComplaintFilter) ([]backend.Complaint, error) {
	q, ok := complaintWhere(b.q(ctx), f)
	if !ok {
		return []backend.Complaint{}, nil
	}
	for _, p := range complaintJoins {
		q = q.Preload(p)
	}
	var out []records.Complaint
	if err := page(q.Order("created_at DESC, id DESC"), f.Page).Find(&out).Error; err != nil {
		return nil, err
	}
	return mapSlice(out, complaintView), nil
}

func (b *Backend) CountComplaints(ctx context.Context, f backend.ComplaintFilter) (int64, error) {
	q, ok := complaintWhere(b.q(ctx).Model(&records.Complaint{}), f)
	if !ok {
		return 0, nil
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (b *Backend) SetComplaintStatus(ctx context.Context, id, status string, resolvedAt *time.Time) error {
	return b.updateByID(ctx, &records.Complaint{}, id, map[string]any{
		"status":      status,
		"resolved_at": resolvedAt,
		"updated_at":  now(),
	})
}

func (b *Backend) AssignComplaint(ctx context.Context, id, assigneeID string, at time.Time) error {
	assignee, err := parseOptID(assigneeID)
	if err != nil {
		return err
	}
	fields := map[string]any{"assigned_to": assignee, "assigned_at": nil, "updated_at": now()}
	if assignee != nil {
		fields["assigned_at"] = at.UTC()
	}
	return b.updateByID(ctx, &records.Complaint{}, id, fields)
}

func (b *Backend) DeleteComplaint(ctx context.Context, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	return mapErr(b.q(ctx).Delete(&records.Complaint{}, n).Error)
}

// ---- updates, media, feedback

func (b *Backend) AddUpdate(ctx context.Context, u backend.Update) (backend.Update, error) {
	complaint, err := parseID(u.ComplaintID)
	if err != nil {
		return backend.Update{}, err
	}
	user, err := parseID(u.UserID)
	if err != nil {
		return backend.Update{}, err
	}
	rec := records.ComplaintUpdate{ComplaintID: complaint, UserID: user, Status: u.Status, Comment: u.Comment, CreatedAt: now()}
	if err := b.q(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return backend.Update{}, mapErr(err)
	}
	return updateView(rec), nil
}

func (b *Backend) ListUpdates(ctx context.Context, complaintID string) ([]backend.Update, error) {
	n, err := parseID(complaintID)
	if err != nil {
		return []backend.Update{}, nil
	}
	var out []records.ComplaintUpdate
	if err := b.q(ctx).Where("complaint_id = ?", n).Order("created_at, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return mapSlice(out, updateView), nil
}

func (b *Backend) AddMedia(ctx context.Context, m backend.Media) (backend.Media, error) {
	complaint, err := parseID(m.ComplaintID)
	if err != nil {
		return backend.Media{}, err
	}
	rec := records.ComplaintMedia{ComplaintID: complaint, FilePath: m.FilePath, MediaType: m.MediaType, CreatedAt: now()}
	if err := b.q(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return backend.Media{}, mapErr(err)
	}
	return mediaView(rec), nil
}

func (b *Backend) ListMedia(ctx context.Context, complaintID string) ([]backend.Media, error) {
	n, err := parseID(complaintID)
	if err != nil {
		return []backend.Media{}, nil
	}
	var out []records.ComplaintMedia
	if err := b.q(ctx).Where("complaint_id = ?", n).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return mapSlice(out, mediaView), nil
}

func (b *Backend) AddFeedback(ctx context.Context, f backend.Feedback) (backend.Feedback, error) {
	complaint, err := parseID(f.ComplaintID)
	if err != nil {
		return backend.Feedback{}, err
	}
	user, err := parseID(f.UserID)
	if err != nil {
		return backend.Feedback{}, err
	}
	rec := records.Feedback{ComplaintID: complaint, UserID: user, Rating: f.Rating, Comment: f.Comment, CreatedAt: now()}
	if err := b.q(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return backend.Feedback{}, mapErr(err)
	}
	return feedbackView(rec), nil
}

func (b *Backend) GetFeedback(ctx context.Context, complaintID string) (backend.Feedback, error) {
	n, err := parseID(complaintID)
	if err != nil {
		return backend.Feedback{}, err
	}
	var f records.Feedback
	if err := b.q(ctx).Where("complaint_id = ?", n).First(&f).Error; err != nil {
		return backend.Feedback{}, mapErr(err)
	}
	return feedbackView(f), nil
}

// ---- notifications

func (b *Backend) AddNotification(ctx context.Context, n backend.Notification) (backend.Notification, error) {
	user, err := parseID(n.UserID)
	if err != nil {
		return backend.Notification{}, err
	}
	complaint, err := parseOptID(n.ComplaintID)
	if err != nil {
		return backend.Notification{}, err
	}
	rec := records.Notification{UserID: user, ComplaintID: complaint, Title: n.Title, Message: n.Message, CreatedAt: now()}
	if err := b.q(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return backend.Notification{}, mapErr(err)
	}
	return notificationView(rec), nil
}

func (b *Backend) ListNotifications(ctx context.Context, f backend.NotificationFilter) ([]backend.Notification, error) {
	user, err := parseID(f.UserID)
	if err != nil {
		return []backend.Notification{}, nil
	}
	q := b.q(ctx).Where("user_id = ?", user)
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []records.Notification
	if err := page(q.Order("created_at DESC, id DESC"), f.Page).Find(&out).Error; err != nil {
		return nil, err
	}
	return mapSlice(out, notificationView), nil
}

func (b *Backend) MarkNotificationRead(ctx context.Context, id, userID string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	user, err := parseID(userID)
	if err != nil {
		return err
	}
	res := b.q(ctx).Model(&records.Notification{}).Where("id = ? AND user_id = ?", n, user).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return backend.ErrNotFound
	}
	return nil
}

// ---- audit

func (b *Backend) AddAudit(ctx context.Context, e backend.AuditEntry) (backend.AuditEntry, error) {
	// an unparsable actor is recorded as anonymous
	actor, _ := parseOptID(e.UserID)
	rec := records.AuditLog{
		UserID:       actor,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Details:      e.Details,
		IPAddress:    e.IPAddress,
		CreatedAt:    now(),
	}
	if err := b.q(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return backend.AuditEntry{}, mapErr(err)
	}
	return auditView(rec), nil
}

func (b *Backend) ListAudit(ctx context.Context, f backend.AuditFilter) ([]backend.AuditEntry, error) {
	q := b.q(ctx)
	if f.UserID != "" {
		n, err := parseID(f.UserID)
		if err != nil {
			return []backend.AuditEntry{}, nil
		}
		q = q.Where("user_id = ?", n)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.ResourceType != "" {
		q = q.Where("resource_type = ?", f.ResourceType)
	}
	if f.ResourceID != "" {
		q = q.Where("resource_id = ?", f.ResourceID)
	}
	if f.Since != nil {
		q = q.Where("created_at >= ?", f.Since.UTC())
	}
	if f.Until != nil {
		q = q.Where("created_at <= ?", f.Until.UTC())
	}
	var out []records.AuditLog
	if err := page(q.Order("created_at DESC, id DESC"), f.Page).Find(&out).Error; err != nil {
		return nil, err
	}
	return mapSlice(out, auditView), nil
}

// ---- official requests

func (b *Backend) CreateOfficialRequest(ctx context.Context, r backend.OfficialRequest) (backend.OfficialRequest, error) {
	user, err := parseID(r.UserID)
	if err != nil {
		return backend.OfficialRequest{}, err
	}
	rec := records.OfficialRequest{
		UserID:        user,
		Department:    r.Department,
		Position:      r.Position,
		EmployeeID:    r.EmployeeID,
		OfficePhone:   r.OfficePhone,
		Justification: r.Justification,
		Status:        models.RequestPending,
		CreatedAt:     now(),
	}
	if err := b.q(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return backend.OfficialRequest{}, mapErr(err)
	}
	return requestView(rec), nil
}

func (b *Backend) GetOfficialRequest(ctx context.Context, id string) (backend.OfficialRequest, error) {
	r, err := first[records.OfficialRequest](ctx, b.db, id)
	if err != nil {
		return backend.OfficialRequest{}, err
	}
	return requestView(r), nil
}

func (b *Backend) PendingOfficialRequest(ctx context.Context, userID string) (backend.OfficialRequest, error) {
	user, err := parseID(userID)
	if err != nil {
		return backend.OfficialRequest{}, err
	}
	var r records.OfficialRequest
	if err := b.q(ctx).Where("user_id = ? AND status = ?", user, models.RequestPending).First(&r).Error; err != nil {
		return backend.OfficialRequest{}, mapErr(err)
	}
	return requestView(r), nil
}

func (b *Backend) ListOfficialRequests(ctx context.Context, f backend.RequestFilter) ([]backend.OfficialRequest, error) {
	q := b.q(ctx)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != "" {
		n, err := parseID(f.UserID)
		if err != nil {
			return []backend.OfficialRequest{}, nil
		}
		q = q.Where("user_id = ?", n)
	}
	var out []records.OfficialRequest
	if err := page(q.Order("created_at DESC, id DESC"), f.Page).Find(&out).Error; err != nil {
		return nil, err
	}
	return mapSlice(out, requestView), nil
}

func (b *Backend) ReviewOfficialRequest(ctx context.Context, id, status, reviewerID, notes string, at time.Time) error {
	reviewer, err := parseOptID(reviewerID)
	if err != nil {
		return err
	}
	return b.updateByID(ctx, &records.OfficialRequest{}, id, map[string]any{
		"status":       status,
		"reviewed_by":  reviewer,
		"reviewed_at":  at.UTC(),
		"review_notes": notes,
	})
}

var _ backend.Backend = (*Backend)(nil)
