// internal/app/backend/docbackend/docbackend.go
//
// Package docbackend implements backend.Backend over the MongoDB stores.
package docbackend

import (
	"context"
	"time"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/store/audit"
	"github.com/dalemusser/cityseva/internal/app/store/cascade"
	categorystore "github.com/dalemusser/cityseva/internal/app/store/categories"
	complaintstore "github.com/dalemusser/cityseva/internal/app/store/complaints"
	feedbackstore "github.com/dalemusser/cityseva/internal/app/store/feedback"
	mediastore "github.com/dalemusser/cityseva/internal/app/store/media"
	notificationstore "github.com/dalemusser/cityseva/internal/app/store/notifications"
	requeststore "github.com/dalemusser/cityseva/internal/app/store/officialrequests"
	"github.com/dalemusser/cityseva/internal/app/store/query"
	updatestore "github.com/dalemusser/cityseva/internal/app/store/updates"
	userstore "github.com/dalemusser/cityseva/internal/app/store/users"
	"github.com/dalemusser/cityseva/internal/app/system/displaycache"
	"github.com/dalemusser/cityseva/internal/app/system/isotime"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type Backend struct {
	db    *mongo.Database
	log   *zap.Logger
	names displaycache.Cache

	users      *userstore.Store
	categories *categorystore.Store
	complaints *complaintstore.Store
	updates    *updatestore.Store
	media      *mediastore.Store
	feedback   *feedbackstore.Store
	notes      *notificationstore.Store
	audit      *audit.Store
	requests   *requeststore.Store
	cascade    *cascade.Deleter
}

// New wires every store over db. names may be nil.
func New(db *mongo.Database, names displaycache.Cache, log *zap.Logger) *Backend {
	if names == nil {
		names = displaycache.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Backend{
		db:         db,
		log:        log,
		names:      names,
		users:      userstore.New(db),
		categories: categorystore.New(db),
		complaints: complaintstore.New(db),
		updates:    updatestore.New(db),
		media:      mediastore.New(db),
		feedback:   feedbackstore.New(db),
		notes:      notificationstore.New(db),
		audit:      audit.New(db),
		requests:   requeststore.New(db),
		cascade:    cascade.New(db, log),
	}
}

func (b *Backend) Name() string { return backend.Document }

func (b *Backend) Ping(ctx context.Context) error {
	return b.db.Client().Ping(ctx, readpref.Primary())
}

func paged(f query.Filter, p backend.Page) query.Filter {
	limit, offset := p.Bounds()
	return f.Page(int64(limit), int64(offset))
}

// ---- users

func (b *Backend) CreateUser(ctx context.Context, u backend.User) (backend.User, error) {
	doc, err := b.users.Create(ctx, models.User{
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Department:   u.Department,
		IsActive:     u.IsActive,
	})
	if err != nil {
		return backend.User{}, mapErr(err, userstore.ErrDuplicate)
	}
	return userView(doc), nil
}

func (b *Backend) getUser(get func() (*models.User, error)) (backend.User, error) {
	u, err := get()
	if err != nil {
		return backend.User{}, mapErr(err, nil)
	}
	return userView(*u), nil
}

func (b *Backend) GetUser(ctx context.Context, id string) (backend.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return backend.User{}, err
	}
	return b.getUser(func() (*models.User, error) { return b.users.GetByID(ctx, oid) })
}

func (b *Backend) GetUserByEmail(ctx context.Context, email string) (backend.User, error) {
	return b.getUser(func() (*models.User, error) { return b.users.GetByEmail(ctx, email) })
}

func (b *Backend) GetUserByUsername(ctx context.Context, username string) (backend.User, error) {
	return b.getUser(func() (*models.User, error) { return b.users.GetByUsername(ctx, username) })
}

func (b *Backend) ListUsers(ctx context.Context, f backend.UserFilter) ([]backend.User, error) {
	qf := query.Filter{OrderBy: "created_at"}
	if f.Role != "" {
		qf = qf.And("role", f.Role)
	}
	out, err := b.users.Find(ctx, paged(qf, f.Page))
	if err != nil {
		return nil, err
	}
	return mapSlice(out, userView), nil
}

func (b *Backend) SetUserRole(ctx context.Context, id, role string, department *string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return mapErr(b.users.Update(ctx, oid, bson.M{"role": role, "department": department}), nil)
}

func (b *Backend) RecordLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return mapErr(b.users.Update(ctx, oid, bson.M{"last_login": isotime.Format(at)}), nil)
}

func (b *Backend) DeleteUser(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if _, err := b.cascade.DeleteUser(ctx, oid); err != nil {
		return err
	}
	b.names.Forget(ctx, displaycache.Users, id)
	return nil
}

// ---- categories

func (b *Backend) CreateCategory(ctx context.Context, c backend.Category) (backend.Category, error) {
	doc, err := b.categories.Create(ctx, models.Category{
		Name:        c.Name,
		Description: c.Description,
		Department:  c.Department,
		Icon:        c.Icon,
	})
	if err != nil {
		return backend.Category{}, mapErr(err, categorystore.ErrDuplicate)
	}
	return categoryView(doc), nil
}

func (b *Backend) GetCategory(ctx context.Context, id string) (backend.Category, error) {
	oid, err := parseID(id)
	if err != nil {
		return backend.Category{}, err
	}
	c, err := b.categories.GetByID(ctx, oid)
	if err != nil {
		return backend.Category{}, mapErr(err, nil)
	}
	return categoryView(*c), nil
}

func (b *Backend) ListCategories(ctx context.Context) ([]backend.Category, error) {
	out, err := b.categories.Find(ctx, query.Filter{OrderBy: "name"})
	if err != nil {
		return nil, err
	}
	return mapSlice(out, categoryView), nil
}

func (b *Backend) DeleteCategory(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	n, err := b.complaints.CountByCategory(ctx, oid)
	if err != nil {
		return err
	}
	if n > 0 {
		return backend.ErrCategoryInUse
	}
	if _, err := b.categories.Delete(ctx, oid); err != nil {
		return err
	}
	b.names.Forget(ctx, displaycache.Categories, id)
	return nil
}

// ---- complaints

func (b *Backend) CreateComplaint(ctx context.Context, c backend.Complaint) (backend.Complaint, error) {
	catID, err := parseID(c.CategoryID)
	if err != nil {
		return backend.Complaint{}, err
	}
	authorID, err := parseID(c.AuthorID)
	if err != nil {
		return backend.Complaint{}, err
	}
	cat, err := b.categories.GetByID(ctx, catID)
	if err != nil {
		return backend.Complaint{}, mapErr(err, nil)
	}
	author, err := b.users.GetByID(ctx, authorID)
	if err != nil {
		return backend.Complaint{}, mapErr(err, nil)
	}
	doc, err := b.complaints.Create(ctx, models.Complaint{
		Title:        c.Title,
		Description:  c.Description,
		Location:     c.Location,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		UserID:       author.ID,
		AuthorName:   author.Username,
		Status:       c.Status,
		Priority:     c.Priority,
	})
	if err != nil {
		return backend.Complaint{}, err
	}
	return complaintView(doc), nil
}

func (b *Backend) GetComplaint(ctx context.Context, id string) (backend.Complaint, error) {
	oid, err := parseID(id)
	if err != nil {
		return backend.Complaint{}, err
	}
	c, err := b.complaints.GetByID(ctx, oid)
	if err != nil {
		return backend.Complaint{}, mapErr(err, nil)
	}
	views, err := b.joinNames(ctx, []models.Complaint{*c})
	if err != nil {
		return backend.Complaint{}, err
	}
	return views[0], nil
}

// complaintFilter reports false when an ID in f cannot match anything.
func complaintFilter(f backend.ComplaintFilter) (query.Filter, bool) {
	qf := query.Filter{}
	if f.Status != "" {
		qf = qf.And("status", f.Status)
	}
	if f.Priority != "" {
		qf = qf.And("priority", f.Priority)
	}
	for field, v := range map[string]string{"category_id": f.CategoryID, "user_id": f.AuthorID, "assigned_to": f.AssigneeID} {
		if v == "" {
			continue
		}
		oid, err := parseID(v)
		if err != nil {
			return qf, false
		}
		qf = qf.And(field, oid)
	}
	return qf, true
}

func (b *Backend) ListComplaints(ctx context.Context, f backend.ComplaintFilter) ([]backend.Complaint, error) {
	qf, ok := complaintFilter(f)
	if !ok {
		return []backend.Complaint{}, nil
	}
	docs, err := b.complaints.Find(ctx, paged(qf.Newest(), f.Page))
	if err != nil {
		return nil, err
	}
	return b.joinNames(ctx, docs)
}

func (b *Backend) CountComplaints(ctx context.Context, f backend.ComplaintFilter) (int64, error) {
	qf, ok := complaintFilter(f)
	if !ok {
		return 0, nil
	}
	return b.complaints.Count(ctx, qf)
}

func (b *Backend) SetComplaintStatus(ctx context.Context, id, status string, resolvedAt *time.Time) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	set := bson.M{"status": status}
	if resolvedAt != nil && status == models.StatusResolved {
		set["resolved_at"] = isotime.Format(*resolvedAt)
	}
	return mapErr(b.complaints.Update(ctx, oid, set), nil)
}

func (b *Backend) AssignComplaint(ctx context.Context, id, assigneeID string, at time.Time) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	assignee, err := parseOptID(assigneeID)
	if err != nil {
		return err
	}
	set := bson.M{"assigned_to": nil, "assignee_name": "", "assigned_at": nil}
	if assignee != nil {
		u, err := b.users.GetByID(ctx, *assignee)
		if err != nil {
			return mapErr(err, nil)
		}
		set = bson.M{"assigned_to": u.ID, "assignee_name": u.Username, "assigned_at": isotime.Format(at)}
	}
	return mapErr(b.complaints.Update(ctx, oid, set), nil)
}

func (b *Backend) DeleteComplaint(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	_, err = b.cascade.DeleteComplaint(ctx, oid)
	return err
}

// ---- updates, media, feedback

func (b *Backend) AddUpdate(ctx context.Context, u backend.Update) (backend.Update, error) {
	complaintID, err := parseID(u.ComplaintID)
	if err != nil {
		return backend.Update{}, err
	}
	userID, err := parseID(u.UserID)
	if err != nil {
		return backend.Update{}, err
	}
	doc, err := b.updates.Create(ctx, models.ComplaintUpdate{
		ComplaintID: complaintID, UserID: userID, Status: u.Status, Comment: u.Comment,
	})
	if err != nil {
		return backend.Update{}, err
	}
	return updateView(doc), nil
}

func (b *Backend) ListUpdates(ctx context.Context, complaintID string) ([]backend.Update, error) {
	oid, err := parseID(complaintID)
	if err != nil {
		return []backend.Update{}, nil
	}
	out, err := b.updates.ForComplaint(ctx, oid)
	if err != nil {
		return nil, err
	}
	return mapSlice(out, updateView), nil
}

func (b *Backend) AddMedia(ctx context.Context, m backend.Media) (backend.Media, error) {
	complaintID, err := parseID(m.ComplaintID)
	if err != nil {
		return backend.Media{}, err
	}
	doc, err := b.media.Create(ctx, models.ComplaintMedia{
		ComplaintID: complaintID, FilePath: m.FilePath, MediaType: m.MediaType,
	})
	if err != nil {
		return backend.Media{}, err
	}
	return mediaView(doc), nil
}

func (b *Backend) ListMedia(ctx context.Context, complaintID string) ([]backend.Media, error) {
	oid, err := parseID(complaintID)
	if err != nil {
		return []backend.Media{}, nil
	}
	out, err := b.media.Find(ctx, query.Where("complaint_id", oid))
	if err != nil {
		return nil, err
	}
	return mapSlice(out, mediaView), nil
}

func (b *Backend) AddFeedback(ctx context.Context, f backend.Feedback) (backend.Feedback, error) {
	complaintID, err := parseID(f.ComplaintID)
	if err != nil {
		return backend.Feedback{}, err
	}
	userID, err := parseID(f.UserID)
	if err != nil {
		return backend.Feedback{}, err
	}
	doc, err := b.feedback.Create(ctx, models.Feedback{
		ComplaintID: complaintID, UserID: userID, Rating: f.Rating, Comment: f.Comment,
	})
	if err != nil {
		return backend.Feedback{}, mapErr(err, feedbackstore.ErrDuplicate)
	}
	return feedbackView(doc), nil
}

func (b *Backend) GetFeedback(ctx context.Context, complaintID string) (backend.Feedback, error) {
	oid, err := parseID(complaintID)
	if err != nil {
		return backend.Feedback{}, err
	}
	f, err := b.feedback.GetByComplaint(ctx, oid)
	if err != nil {
		return backend.Feedback{}, mapErr(err, nil)
	}
	return feedbackView(*f), nil
}

// ---- notifications

func (b *Backend) AddNotification(ctx context.Context, n backend.Notification) (backend.Notification, error) {
	userID, err := parseID(n.UserID)
	if err != nil {
		return backend.Notification{}, err
	}
	complaintID, err := parseOptID(n.ComplaintID)
	if err != nil {
		return backend.Notification{}, err
	}
	doc, err := b.notes.Create(ctx, models.Notification{
		UserID: userID, ComplaintID: complaintID, Title: n.Title, Message: n.Message,
	})
	if err != nil {
		return backend.Notification{}, err
	}
	return notificationView(doc), nil
}

func (b *Backend) ListNotifications(ctx context.Context, f backend.NotificationFilter) ([]backend.Notification, error) {
	userID, err := parseID(f.UserID)
	if err != nil {
		return []backend.Notification{}, nil
	}
	qf := query.Where("user_id", userID)
	if f.UnreadOnly {
		qf = qf.And("is_read", false)
	}
	out, err := b.notes.Find(ctx, paged(qf.Newest(), f.Page))
	if err != nil {
		return nil, err
	}
	return mapSlice(out, notificationView), nil
}

func (b *Backend) MarkNotificationRead(ctx context.Context, id, userID string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	return mapErr(b.notes.MarkRead(ctx, oid, uid), nil)
}

// ---- audit

func (b *Backend) AddAudit(ctx context.Context, e backend.AuditEntry) (backend.AuditEntry, error) {
	// an unparsable actor is recorded as anonymous
	actor, _ := parseOptID(e.UserID)
	doc, err := b.audit.Log(ctx, models.AuditLog{
		UserID:       actor,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Details:      e.Details,
		IPAddress:    e.IPAddress,
	})
	if err != nil {
		return backend.AuditEntry{}, err
	}
	return auditView(doc), nil
}

func (b *Backend) ListAudit(ctx context.Context, f backend.AuditFilter) ([]backend.AuditEntry, error) {
	limit, offset := f.Bounds()
	qf := audit.QueryFilter{
		Action:       f.Action,
		ResourceType: f.ResourceType,
		ResourceID:   f.ResourceID,
		Limit:        int64(limit),
		Offset:       int64(offset),
	}
	if f.UserID != "" {
		oid, err := parseID(f.UserID)
		if err != nil {
			return []backend.AuditEntry{}, nil
		}
		qf.UserID = &oid
	}
	if f.Since != nil {
		qf.Since = isotime.Format(*f.Since)
	}
	if f.Until != nil {
		qf.Until = isotime.Format(*f.Until)
	}
	out, err := b.audit.Query(ctx, qf)
	if err != nil {
		return nil, err
	}
	return mapSlice(out, auditView), nil
}

// ---- official requests

func (b *Backend) CreateOfficialRequest(ctx context.Context, r backend.OfficialRequest) (backend.OfficialRequest, error) {
	userID, err := parseID(r.UserID)
	if err != nil {
		return backend.OfficialRequest{}, err
	}
	doc, err := b.requests.Create(ctx, models.OfficialRequest{
		UserID:        userID,
		Department:    r.Department,
		Position:      r.Position,
		EmployeeID:    r.EmployeeID,
		OfficePhone:   r.OfficePhone,
		Justification: r.Justification,
	})
	if err != nil {
		return backend.OfficialRequest{}, err
	}
	return requestView(doc), nil
}

func (b *Backend) GetOfficialRequest(ctx context.Context, id string) (backend.OfficialRequest, error) {
	oid, err := parseID(id)
	if err != nil {
		return backend.OfficialRequest{}, err
	}
	r, err := b.requests.GetByID(ctx, oid)
	if err != nil {
		return backend.OfficialRequest{}, mapErr(err, nil)
	}
	return requestView(*r), nil
}

func (b *Backend) PendingOfficialRequest(ctx context.Context, userID string) (backend.OfficialRequest, error) {
	oid, err := parseID(userID)
	if err != nil {
		return backend.OfficialRequest{}, err
	}
	r, err := b.requests.PendingForUser(ctx, oid)
	if err != nil {
		return backend.OfficialRequest{}, mapErr(err, nil)
	}
	return requestView(*r), nil
}

func (b *Backend) ListOfficialRequests(ctx context.Context, f backend.RequestFilter) ([]backend.OfficialRequest, error) {
	qf := query.Filter{}
	if f.Status != "" {
		qf = qf.And("status", f.Status)
	}
	if f.UserID != "" {
		oid, err := parseID(f.UserID)
		if err != nil {
			return []backend.OfficialRequest{}, nil
		}
		qf = qf.And("user_id", oid)
	}
	out, err := b.requests.Find(ctx, paged(qf.Newest(), f.Page))
	if err != nil {
		return nil, err
	}
	return mapSlice(out, requestView), nil
}

func (b *Backend) ReviewOfficialRequest(ctx context.Context, id, status, reviewerID, notes string, at time.Time) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	set := bson.M{"status": status, "reviewed_at": isotime.Format(at), "review_notes": notes}
	if reviewer, err := parseOptID(reviewerID); err == nil && reviewer != nil {
		set["reviewed_by"] = *reviewer
	}
	return mapErr(b.requests.Update(ctx, oid, set), nil)
}

// joinNames converts a page of complaints and refreshes their author,
// assignee and category names. Names come from the cache first, then one
// $in query per kind for the misses.
func (b *Backend) joinNames(ctx context.Context, docs []models.Complaint) ([]backend.Complaint, error) {
	out := mapSlice(docs, complaintView)
	if len(out) == 0 {
		return out, nil
	}

	var userIDs, catIDs []string
	for _, c := range out {
		userIDs = append(userIDs, c.AuthorID)
		if c.AssigneeID != "" {
			userIDs = append(userIDs, c.AssigneeID)
		}
		catIDs = append(catIDs, c.CategoryID)
	}

	users, err := b.lookup(ctx, displaycache.Users, userIDs, func(ids []primitive.ObjectID) (map[string]string, error) {
		found, err := b.users.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		m := make(map[string]string, len(found))
		for _, u := range found {
			m[u.ID.Hex()] = u.Username
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	cats, err := b.lookup(ctx, displaycache.Categories, catIDs, func(ids []primitive.ObjectID) (map[string]string, error) {
		found, err := b.categories.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		m := make(map[string]string, len(found))
		for _, c := range found {
			m[c.ID.Hex()] = c.Name
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	for i := range out {
		c := &out[i]
		if n, ok := users[c.AuthorID]; ok {
			c.AuthorName = n
		}
		if n, ok := users[c.AssigneeID]; ok && c.AssigneeID != "" {
			c.AssigneeName = n
		}
		if n, ok := cats[c.CategoryID]; ok {
			c.CategoryName = n
		}
	}
	return out, nil
}

// lookup resolves ids to names through the cache, loading misses with load
// and remembering what it found.
func (b *Backend) lookup(ctx context.Context, kind string, ids []string,
	load func([]primitive.ObjectID) (map[string]string, error)) (map[string]string, error) {

	found, missing := b.names.Names(ctx, kind, dedupe(ids))
	if len(missing) == 0 {
		return found, nil
	}
	oids := make([]primitive.ObjectID, 0, len(missing))
	for _, id := range missing {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	loaded, err := load(oids)
	if err != nil {
		return nil, err
	}
	b.names.Remember(ctx, kind, loaded)
	for id, n := range loaded {
		found[id] = n
	}
	return found, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ backend.Backend = (*Backend)(nil)
