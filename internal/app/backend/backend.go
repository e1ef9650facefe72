// internal/app/backend/backend.go
//
// Package backend is the storage contract the services and JSON handlers
// are written against. The relational (sqlbackend) and document
// (docbackend) implementations are interchangeable; data_backend selects
// one at startup.
//
// IDs cross this boundary as strings: decimal for sql, ObjectID hex for
// document. A malformed ID is reported as ErrNotFound.
package backend

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("already exists")
	ErrCategoryInUse = errors.New("category is referenced by complaints")
)

// Names of the implementations, as accepted by the data_backend setting.
const (
	SQL      = "sql"
	Document = "document"
)

// Page bounds a list call. A zero Limit means the implementation default.
type Page struct {
	Limit  int
	Offset int
}

// DefaultLimit applies when Page.Limit is zero; MaxLimit caps it.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Bounds returns the effective limit and offset.
func (p Page) Bounds() (int, int) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type UserFilter struct {
	Role string
	Page
}

type ComplaintFilter struct {
	Status     string
	Priority   string
	CategoryID string
	AuthorID   string
	AssigneeID string
	Page
}

type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Page
}

type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	Since        *time.Time
	Until        *time.Time
	Page
}

type RequestFilter struct {
	Status string
	UserID string
	Page
}

// Backend is implemented once per store.
type Backend interface {
	// Name reports SQL or Document.
	Name() string
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context, f UserFilter) ([]User, error)
	SetUserRole(ctx context.Context, id, role string, department *string) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
	// DeleteUser removes the user and everything they own, clearing
	// references from rows they merely touched.
	DeleteUser(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, c Category) (Category, error)
	GetCategory(ctx context.Context, id string) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	// DeleteCategory fails with ErrCategoryInUse while complaints reference it.
	DeleteCategory(ctx context.Context, id string) error

	CreateComplaint(ctx context.Context, c Complaint) (Complaint, error)
	// GetComplaint and ListComplaints fill the category, author and
	// assignee display names.
	GetComplaint(ctx context.Context, id string) (Complaint, error)
	ListComplaints(ctx context.Context, f ComplaintFilter) ([]Complaint, error)
	CountComplaints(ctx context.Context, f ComplaintFilter) (int64, error)
	SetComplaintStatus(ctx context.Context, id, status string, resolvedAt *time.Time) error
	AssignComplaint(ctx context.Context, id, assigneeID string, at time.Time) error
	// DeleteComplaint removes the complaint with its media, updates,
	// feedback and notifications.
	DeleteComplaint(ctx context.Context, id string) error

	AddUpdate(ctx context.Context, u Update) (Update, error)
	ListUpdates(ctx context.Context, complaintID string) ([]Update, error)

	AddMedia(ctx context.Context, m Media) (Media, error)
	ListMedia(ctx context.Context, complaintID string) ([]Media, error)

	// AddFeedback fails with ErrDuplicate when the complaint already has feedback.
	AddFeedback(ctx context.Context, f Feedback) (Feedback, error)
	GetFeedback(ctx context.Context, complaintID string) (Feedback, error)

	AddNotification(ctx context.Context, n Notification) (Notification, error)
	ListNotifications(ctx context.Context, f NotificationFilter) ([]Notification, error)
	// MarkNotificationRead only matches notifications owned by userID.
	MarkNotificationRead(ctx context.Context, id, userID string) error

	AddAudit(ctx context.Context, e AuditEntry) (AuditEntry, error)
	ListAudit(ctx context.Context, f AuditFilter) ([]AuditEntry, error)

	CreateOfficialRequest(ctx context.Context, r OfficialRequest) (OfficialRequest, error)
	GetOfficialRequest(ctx context.Context, id string) (OfficialRequest, error)
	// PendingOfficialRequest returns ErrNotFound when userID has none.
	PendingOfficialRequest(ctx context.Context, userID string) (OfficialRequest, error)
	ListOfficialRequests(ctx context.Context, f RequestFilter) ([]OfficialRequest, error)
	ReviewOfficialRequest(ctx context.Context, id, status, reviewerID, notes string, at time.Time) error
}
