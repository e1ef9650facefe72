// internal/app/civic/civic.go
//
// Package civic implements the complaint-tracker workflows on top of a
// backend.Backend. Every write that users can see is also recorded in the
// audit log, and notifications are published when a publisher is set.
package civic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/system/auditlog"
	"github.com/dalemusser/cityseva/internal/app/system/authutil"
	"github.com/dalemusser/cityseva/internal/app/system/htmlsanitize"
	"github.com/dalemusser/cityseva/internal/app/system/normalize"
	"github.com/dalemusser/cityseva/internal/app/system/notify"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/domain/rules"
	"go.uber.org/zap"
)

var (
	ErrForbidden          = errors.New("not allowed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactive           = errors.New("account is disabled")
	ErrRequestPending     = errors.New("an official request is already pending")
	ErrInvalidAssignee    = errors.New("complaints can only be assigned to officials")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error { return &ValidationError{Field: field, Err: err} }

var errRequired = errors.New("is required")

// Actor is the caller of a workflow.
type Actor struct {
	ID   string
	Role string
	IP   string
}

func (a Actor) staff() bool { return rules.CanChangeStatus(a.Role) }

// Service runs the workflows.
type Service struct {
	b     backend.Backend
	audit *auditlog.Logger
	pub   notify.Publisher
	log   *zap.Logger
	now   func() time.Time
}

// New returns a Service. audit may be nil; pub nil means notify.Nop.
func New(b backend.Backend, audit *auditlog.Logger, pub notify.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{b: b, audit: audit, pub: pub, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Backend exposes the underlying backend for read-only handlers.
func (s *Service) Backend() backend.Backend { return s.b }

// ---- accounts

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register creates an active citizen account.
func (s *Service) Register(ctx context.Context, in RegisterInput, ip string) (backend.User, error) {
	email := normalize.Email(in.Email)
	if !authutil.IsValidEmail(email) {
		return backend.User{}, invalid("email", authutil.ErrInvalidEmail)
	}
	username := normalize.Name(in.Username)
	if username == "" {
		return backend.User{}, invalid("username", errRequired)
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		return backend.User{}, invalid("password", err)
	}
	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		return backend.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.b.CreateUser(ctx, backend.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleCitizen,
		IsActive:     true,
	})
	if err != nil {
		return backend.User{}, err
	}
	s.audit.UserRegistered(ctx, ip, u.ID, u.Role)
	return u, nil
}

// Authenticate checks credentials and stamps last_login.
func (s *Service) Authenticate(ctx context.Context, email, password, ip string) (backend.User, error) {
	u, err := s.b.GetUserByEmail(ctx, email)
	if errors.Is(err, backend.ErrNotFound) {
		s.audit.LoginFailed(ctx, ip, "", email, "user not found")
		return backend.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return backend.User{}, err
	}
	if !authutil.CheckPassword(password, u.PasswordHash) {
		s.audit.LoginFailed(ctx, ip, u.ID, email, "wrong password")
		return backend.User{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		s.audit.LoginFailed(ctx, ip, u.ID, email, "user disabled")
		return backend.User{}, ErrInactive
	}

	at := s.now()
	if err := s.b.RecordLogin(ctx, u.ID, at); err != nil {
		return backend.User{}, err
	}
	u.LastLogin = &at
	s.audit.LoginSuccess(ctx, ip, u.ID, u.Email)
	return u, nil
}

// DeleteUser removes a user and everything they own. Admins only.
func (s *Service) DeleteUser(ctx context.Context, actor Actor, userID string) error {
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	if _, err := s.b.GetUser(ctx, userID); err != nil {
		return err
	}
	if err := s.b.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.audit.UserDeleted(ctx, actor.IP, actor.ID, userID)
	return nil
}

// GetUser lets users read themselves and staff read anyone.
func (s *Service) GetUser(ctx context.Context, actor Actor, id string) (backend.User, error) {
	if !actor.staff() && actor.ID != id {
		return backend.User{}, ErrForbidden
	}
	return s.b.GetUser(ctx, id)
}

// ListUsers is for staff picking assignees and admins managing accounts.
func (s *Service) ListUsers(ctx context.Context, actor Actor, f backend.UserFilter) ([]backend.User, error) {
	if !actor.staff() {
		return nil, ErrForbidden
	}
	if f.Role != "" {
		f.Role = normalize.Role(f.Role)
	}
	return s.b.ListUsers(ctx, f)
}

// ---- categories

func (s *Service) CreateCategory(ctx context.Context, actor Actor, c backend.Category) (backend.Category, error) {
	if actor.Role != models.RoleAdmin {
		return backend.Category{}, ErrForbidden
	}
	c.Name = normalize.Name(c.Name)
	if c.Name == "" {
		return backend.Category{}, invalid("name", errRequired)
	}
	c.Description = htmlsanitize.Text(c.Description)
	out, err := s.b.CreateCategory(ctx, c)
	if err != nil {
		return backend.Category{}, err
	}
	s.audit.CategoryCreated(ctx, actor.IP, actor.ID, out.ID, out.Name)
	return out, nil
}

// DeleteCategory refuses with backend.ErrCategoryInUse while complaints
// reference the category.
func (s *Service) DeleteCategory(ctx context.Context, actor Actor, id string) error {
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	if err := s.b.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.audit.CategoryDeleted(ctx, actor.IP, actor.ID, id)
	return nil
}

// ---- complaints

type ComplaintInput struct {
	Title       string
	Description string
	Location    string
	Latitude    *float64
	Longitude   *float64
	CategoryID  string
	Priority    string
}

// SubmitComplaint files a pending complaint and its first history entry.
func (s *Service) SubmitComplaint(ctx context.Context, actor Actor, in ComplaintInput) (backend.Complaint, error) {
	title := htmlsanitize.Text(strings.TrimSpace(in.Title))
	if title == "" {
		return backend.Complaint{}, invalid("title", errRequired)
	}
	desc := htmlsanitize.Text(strings.TrimSpace(in.Description))
	if desc == "" {
		return backend.Complaint{}, invalid("description", errRequired)
	}
	priority, err := rules.NormalizePriority(in.Priority)
	if err != nil {
		return backend.Complaint{}, invalid("priority", err)
	}
	if _, err := s.b.GetCategory(ctx, in.CategoryID); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return backend.Complaint{}, invalid("category_id", err)
		}
		return backend.Complaint{}, err
	}

	c, err := s.b.CreateComplaint(ctx, backend.Complaint{
		Title:       title,
		Description: desc,
		Location:    htmlsanitize.Text(in.Location),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		CategoryID:  in.CategoryID,
		AuthorID:    actor.ID,
		Status:      models.StatusPending,
		Priority:    priority,
	})
	if err != nil {
		return backend.Complaint{}, err
	}
	if _, err := s.b.AddUpdate(ctx, backend.Update{
		ComplaintID: c.ID,
		UserID:      actor.ID,
		Status:      models.StatusPending,
		Comment:     "Complaint submitted",
	}); err != nil {
		return backend.Complaint{}, fmt.Errorf("record submission: %w", err)
	}
	s.audit.ComplaintCreated(ctx, actor.IP, actor.ID, c.ID, c.CategoryID)
	return c, nil
}

// GetComplaint lets citizens read their own complaints and staff read all.
func (s *Service) GetComplaint(ctx context.Context, actor Actor, id string) (backend.Complaint, error) {
	c, err := s.b.GetComplaint(ctx, id)
	if err != nil {
		return backend.Complaint{}, err
	}
	if !actor.staff() && c.AuthorID != actor.ID {
		return backend.Complaint{}, backend.ErrNotFound
	}
	return c, nil
}

// ListComplaints scopes citizens to their own complaints.
func (s *Service) ListComplaints(ctx context.Context, actor Actor, f backend.ComplaintFilter) ([]backend.Complaint, error) {
	if !actor.staff() {
		f.AuthorID = actor.ID
	}
	return s.b.ListComplaints(ctx, f)
}

// CountComplaints counts what ListComplaints would return without paging.
func (s *Service) CountComplaints(ctx context.Context, actor Actor, f backend.ComplaintFilter) (int64, error) {
	if !actor.staff() {
		f.AuthorID = actor.ID
	}
	return s.b.CountComplaints(ctx, f)
}

// Updates returns a visible complaint's status history, oldest first.
func (s *Service) Updates(ctx context.Context, actor Actor, complaintID string) ([]backend.Update, error) {
	if _, err := s.GetComplaint(ctx, actor, complaintID); err != nil {
		return nil, err
	}
	return s.b.ListUpdates(ctx, complaintID)
}

// Media lists the files attached to a visible complaint.
func (s *Service) Media(ctx context.Context, actor Actor, complaintID string) ([]backend.Media, error) {
	if _, err := s.GetComplaint(ctx, actor, complaintID); err != nil {
		return nil, err
	}
	return s.b.ListMedia(ctx, complaintID)
}

// Feedback returns a visible complaint's feedback, or ErrNotFound.
func (s *Service) Feedback(ctx context.Context, actor Actor, complaintID string) (backend.Feedback, error) {
	if _, err := s.GetComplaint(ctx, actor, complaintID); err != nil {
		return backend.Feedback{}, err
	}
	return s.b.GetFeedback(ctx, complaintID)
}

// ChangeStatus moves a complaint to status, records the history entry,
// notifies the author and audits the change.
func (s *Service) ChangeStatus(ctx context.Context, actor Actor, id, status, comment string) (backend.Complaint, error) {
	if !actor.staff() {
		return backend.Complaint{}, ErrForbidden
	}
	c, err := s.b.GetComplaint(ctx, id)
	if err != nil {
		return backend.Complaint{}, err
	}
	t, err := rules.ApplyStatus(c.Status, c.ResolvedAt, normalize.Status(status), s.now())
	if err != nil {
		return backend.Complaint{}, invalid("status", err)
	}
	if err := s.b.SetComplaintStatus(ctx, id, t.Status, t.ResolvedAt); err != nil {
		return backend.Complaint{}, err
	}
	if _, err := s.b.AddUpdate(ctx, backend.Update{
		ComplaintID: id,
		UserID:      actor.ID,
		Status:      t.Status,
		Comment:     htmlsanitize.Text(comment),
	}); err != nil {
		return backend.Complaint{}, fmt.Errorf("record status change: %w", err)
	}
	if t.Changed {
		title, msg := rules.StatusNotification(c.Title, t.Status)
		s.notifyUser(ctx, c.AuthorID, id, title, msg)
	}
	s.audit.StatusChanged(ctx, actor.IP, actor.ID, id, c.Status, t.Status)
	return s.b.GetComplaint(ctx, id)
}

// Assign sets or clears (assigneeID == "") the official handling a
// complaint. Only officials can be assignees.
func (s *Service) Assign(ctx context.Context, actor Actor, id, assigneeID string) (backend.Complaint, error) {
	if !actor.staff() {
		return backend.Complaint{}, ErrForbidden
	}
	if assigneeID != "" {
		u, err := s.b.GetUser(ctx, assigneeID)
		if errors.Is(err, backend.ErrNotFound) {
			return backend.Complaint{}, invalid("assignee_id", err)
		}
		if err != nil {
			return backend.Complaint{}, err
		}
		if u.Role != models.RoleOfficial {
			return backend.Complaint{}, ErrInvalidAssignee
		}
	}
	if err := s.b.AssignComplaint(ctx, id, assigneeID, s.now()); err != nil {
		return backend.Complaint{}, err
	}
	if assigneeID != "" {
		c, err := s.b.GetComplaint(ctx, id)
		if err != nil {
			return backend.Complaint{}, err
		}
		s.notifyUser(ctx, assigneeID, id, "Complaint assigned", "You have been assigned \""+c.Title+"\".")
	}
	s.audit.ComplaintAssigned(ctx, actor.IP, actor.ID, id, assigneeID)
	return s.b.GetComplaint(ctx, id)
}

// DeleteComplaint: admins always, authors only while the complaint is pending.
func (s *Service) DeleteComplaint(ctx context.Context, actor Actor, id string) error {
	c, err := s.b.GetComplaint(ctx, id)
	if err != nil {
		return err
	}
	if !rules.CanDeleteComplaint(actor.Role, actor.ID, c.AuthorID, c.Status) {
		return ErrForbidden
	}
	if err := s.b.DeleteComplaint(ctx, id); err != nil {
		return err
	}
	s.audit.ComplaintDeleted(ctx, actor.IP, actor.ID, id)
	return nil
}

// AddMedia attaches an already-stored file to a complaint the actor can see.
func (s *Service) AddMedia(ctx context.Context, actor Actor, complaintID, path, kind string) (backend.Media, error) {
	if _, err := s.GetComplaint(ctx, actor, complaintID); err != nil {
		return backend.Media{}, err
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != models.MediaImage && kind != models.MediaVideo {
		return backend.Media{}, invalid("media_type", rules.ErrInvalidMediaKind)
	}
	if strings.TrimSpace(path) == "" {
		return backend.Media{}, invalid("file_path", errRequired)
	}
	return s.b.AddMedia(ctx, backend.Media{ComplaintID: complaintID, FilePath: path, MediaType: kind})
}

// LeaveFeedback rates a resolved complaint. Only its author may, once.
func (s *Service) LeaveFeedback(ctx context.Context, actor Actor, complaintID string, rating int, comment string) (backend.Feedback, error) {
	c, err := s.b.GetComplaint(ctx, complaintID)
	if err != nil {
		return backend.Feedback{}, err
	}
	_, err = s.b.GetFeedback(ctx, complaintID)
	exists := err == nil
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		return backend.Feedback{}, err
	}
	if err := rules.CheckFeedback(rules.FeedbackInput{
		ComplaintStatus: c.Status,
		AuthorID:        c.AuthorID,
		ActorID:         actor.ID,
		Rating:          rating,
		AlreadyExists:   exists,
	}); err != nil {
		return backend.Feedback{}, err
	}
	f, err := s.b.AddFeedback(ctx, backend.Feedback{
		ComplaintID: complaintID,
		UserID:      actor.ID,
		Rating:      rating,
		Comment:     htmlsanitize.Text(comment),
	})
	if errors.Is(err, backend.ErrDuplicate) {
		return backend.Feedback{}, rules.ErrFeedbackExists
	}
	if err != nil {
		return backend.Feedback{}, err
	}
	s.audit.FeedbackSubmitted(ctx, actor.IP, actor.ID, complaintID, rating)
	return f, nil
}

// ---- official requests

type OfficialRequestInput struct {
	Department    string
	Position      string
	EmployeeID    string
	OfficePhone   string
	Justification string
}

// SubmitOfficialRequest asks for promotion to official. A user may have
// one pending request at a time.
func (s *Service) SubmitOfficialRequest(ctx context.Context, actor Actor, in OfficialRequestInput) (backend.OfficialRequest, error) {
	if actor.Role != models.RoleCitizen {
		return backend.OfficialRequest{}, ErrForbidden
	}
	for field, v := range map[string]string{
		"department": in.Department, "position": in.Position,
		"employee_id": in.EmployeeID, "justification": in.Justification,
	} {
		if strings.TrimSpace(v) == "" {
			return backend.OfficialRequest{}, invalid(field, errRequired)
		}
	}
	_, err := s.b.PendingOfficialRequest(ctx, actor.ID)
	if err == nil {
		return backend.OfficialRequest{}, ErrRequestPending
	}
	if !errors.Is(err, backend.ErrNotFound) {
		return backend.OfficialRequest{}, err
	}

	r, err := s.b.CreateOfficialRequest(ctx, backend.OfficialRequest{
		UserID:        actor.ID,
		Department:    normalize.Name(in.Department),
		Position:      normalize.Name(in.Position),
		EmployeeID:    strings.TrimSpace(in.EmployeeID),
		OfficePhone:   strings.TrimSpace(in.OfficePhone),
		Justification: htmlsanitize.Text(in.Justification),
	})
	if err != nil {
		return backend.OfficialRequest{}, err
	}
	s.audit.RequestSubmitted(ctx, actor.IP, actor.ID, r.ID, r.Department)
	return r, nil
}

// ListOfficialRequests shows admins every request and everyone else
// their own.
func (s *Service) ListOfficialRequests(ctx context.Context, actor Actor, f backend.RequestFilter) ([]backend.OfficialRequest, error) {
	if actor.Role != models.RoleAdmin {
		f.UserID = actor.ID
	}
	return s.b.ListOfficialRequests(ctx, f)
}

// ReviewOfficialRequest approves or rejects a pending request. Approval
// promotes the requester to official in the requested department.
func (s *Service) ReviewOfficialRequest(ctx context.Context, actor Actor, id string, approve bool, notes string) (backend.OfficialRequest, error) {
	if actor.Role != models.RoleAdmin {
		return backend.OfficialRequest{}, ErrForbidden
	}
	r, err := s.b.GetOfficialRequest(ctx, id)
	if err != nil {
		return backend.OfficialRequest{}, err
	}
	rv, err := rules.ReviewRequest(r.Status, approve, r.Department, notes)
	if err != nil {
		return backend.OfficialRequest{}, err
	}
	if rv.PromoteRole != "" {
		dept := rv.PromoteDepartment
		if err := s.b.SetUserRole(ctx, r.UserID, rv.PromoteRole, &dept); err != nil {
			return backend.OfficialRequest{}, fmt.Errorf("promote user: %w", err)
		}
		s.audit.RoleChanged(ctx, actor.IP, actor.ID, r.UserID, rv.PromoteRole)
	}
	if err := s.b.ReviewOfficialRequest(ctx, id, rv.RequestStatus, actor.ID, htmlsanitize.Text(notes), s.now()); err != nil {
		return backend.OfficialRequest{}, err
	}
	s.notifyUser(ctx, r.UserID, "", rv.NotifyTitle, rv.NotifyMessage)
	s.audit.RequestReviewed(ctx, actor.IP, actor.ID, id, rv.RequestStatus)
	return s.b.GetOfficialRequest(ctx, id)
}

// AuditLogs lists audit entries, newest first. Admins only.
func (s *Service) AuditLogs(ctx context.Context, actor Actor, f backend.AuditFilter) ([]backend.AuditEntry, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.b.ListAudit(ctx, f)
}

// ---- notifications

// notifyUser stores a notification and publishes it. Failures are logged;
// the workflow that triggered them has already succeeded.
func (s *Service) notifyUser(ctx context.Context, userID, complaintID, title, msg string) {
	n, err := s.b.AddNotification(ctx, backend.Notification{
		UserID:      userID,
		ComplaintID: complaintID,
		Title:       title,
		Message:     msg,
	})
	if err != nil {
		s.log.Error("store notification", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if err := s.pub.Publish(ctx, notify.Event{
		NotificationID: n.ID,
		UserID:         n.UserID,
		ComplaintID:    n.ComplaintID,
		Title:          n.Title,
		Message:        n.Message,
		CreatedAt:      n.CreatedAt,
	}); err != nil {
		s.log.Warn("publish notification", zap.String("notification_id", n.ID), zap.Error(err))
	}
}

func (s *Service) Notifications(ctx context.Context, actor Actor, unreadOnly bool, p backend.Page) ([]backend.Notification, error) {
	return s.b.ListNotifications(ctx, backend.NotificationFilter{UserID: actor.ID, UnreadOnly: unreadOnly, Page: p})
}

func (s *Service) MarkNotificationRead(ctx context.Context, actor Actor, id string) error {
	return s.b.MarkNotificationRead(ctx, id, actor.ID)
}
