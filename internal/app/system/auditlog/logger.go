// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Event categories. Each has its own destination setting in Config.
const (
	CategoryAuth      = "auth"
	CategoryComplaint = "complaint"
	CategoryAdmin     = "admin"
)

// Actions recorded in the audit_logs entity.
const (
	ActionLoginSuccess      = "login_success"
	ActionLoginFailed       = "login_failed"
	ActionUserRegistered    = "user_registered"
	ActionUserDeleted       = "user_deleted"
	ActionRoleChanged       = "role_changed"
	ActionComplaintCreated  = "complaint_created"
	ActionStatusChanged     = "complaint_status_changed"
	ActionComplaintAssigned = "complaint_assigned"
	ActionComplaintDeleted  = "complaint_deleted"
	ActionFeedbackSubmitted = "feedback_submitted"
	ActionCategoryCreated   = "category_created"
	ActionCategoryDeleted   = "category_deleted"
	ActionRequestSubmitted  = "official_request_submitted"
	ActionRequestReviewed   = "official_request_reviewed"
)

// Resource types.
const (
	ResourceUser      = "user"
	ResourceComplaint = "complaint"
	ResourceCategory  = "category"
	ResourceRequest   = "official_request"
)

// Destination settings.
const (
	All = "all" // backend + zap
	DB  = "db"  // backend only
	Log = "log" // zap only
	Off = "off"
)

// Config holds audit logging configuration, one destination per category.
// Empty values mean All.
type Config struct {
	Auth      string
	Complaint string
	Admin     string
}

// Event is one audit record before it is written.
type Event struct {
	Category      string
	Action        string
	ActorID       string
	ResourceType  string
	ResourceID    string
	IP            string
	Success       bool
	FailureReason string
	Details       map[string]string
}

// Sink stores audit entries. backend.Backend satisfies it.
type Sink interface {
	AddAudit(ctx context.Context, e backend.AuditEntry) (backend.AuditEntry, error)
}

// Logger writes audit events to the active backend and to zap.
type Logger struct {
	sink   Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. sink may be nil when only zap is wanted.
func New(sink Sink, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{sink: sink, zapLog: zapLog, config: config}
}

// ClientIP extracts the client IP from the request, preferring the first
// X-Forwarded-For hop.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (l *Logger) setting(category string) string {
	var s string
	switch category {
	case CategoryAuth:
		s = l.config.Auth
	case CategoryComplaint:
		s = l.config.Complaint
	case CategoryAdmin:
		s = l.config.Admin
	}
	if s == "" {
		return All
	}
	return s
}

// formatDetails renders details as "k=v; k=v" in key order.
func formatDetails(d map[string]string) string {
	if len(d) == 0 {
		return ""
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + d[k]
	}
	return strings.Join(parts, "; ")
}

func (l *Logger) logToZap(ctx context.Context, event Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("action", event.Action),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.ResourceID != "" {
		fields = append(fields, zap.String(event.ResourceType+"_id", event.ResourceID))
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		fields = append(fields, zap.String("request_id", reqID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the category's setting.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	setting := l.setting(event.Category)
	if setting == Off {
		return
	}
	if setting == All || setting == Log {
		l.logToZap(ctx, event)
	}
	if (setting == All || setting == DB) && l.sink != nil {
		details := event.Details
		if event.FailureReason != "" {
			details = make(map[string]string, len(event.Details)+1)
			for k, v := range event.Details {
				details[k] = v
			}
			details["failure_reason"] = event.FailureReason
		}
		_, err := l.sink.AddAudit(ctx, backend.AuditEntry{
			UserID:       event.ActorID,
			Action:       event.Action,
			ResourceType: event.ResourceType,
			ResourceID:   event.ResourceID,
			Details:      formatDetails(details),
			IPAddress:    event.IP,
		})
		if err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("action", event.Action))
		}
	}
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, ip, userID, email string) {
	l.Log(ctx, Event{
		Category:     CategoryAuth,
		Action:       ActionLoginSuccess,
		ActorID:      userID,
		ResourceType: ResourceUser,
		ResourceID:   userID,
		IP:           ip,
		Success:      true,
		Details:      map[string]string{"email": email},
	})
}

// LoginFailed records a rejected login. userID is empty when the email
// matched no account.
func (l *Logger) LoginFailed(ctx context.Context, ip, userID, email, reason string) {
	l.Log(ctx, Event{
		Category:      CategoryAuth,
		Action:        ActionLoginFailed,
		ActorID:       userID,
		ResourceType:  ResourceUser,
		ResourceID:    userID,
		IP:            ip,
		FailureReason: reason,
		Details:       map[string]string{"email": email},
	})
}

func (l *Logger) UserRegistered(ctx context.Context, ip, userID, role string) {
	l.Log(ctx, Event{
		Category:     CategoryAuth,
		Action:       ActionUserRegistered,
		ActorID:      userID,
		ResourceType: ResourceUser,
		ResourceID:   userID,
		IP:           ip,
		Success:      true,
		Details:      map[string]string{"role": role},
	})
}

// --- Complaint Events ---

func (l *Logger) ComplaintCreated(ctx context.Context, ip, actorID, complaintID, categoryID string) {
	l.Log(ctx, Event{
		Category:     CategoryComplaint,
		Action:       ActionComplaintCreated,
		ActorID:      actorID,
		ResourceType: ResourceComplaint,
		ResourceID:   complaintID,
		IP:           ip,
		Success:      true,
		Details:      map[string]string{"category_id": categoryID},
	})
}

func (l *Logger) StatusChanged(ctx context.Context, ip, actorID, complaintID, from, to string) {
	l.Log(ctx, Event{
		Category:     CategoryComplaint,
		Action:       ActionStatusChanged,
		ActorID:      actorID,
		ResourceType: ResourceComplaint,
		ResourceID:   complaintID,
		IP:           ip,
		Success:      true,
		Details:      map[string]string{"from": from, "to": to},
	})
}

func (l *Logger) ComplaintAssigned(ctx context.Context, ip, actorID, complaintID, assigneeID string) {
	l.Log(ctx, Event{
		Category:     CategoryComplaint,
		Action:       ActionComplaintAssigned,
		ActorID:      actorID,
		ResourceType: ResourceComplaint,
		ResourceID:   complaintID,
		IP:           ip,
		Success:      true,
		Details:      map[string]string{"assignee_id": assigneeID},
	})
}

func (l *Logger) ComplaintDeleted(ctx context.Context, ip, actorID, complaintID string) {
	l.Log(ctx, Event{
		Category:     CategoryComplaint,
		Action:       ActionComplaintDeleted,
		ActorID:      actorID,
		ResourceType: ResourceComplaint,
		ResourceID:   complaintID,
		IP:           ip,
		Success:      true,
	})
}

func (l *Logger) FeedbackSubmitted(ctx context.Context, ip, actorID, complaintID string, rating int) {
	l.Log(ctx, Event{
		Category:     CategoryComplaint,
		Action:       ActionFeedbackSubmitted,
		ActorID:      actorID,
		ResourceType: ResourceComplaint,
		ResourceID:   complaintID,
		IP:           ip,
		Success:      true,
		Details:      map[string]string{"rating": strconv.Itoa(rating)},
	})
}

func (l *Logger) RequestSubmitted(ctx context.Context, ip, actorID, requestID, department string) {
	l.Log(ctx, Event{
		Category:     CategoryComplaint,
		Action:       ActionRequestSubmitted,
		ActorID:      actorID,
		ResourceType: ResourceRequest,
		ResourceID:   requestID,
		IP:           ip,
		Success:      true,
		Details:      map[string]string{"department": department},
	})
}

// --- Admin Events ---

func (l *Logger) UserDeleted(ctx context.Context, ip, actorID, targetUserID string) {
	l.Log(ctx, Event{
		Category:     CategoryAdmin,
		Action:       ActionUserDeleted,
		ActorID:      actorID,
		ResourceType: ResourceUser,
		ResourceID:   targetUserID,
		IP:           ip,
		Success:      true,
	})
}

func (l *Logger) RoleChanged(ctx context.Context, ip, actorID, targetUserID, role string) {
	l.Log(ctx, Event{
		Category:     CategoryAdmin,
		Action:       ActionRoleChanged,
		ActorID:      actorID,
		ResourceType: ResourceUser,
		ResourceID:   targetUserID,
		IP:           ip,
		Success:      true,
		Details:      map[string]string{"role": role},
	})
}

func (l *Logger) CategoryCreated(ctx context.Context, ip, actorID, categoryID, name string) {
	l.Log(ctx, Event{
		Category:     CategoryAdmin,
		Action:       ActionCategoryCreated,
		ActorID:      actorID,
		ResourceType: ResourceCategory,
		ResourceID:   categoryID,
		IP:           ip,
		Success:      true,
		Details:      map[string]string{"name": name},
	})
}

func (l *Logger) CategoryDeleted(ctx context.Context, ip, actorID, categoryID string) {
	l.Log(ctx, Event{
		Category:     CategoryAdmin,
		Action:       ActionCategoryDeleted,
		ActorID:      actorID,
		ResourceType: ResourceCategory,
		ResourceID:   categoryID,
		IP:           ip,
		Success:      true,
	})
}

func (l *Logger) RequestReviewed(ctx context.Context, ip, actorID, requestID, status string) {
	l.Log(ctx, Event{
		Category:     CategoryAdmin,
		Action:       ActionRequestReviewed,
		ActorID:      actorID,
		ResourceType: ResourceRequest,
		ResourceID:   requestID,
		IP:           ip,
		Success:      true,
		Details:      map[string]string{"status": status},
	})
}
