// internal/domain/models/collections.go
package models

// Collection names in the document store.
const (
	CollUsers            = "users"
	CollCategories       = "categories"
	CollComplaints       = "complaints"
	CollComplaintUpdates = "complaint_updates"
	CollFeedback         = "feedback"
	CollComplaintMedia   = "complaint_media"
	CollNotifications    = "notifications"
	CollAuditLogs        = "audit_logs"
	CollOfficialRequests = "official_requests"
)

// Collections lists every collection in dependency order: parents first.
var Collections = []string{
	CollUsers,
	CollCategories,
	CollComplaints,
	CollComplaintMedia,
	CollComplaintUpdates,
	CollFeedback,
	CollAuditLogs,
	CollNotifications,
	CollOfficialRequests,
}
