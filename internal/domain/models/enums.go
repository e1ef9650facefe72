// internal/domain/models/enums.go
package models

// Roles
const (
	RoleCitizen  = "citizen"
	RoleOfficial = "official"
	RoleAdmin    = "admin"
)

// Complaint statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// Complaint priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Media kinds
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Official request statuses
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// Roles lists every valid role.
var Roles = []string{RoleCitizen, RoleOfficial, RoleAdmin}

// Statuses lists every valid complaint status.
var Statuses = []string{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

// Priorities lists every valid complaint priority.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// MediaKinds lists every valid media kind.
var MediaKinds = []string{MediaImage, MediaVideo}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// IsRole reports whether r is a known role.
func IsRole(r string) bool { return contains(Roles, r) }

// IsStatus reports whether s is a known complaint status.
func IsStatus(s string) bool { return contains(Statuses, s) }

// IsPriority reports whether p is a known priority.
func IsPriority(p string) bool { return contains(Priorities, p) }

// IsMediaKind reports whether k is a known media kind.
func IsMediaKind(k string) bool { return contains(MediaKinds, k) }
