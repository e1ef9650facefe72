// internal/domain/rules/rules.go
//
// Package rules holds the complaint-tracker business rules shared by both
// storage backends. Everything here is pure: callers load the entities,
// ask the rules what to change, and persist the result.
package rules

import (
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/cityseva/internal/domain/models"
)

var (
	ErrInvalidStatus       = errors.New("invalid complaint status")
	ErrInvalidPriority     = errors.New("invalid complaint priority")
	ErrInvalidRole         = errors.New("invalid role")
	ErrDepartmentRequired  = errors.New("department is required for officials")
	ErrDepartmentForbidden = errors.New("department is only allowed for officials")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrNotResolved         = errors.New("feedback is only accepted for resolved complaints")
	ErrNotAuthor           = errors.New("only the complaint author can leave feedback")
	ErrFeedbackExists      = errors.New("feedback already submitted for this complaint")
	ErrAlreadyReviewed     = errors.New("official request has already been reviewed")
	ErrInvalidMediaKind    = errors.New("invalid media type")
)

// Transition is the outcome of a status change.
type Transition struct {
	Status     string
	ResolvedAt *time.Time
	Changed    bool
}

// ApplyStatus computes the new status and resolution timestamp.
//
// Entering resolved stamps resolvedAt with now; staying resolved keeps the
// original stamp; leaving resolved clears it.
func ApplyStatus(current string, resolvedAt *time.Time, next string, now time.Time) (Transition, error) {
	if !models.IsStatus(next) {
		return Transition{}, ErrInvalidStatus
	}
	t := Transition{Status: next, Changed: current != next}
	switch {
	case next != models.StatusResolved:
		t.ResolvedAt = nil
	case current == models.StatusResolved && resolvedAt != nil:
		t.ResolvedAt = resolvedAt
	default:
		ts := now.UTC()
		t.ResolvedAt = &ts
	}
	return t, nil
}

// ResolutionConsistent reports whether status and resolvedAt agree.
func ResolutionConsistent(status string, resolvedAt *time.Time) bool {
	return (status == models.StatusResolved) == (resolvedAt != nil)
}

// NormalizePriority defaults an empty priority to medium and rejects unknown values.
func NormalizePriority(p string) (string, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return models.PriorityMedium, nil
	}
	if !models.IsPriority(p) {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// CheckRoleDepartment enforces "department iff official".
func CheckRoleDepartment(role string, department *string) error {
	if !models.IsRole(role) {
		return ErrInvalidRole
	}
	has := department != nil && strings.TrimSpace(*department) != ""
	if role == models.RoleOfficial && !has {
		return ErrDepartmentRequired
	}
	if role != models.RoleOfficial && has {
		return ErrDepartmentForbidden
	}
	return nil
}

// FeedbackInput is what LeaveFeedback needs to know about the complaint.
type FeedbackInput struct {
	ComplaintStatus string
	AuthorID        string
	ActorID         string
	Rating          int
	AlreadyExists   bool
}

// CheckFeedback enforces the feedback rules. Order matters: callers surface
// the first violated rule.
func CheckFeedback(in FeedbackInput) error {
	if in.Rating < 1 || in.Rating > 5 {
		return ErrInvalidRating
	}
	if in.AuthorID != in.ActorID {
		return ErrNotAuthor
	}
	if in.ComplaintStatus != models.StatusResolved {
		return ErrNotResolved
	}
	if in.AlreadyExists {
		return ErrFeedbackExists
	}
	return nil
}

// Review is the outcome of reviewing an official request.
type Review struct {
	RequestStatus string
	// PromoteRole and PromoteDepartment are set only on approval.
	PromoteRole       string
	PromoteDepartment string
	NotifyTitle       string
	NotifyMessage     string
}

// ReviewRequest decides what an approval or rejection changes.
func ReviewRequest(currentStatus string, approve bool, department, notes string) (Review, error) {
	if currentStatus != models.RequestPending {
		return Review{}, ErrAlreadyReviewed
	}
	if approve {
		return Review{
			RequestStatus:     models.RequestApproved,
			PromoteRole:       models.RoleOfficial,
			PromoteDepartment: department,
			NotifyTitle:       "Official request approved",
			NotifyMessage:     "Your request to join " + department + " as an official has been approved.",
		}, nil
	}
	msg := "Your request to become an official has been rejected."
	if strings.TrimSpace(notes) != "" {
		msg += " Notes: " + notes
	}
	return Review{
		RequestStatus: models.RequestRejected,
		NotifyTitle:   "Official request rejected",
		NotifyMessage: msg,
	}, nil
}

// StatusNotification builds the message sent to a complaint author.
func StatusNotification(title, status string) (string, string) {
	label := strings.ReplaceAll(status, "_", " ")
	return "Complaint " + label, "Your complaint \"" + title + "\" is now " + label + "."
}

// CanChangeStatus reports whether role may move complaints between statuses.
func CanChangeStatus(role string) bool {
	return role == models.RoleOfficial || role == models.RoleAdmin
}

// CanDeleteComplaint: admins always; authors only while still pending.
func CanDeleteComplaint(actorRole, actorID, authorID, status string) bool {
	if actorRole == models.RoleAdmin {
		return true
	}
	return actorID == authorID && status == models.StatusPending
}
