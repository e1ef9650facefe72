// internal/app/backend/backendtest/backendtest.go
//
// Package backendtest holds the behaviour every backend.Backend must share.
// Each backend's tests call Run with a factory that returns an empty backend.
package backendtest

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a backend over empty storage.
type Factory func(t *testing.T) backend.Backend

// Run executes the shared suite.
func Run(t *testing.T, newBackend Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, b backend.Backend)
	}{
		{"users", testUsers},
		{"malformed ids read as not found", testMalformedIDs},
		{"complaint lifecycle", testComplaintLifecycle},
		{"complaint filters", testComplaintFilters},
		{"category in use", testCategoryInUse},
		{"feedback once per complaint", testFeedbackOnce},
		{"notifications", testNotifications},
		{"audit", testAudit},
		{"official requests", testOfficialRequests},
		{"delete complaint cascades", testDeleteComplaint},
		{"delete user cascades", testDeleteUser},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newBackend(t))
		})
	}
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return c
}

func strPtr(s string) *string { return &s }

func mkUser(t *testing.T, b backend.Backend, name, role string) backend.User {
	t.Helper()
	u := backend.User{
		Email:        name + "@example.org",
		Username:     name,
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	if role == models.RoleOfficial {
		u.Department = strPtr("Roads")
	}
	out, err := b.CreateUser(ctx(t), u)
	require.NoError(t, err)
	return out
}

func mkCategory(t *testing.T, b backend.Backend, name string) backend.Category {
	t.Helper()
	out, err := b.CreateCategory(ctx(t), backend.Category{Name: name, Department: "Roads"})
	require.NoError(t, err)
	return out
}

func mkComplaint(t *testing.T, b backend.Backend, title string, cat backend.Category, author backend.User) backend.Complaint {
	t.Helper()
	out, err := b.CreateComplaint(ctx(t), backend.Complaint{
		Title:       title,
		Description: "details",
		CategoryID:  cat.ID,
		AuthorID:    author.ID,
		Priority:    models.PriorityHigh,
	})
	require.NoError(t, err)
	return out
}

func testUsers(t *testing.T, b backend.Backend) {
	c := ctx(t)
	alice := mkUser(t, b, "alice", models.RoleCitizen)
	require.NotEmpty(t, alice.ID)

	_, err := b.CreateUser(c, backend.User{Email: "ALICE@example.org", Username: "alice2", Role: models.RoleCitizen})
	assert.ErrorIs(t, err, backend.ErrDuplicate)

	got, err := b.GetUserByEmail(c, "Alice@Example.org")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got, err = b.GetUserByUsername(c, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = b.GetUserByEmail(c, "nobody@example.org")
	assert.ErrorIs(t, err, backend.ErrNotFound)

	require.NoError(t, b.SetUserRole(c, alice.ID, models.RoleOfficial, strPtr("Water")))
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, b.RecordLogin(c, alice.ID, at))

	got, err = b.GetUser(c, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOfficial, got.Role)
	require.NotNil(t, got.Department)
	assert.Equal(t, "Water", *got.Department)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(*got.LastLogin))

	mkUser(t, b, "bob", models.RoleCitizen)
	officials, err := b.ListUsers(c, backend.UserFilter{Role: models.RoleOfficial})
	require.NoError(t, err)
	require.Len(t, officials, 1)
	assert.Equal(t, alice.ID, officials[0].ID)
}

func testMalformedIDs(t *testing.T, b backend.Backend) {
	c := ctx(t)
	_, err := b.GetUser(c, "not-an-id")
	assert.ErrorIs(t, err, backend.ErrNotFound)
	_, err = b.GetComplaint(c, "not-an-id")
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.ErrorIs(t, b.SetComplaintStatus(c, "not-an-id", models.StatusRejected, nil), backend.ErrNotFound)

	list, err := b.ListComplaints(c, backend.ComplaintFilter{AuthorID: "not-an-id"})
	require.NoError(t, err)
	assert.Empty(t, list)
	updates, err := b.ListUpdates(c, "not-an-id")
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func testComplaintLifecycle(t *testing.T, b backend.Backend) {
	c := ctx(t)
	author := mkUser(t, b, "carol", models.RoleCitizen)
	official := mkUser(t, b, "olga", models.RoleOfficial)
	cat := mkCategory(t, b, "Potholes")

	cp := mkComplaint(t, b, "Hole on Main St", cat, author)
	assert.Equal(t, models.StatusPending, cp.Status)
	assert.Equal(t, models.PriorityHigh, cp.Priority)
	assert.Equal(t, "Potholes", cp.CategoryName)
	assert.Equal(t, "carol", cp.AuthorName)
	assert.Nil(t, cp.ResolvedAt)

	at := time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, b.AssignComplaint(c, cp.ID, official.ID, at))
	got, err := b.GetComplaint(c, cp.ID)
	require.NoError(t, err)
	assert.Equal(t, official.ID, got.AssigneeID)
	assert.Equal(t, "olga", got.AssigneeName)
	require.NotNil(t, got.AssignedAt)
	assert.True(t, at.Equal(*got.AssignedAt))

	resolved := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	require.NoError(t, b.SetComplaintStatus(c, cp.ID, models.StatusResolved, &resolved))
	got, err = b.GetComplaint(c, cp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)
	require.NotNil(t, got.ResolvedAt)
	assert.True(t, resolved.Equal(*got.ResolvedAt))

	require.NoError(t, b.SetComplaintStatus(c, cp.ID, models.StatusInProgress, nil))
	got, err = b.GetComplaint(c, cp.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ResolvedAt, "leaving resolved clears resolved_at")

	require.NoError(t, b.AssignComplaint(c, cp.ID, "", at))
	got, err = b.GetComplaint(c, cp.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AssigneeID)
	assert.Nil(t, got.AssignedAt)

	u, err := b.AddUpdate(c, backend.Update{ComplaintID: cp.ID, UserID: official.ID, Status: models.StatusInProgress, Comment: "crew sent"})
	require.NoError(t, err)
	updates, err := b.ListUpdates(c, cp.ID)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, u.ID, updates[0].ID)
	assert.Equal(t, "crew sent", updates[0].Comment)

	_, err = b.AddMedia(c, backend.Media{ComplaintID: cp.ID, FilePath: "uploads/a.jpg", MediaType: "image"})
	require.NoError(t, err)
	media, err := b.ListMedia(c, cp.ID)
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, "uploads/a.jpg", media[0].FilePath)
}

func testComplaintFilters(t *testing.T, b backend.Backend) {
	c := ctx(t)
	a := mkUser(t, b, "dave", models.RoleCitizen)
	z := mkUser(t, b, "zoe", models.RoleCitizen)
	roads := mkCategory(t, b, "Roads")
	water := mkCategory(t, b, "Water")

	first := mkComplaint(t, b, "one", roads, a)
	mkComplaint(t, b, "two", water, a)
	mkComplaint(t, b, "three", roads, z)
	require.NoError(t, b.SetComplaintStatus(c, first.ID, models.StatusRejected, nil))

	n, err := b.CountComplaints(c, backend.ComplaintFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = b.CountComplaints(c, backend.ComplaintFilter{CategoryID: roads.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	mine, err := b.ListComplaints(c, backend.ComplaintFilter{AuthorID: a.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "two", mine[0].Title, "newest first")

	rejected, err := b.ListComplaints(c, backend.ComplaintFilter{Status: models.StatusRejected})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, first.ID, rejected[0].ID)

	paged, err := b.ListComplaints(c, backend.ComplaintFilter{Page: backend.Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "two", paged[0].Title)
}

func testCategoryInUse(t *testing.T, b backend.Backend) {
	c := ctx(t)
	u := mkUser(t, b, "erin", models.RoleCitizen)
	cat := mkCategory(t, b, "Lights")

	_, err := b.CreateCategory(c, backend.Category{Name: "lights"})
	assert.ErrorIs(t, err, backend.ErrDuplicate)

	cp := mkComplaint(t, b, "dark street", cat, u)
	assert.ErrorIs(t, b.DeleteCategory(c, cat.ID), backend.ErrCategoryInUse)

	require.NoError(t, b.DeleteComplaint(c, cp.ID))
	require.NoError(t, b.DeleteCategory(c, cat.ID))
	_, err = b.GetCategory(c, cat.ID)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func testFeedbackOnce(t *testing.T, b backend.Backend) {
	c := ctx(t)
	u := mkUser(t, b, "fay", models.RoleCitizen)
	cp := mkComplaint(t, b, "leak", mkCategory(t, b, "Water"), u)

	_, err := b.GetFeedback(c, cp.ID)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	_, err = b.AddFeedback(c, backend.Feedback{ComplaintID: cp.ID, UserID: u.ID, Rating: 4, Comment: "quick"})
	require.NoError(t, err)
	_, err = b.AddFeedback(c, backend.Feedback{ComplaintID: cp.ID, UserID: u.ID, Rating: 2})
	assert.ErrorIs(t, err, backend.ErrDuplicate)

	f, err := b.GetFeedback(c, cp.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, f.Rating)
}

func testNotifications(t *testing.T, b backend.Backend) {
	c := ctx(t)
	u := mkUser(t, b, "gus", models.RoleCitizen)
	other := mkUser(t, b, "hal", models.RoleCitizen)
	cp := mkComplaint(t, b, "noise", mkCategory(t, b, "Noise"), u)

	n1, err := b.AddNotification(c, backend.Notification{UserID: u.ID, ComplaintID: cp.ID, Title: "a", Message: "m"})
	require.NoError(t, err)
	_, err = b.AddNotification(c, backend.Notification{UserID: u.ID, Title: "b", Message: "m"})
	require.NoError(t, err)

	assert.ErrorIs(t, b.MarkNotificationRead(c, n1.ID, other.ID), backend.ErrNotFound)
	require.NoError(t, b.MarkNotificationRead(c, n1.ID, u.ID))

	all, err := b.ListNotifications(c, backend.NotificationFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unread, err := b.ListNotifications(c, backend.NotificationFilter{UserID: u.ID, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "b", unread[0].Title)
	assert.Empty(t, unread[0].ComplaintID)
}

func testAudit(t *testing.T, b backend.Backend) {
	c := ctx(t)
	u := mkUser(t, b, "ida", models.RoleAdmin)

	_, err := b.AddAudit(c, backend.AuditEntry{UserID: u.ID, Action: "login_success", ResourceType: "user", ResourceID: u.ID})
	require.NoError(t, err)
	_, err = b.AddAudit(c, backend.AuditEntry{Action: "login_failed", ResourceType: "user", Details: "unknown email"})
	require.NoError(t, err)

	mine, err := b.ListAudit(c, backend.AuditFilter{UserID: u.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "login_success", mine[0].Action)

	failed, err := b.ListAudit(c, backend.AuditFilter{Action: "login_failed"})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Empty(t, failed[0].UserID)

	future := time.Now().Add(time.Hour)
	none, err := b.ListAudit(c, backend.AuditFilter{Since: &future})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testOfficialRequests(t *testing.T, b backend.Backend) {
	c := ctx(t)
	u := mkUser(t, b, "jan", models.RoleCitizen)
	admin := mkUser(t, b, "kim", models.RoleAdmin)

	_, err := b.PendingOfficialRequest(c, u.ID)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	r, err := b.CreateOfficialRequest(c, backend.OfficialRequest{
		UserID: u.ID, Department: "Parks", Position: "Inspector", EmployeeID: "E-1", Justification: "staff",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, r.Status)

	pending, err := b.PendingOfficialRequest(c, u.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, pending.ID)

	at := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, b.ReviewOfficialRequest(c, r.ID, models.RequestApproved, admin.ID, "ok", at))

	got, err := b.GetOfficialRequest(c, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, got.Status)
	assert.Equal(t, admin.ID, got.ReviewedBy)
	assert.Equal(t, "ok", got.ReviewNotes)
	require.NotNil(t, got.ReviewedAt)
	assert.True(t, at.Equal(*got.ReviewedAt))

	_, err = b.PendingOfficialRequest(c, u.ID)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	approved, err := b.ListOfficialRequests(c, backend.RequestFilter{Status: models.RequestApproved})
	require.NoError(t, err)
	assert.Len(t, approved, 1)
}

func testDeleteComplaint(t *testing.T, b backend.Backend) {
	c := ctx(t)
	u := mkUser(t, b, "lee", models.RoleCitizen)
	cp := mkComplaint(t, b, "graffiti", mkCategory(t, b, "Vandalism"), u)
	_, err := b.AddUpdate(c, backend.Update{ComplaintID: cp.ID, UserID: u.ID, Status: models.StatusPending})
	require.NoError(t, err)
	_, err = b.AddMedia(c, backend.Media{ComplaintID: cp.ID, FilePath: "x.png", MediaType: "image"})
	require.NoError(t, err)
	_, err = b.AddNotification(c, backend.Notification{UserID: u.ID, ComplaintID: cp.ID, Title: "t", Message: "m"})
	require.NoError(t, err)

	require.NoError(t, b.DeleteComplaint(c, cp.ID))

	_, err = b.GetComplaint(c, cp.ID)
	assert.ErrorIs(t, err, backend.ErrNotFound)
	updates, err := b.ListUpdates(c, cp.ID)
	require.NoError(t, err)
	assert.Empty(t, updates)
	media, err := b.ListMedia(c, cp.ID)
	require.NoError(t, err)
	assert.Empty(t, media)
	notes, err := b.ListNotifications(c, backend.NotificationFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func testDeleteUser(t *testing.T, b backend.Backend) {
	c := ctx(t)
	citizen := mkUser(t, b, "max", models.RoleCitizen)
	official := mkUser(t, b, "ned", models.RoleOfficial)
	cat := mkCategory(t, b, "Trash")

	own := mkComplaint(t, b, "bins", cat, citizen)
	other := mkComplaint(t, b, "street", cat, official)
	require.NoError(t, b.AssignComplaint(c, other.ID, citizen.ID, time.Now()))
	_, err := b.AddAudit(c, backend.AuditEntry{UserID: citizen.ID, Action: "complaint_created", ResourceType: "complaint", ResourceID: own.ID})
	require.NoError(t, err)

	require.NoError(t, b.DeleteUser(c, citizen.ID))

	_, err = b.GetUser(c, citizen.ID)
	assert.ErrorIs(t, err, backend.ErrNotFound)
	_, err = b.GetComplaint(c, own.ID)
	assert.ErrorIs(t, err, backend.ErrNotFound, "owned complaints go with the user")

	kept, err := b.GetComplaint(c, other.ID)
	require.NoError(t, err)
	assert.Empty(t, kept.AssigneeID, "assignment to a deleted user is cleared")

	entries, err := b.ListAudit(c, backend.AuditFilter{Action: "complaint_created"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].UserID, "audit rows survive without an actor")
}
