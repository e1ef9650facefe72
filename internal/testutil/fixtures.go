// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/cityseva/internal/app/system/isotime"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test documents directly, bypassing the stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert into %s: %v", coll, err)
	}
}

// CreateUser inserts an active user with the given username and role.
// Officials get a "Public Works" department.
func (f *Fixtures) CreateUser(ctx context.Context, username, role string) models.User {
	f.t.Helper()
	u := models.User{
		ID:         primitive.NewObjectID(),
		Email:      username + "@example.test",
		Username:   username,
		UsernameCI: text.Fold(username),
		Role:       role,
		IsActive:   true,
		CreatedAt:  isotime.Now(),
	}
	if role == models.RoleOfficial {
		dept := "Public Works"
		u.Department = &dept
	}
	f.insert(ctx, models.CollUsers, u)
	return u
}

// CreateCategory inserts a category.
func (f *Fixtures) CreateCategory(ctx context.Context, name string) models.Category {
	f.t.Helper()
	c := models.Category{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Department: "Public Works",
		CreatedAt:  isotime.Now(),
	}
	f.insert(ctx, models.CollCategories, c)
	return c
}

// CreateComplaint inserts a complaint by author in category with the given status.
func (f *Fixtures) CreateComplaint(ctx context.Context, author models.User, cat models.Category, title, status string) models.Complaint {
	f.t.Helper()
	now := isotime.Now()
	c := models.Complaint{
		ID:           primitive.NewObjectID(),
		Title:        title,
		Description:  title + " description",
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		UserID:       author.ID,
		AuthorName:   author.Username,
		Status:       status,
		Priority:     models.PriorityMedium,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if status == models.StatusResolved {
		c.ResolvedAt = &now
	}
	f.insert(ctx, models.CollComplaints, c)
	return c
}

// CreateUpdate inserts a status-history entry.
func (f *Fixtures) CreateUpdate(ctx context.Context, complaintID, userID primitive.ObjectID, status string) models.ComplaintUpdate {
	f.t.Helper()
	u := models.ComplaintUpdate{
		ID:          primitive.NewObjectID(),
		ComplaintID: complaintID,
		UserID:      userID,
		Status:      status,
		CreatedAt:   isotime.Now(),
	}
	f.insert(ctx, models.CollComplaintUpdates, u)
	return u
}

// CreateMedia inserts a media record.
func (f *Fixtures) CreateMedia(ctx context.Context, complaintID primitive.ObjectID, path string) models.ComplaintMedia {
	f.t.Helper()
	m := models.ComplaintMedia{
		ID:          primitive.NewObjectID(),
		ComplaintID: complaintID,
		FilePath:    path,
		MediaType:   models.MediaImage,
		CreatedAt:   isotime.Now(),
	}
	f.insert(ctx, models.CollComplaintMedia, m)
	return m
}

// CreateFeedback inserts feedback.
func (f *Fixtures) CreateFeedback(ctx context.Context, complaintID, userID primitive.ObjectID, rating int) models.Feedback {
	f.t.Helper()
	fb := models.Feedback{
		ID:          primitive.NewObjectID(),
		ComplaintID: complaintID,
		UserID:      userID,
		Rating:      rating,
		CreatedAt:   isotime.Now(),
	}
	f.insert(ctx, models.CollFeedback, fb)
	return fb
}

// CreateNotification inserts a notification, optionally tied to a complaint.
func (f *Fixtures) CreateNotification(ctx context.Context, userID primitive.ObjectID, complaintID *primitive.ObjectID) models.Notification {
	f.t.Helper()
	n := models.Notification{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		ComplaintID: complaintID,
		Title:       "Update",
		Message:     "Something happened",
		CreatedAt:   isotime.Now(),
	}
	f.insert(ctx, models.CollNotifications, n)
	return n
}

// CreateOfficialRequest inserts an official request, optionally reviewed.
func (f *Fixtures) CreateOfficialRequest(ctx context.Context, userID primitive.ObjectID, reviewer *primitive.ObjectID, status string) models.OfficialRequest {
	f.t.Helper()
	r := models.OfficialRequest{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		Department:    "Sanitation",
		Position:      "Inspector",
		EmployeeID:    "EMP-1",
		Justification: "I work there",
		Status:        status,
		ReviewedBy:    reviewer,
		CreatedAt:     isotime.Now(),
	}
	f.insert(ctx, models.CollOfficialRequests, r)
	return r
}

// CreateAuditLog inserts an audit entry attributed to userID.
func (f *Fixtures) CreateAuditLog(ctx context.Context, userID primitive.ObjectID, action string) models.AuditLog {
	f.t.Helper()
	a := models.AuditLog{
		ID:           primitive.NewObjectID(),
		UserID:       &userID,
		Action:       action,
		ResourceType: "complaint",
		CreatedAt:    isotime.Now(),
	}
	f.insert(ctx, models.CollAuditLogs, a)
	return a
}
