// Package featuretest builds the service stack the feature handler tests
// run against: a document backend over a throwaway database.
package featuretest

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/backend/docbackend"
	"github.com/dalemusser/cityseva/internal/app/civic"
	uierrors "github.com/dalemusser/cityseva/internal/app/features/errors"
	"github.com/dalemusser/cityseva/internal/app/system/auditlog"
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/app/system/authutil"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Password is the password of every user created through Env.
const Password = "correct-horse-battery"

// Env is a ready service with an admin account.
type Env struct {
	DB     *mongo.Database
	B      backend.Backend
	Svc    *civic.Service
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
	Admin  auth.Actor
	Ctx    context.Context
	t      *testing.T
}

// New skips the test when MongoDB is unreachable.
func New(t *testing.T) *Env {
	t.Helper()
	authutil.BcryptCost = bcrypt.MinCost

	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)

	log := zap.NewNop()
	b := docbackend.New(db, nil, log)
	e := &Env{
		DB:     db,
		B:      b,
		Svc:    civic.New(b, auditlog.New(b, log, auditlog.Config{}), nil, log),
		ErrLog: uierrors.NewErrorLogger(log),
		Log:    log,
		Ctx:    ctx,
		t:      t,
	}
	e.Admin = e.User("admin", models.RoleAdmin)
	return e
}

// User creates an active account and returns its actor. Officials are
// placed in the "Roads" department.
func (e *Env) User(name, role string) auth.Actor {
	e.t.Helper()
	hash, err := authutil.HashPassword(Password)
	if err != nil {
		e.t.Fatalf("hash password: %v", err)
	}
	u := backend.User{Email: name + "@example.org", Username: name, PasswordHash: hash, Role: role, IsActive: true}
	if role == models.RoleOfficial {
		dept := "Roads"
		u.Department = &dept
	}
	out, err := e.B.CreateUser(e.Ctx, u)
	if err != nil {
		e.t.Fatalf("create user %s: %v", name, err)
	}
	return auth.Actor{ID: out.ID, Role: out.Role}
}

// Civic converts an auth actor for direct service calls.
func Civic(a auth.Actor) civic.Actor {
	return civic.Actor{ID: a.ID, Role: a.Role}
}

// Category creates a category as the admin.
func (e *Env) Category(name string) backend.Category {
	e.t.Helper()
	c, err := e.Svc.CreateCategory(e.Ctx, Civic(e.Admin), backend.Category{Name: name})
	if err != nil {
		e.t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

// Complaint files a complaint as author.
func (e *Env) Complaint(author auth.Actor, cat backend.Category, title string) backend.Complaint {
	e.t.Helper()
	c, err := e.Svc.SubmitComplaint(e.Ctx, Civic(author), civic.ComplaintInput{
		Title: title, Description: title + " needs fixing", CategoryID: cat.ID,
	})
	if err != nil {
		e.t.Fatalf("submit complaint %s: %v", title, err)
	}
	return c
}

// Serve runs req through h with actor a in context (zero Actor means anonymous).
func Serve(h http.Handler, req *http.Request, a auth.Actor) *testutil.ResponseRecorder {
	if a.ID != "" {
		req = testutil.WithActor(req, a)
	}
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
