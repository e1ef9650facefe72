// internal/app/verify/verify.go
//
// Package verify checks a migrated document store: every expected
// collection is counted, and every entity type gets one create/read/delete
// round trip through the store adapter. Probe documents are always removed.
package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/cityseva/internal/app/store/audit"
	categorystore "github.com/dalemusser/cityseva/internal/app/store/categories"
	complaintstore "github.com/dalemusser/cityseva/internal/app/store/complaints"
	feedbackstore "github.com/dalemusser/cityseva/internal/app/store/feedback"
	mediastore "github.com/dalemusser/cityseva/internal/app/store/media"
	notificationstore "github.com/dalemusser/cityseva/internal/app/store/notifications"
	requeststore "github.com/dalemusser/cityseva/internal/app/store/officialrequests"
	updatestore "github.com/dalemusser/cityseva/internal/app/store/updates"
	userstore "github.com/dalemusser/cityseva/internal/app/store/users"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Status of one check.
type Status string

const (
	Pass  Status = "pass"
	Empty Status = "empty"
	Fail  Status = "fail"
)

// Check is one line of the report.
type Check struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"` // collection | roundtrip
	Status Status `json:"status"`
	Count  int64  `json:"count,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Report lists every check. Passed is false if any check failed; empty
// collections do not fail the report.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Checks     []Check   `json:"checks"`
	Passed     bool      `json:"passed"`
	CleanupErr string    `json:"cleanup_error,omitempty"`
}

func (r *Report) add(c Check) {
	r.Checks = append(r.Checks, c)
	if c.Status == Fail {
		r.Passed = false
	}
}

// Failed returns the failing checks.
func (r *Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if c.Status == Fail {
			out = append(out, c)
		}
	}
	return out
}

// Verifier runs the checks against one database.
type Verifier struct {
	db          *mongo.Database
	log         *zap.Logger
	collections []string
}

// New returns a Verifier over every entity collection.
func New(db *mongo.Database, log *zap.Logger) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{db: db, log: log, collections: models.Collections}
}

// Run executes all checks. The error is non-nil only when the context
// ends before the checks complete; individual failures are in the report.
func (v *Verifier) Run(ctx context.Context) (*Report, error) {
	rep := &Report{RunID: uuid.NewString(), StartedAt: time.Now().UTC(), Passed: true}
	log := v.log.With(zap.String("run_id", rep.RunID))

	for _, coll := range v.collections {
		rep.add(v.countCollection(ctx, coll))
	}

	tr := &tracker{db: v.db}
	defer func() {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Medium())
		defer cancel()
		if err := tr.cleanup(cctx); err != nil {
			rep.CleanupErr = err.Error()
			log.Error("verification cleanup incomplete", zap.Error(err))
		}
	}()

	for _, rt := range v.roundTrips(rep.RunID, tr) {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.add(runRoundTrip(ctx, rt))
	}

	rep.FinishedAt = time.Now().UTC()
	for _, c := range rep.Checks {
		fields := []zap.Field{zap.String("check", c.Name), zap.String("kind", c.Kind), zap.String("status", string(c.Status))}
		if c.Status == Fail {
			log.Warn("verification check failed", append(fields, zap.String("detail", c.Detail))...)
			continue
		}
		log.Debug("verification check", fields...)
	}
	log.Info("verification finished", zap.Bool("passed", rep.Passed), zap.Int("checks", len(rep.Checks)))
	return rep, ctx.Err()
}

func (v *Verifier) countCollection(ctx context.Context, coll string) Check {
	c := Check{Name: coll, Kind: "collection"}
	n, err := v.db.Collection(coll).CountDocuments(ctx, bson.M{})
	switch {
	case err != nil:
		c.Status = Fail
		c.Detail = err.Error()
	case n == 0:
		c.Status = Empty
	default:
		c.Status = Pass
		c.Count = n
	}
	return c
}

// tracker remembers every probe document so cleanup can remove it.
type tracker struct {
	db    *mongo.Database
	items []probe
}

type probe struct {
	coll string
	id   primitive.ObjectID
}

func (t *tracker) track(coll string, id primitive.ObjectID) {
	t.items = append(t.items, probe{coll: coll, id: id})
}

// cleanup deletes probes children first. Deleting a probe that the round
// trip already removed is a no-op.
func (t *tracker) cleanup(ctx context.Context) error {
	var errs []error
	for i := len(t.items) - 1; i >= 0; i-- {
		p := t.items[i]
		if _, err := t.db.Collection(p.coll).DeleteOne(ctx, bson.M{"_id": p.id}); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", p.coll, p.id.Hex(), err))
		}
	}
	t.items = nil
	return errors.Join(errs...)
}

// roundTrip is one entity's create/read/delete through its store.
type roundTrip struct {
	name   string
	create func(ctx context.Context) (primitive.ObjectID, error)
	read   func(ctx context.Context, id primitive.ObjectID) error
	del    func(ctx context.Context, id primitive.ObjectID) (int64, error)
}

func runRoundTrip(ctx context.Context, rt roundTrip) Check {
	c := Check{Name: rt.name, Kind: "roundtrip", Status: Fail}
	id, err := rt.create(ctx)
	if err != nil {
		c.Detail = "create: " + err.Error()
		return c
	}
	if err := rt.read(ctx, id); err != nil {
		c.Detail = "read: " + err.Error()
		return c
	}
	n, err := rt.del(ctx, id)
	if err != nil {
		c.Detail = "delete: " + err.Error()
		return c
	}
	if n != 1 {
		c.Detail = fmt.Sprintf("delete removed %d documents", n)
		return c
	}
	c.Status = Pass
	return c
}

// trip builds a round trip whose created document is tracked for cleanup.
func trip[T any](name string, tr *tracker,
	create func(ctx context.Context) (primitive.ObjectID, error),
	get func(ctx context.Context, id primitive.ObjectID) (*T, error),
	del func(ctx context.Context, id primitive.ObjectID) (int64, error)) roundTrip {
	return roundTrip{
		name: name,
		create: func(ctx context.Context) (primitive.ObjectID, error) {
			id, err := create(ctx)
			if err == nil {
				tr.track(name, id)
			}
			return id, err
		},
		read: func(ctx context.Context, id primitive.ObjectID) error {
			_, err := get(ctx, id)
			return err
		},
		del: del,
	}
}

// roundTrips builds one round trip per entity. Stores do not check that
// references resolve, so dependents point at fresh ObjectIDs instead of
// real parents.
func (v *Verifier) roundTrips(runID string, tr *tracker) []roundTrip {
	users := userstore.New(v.db)
	cats := categorystore.New(v.db)
	complaints := complaintstore.New(v.db)
	updates := updatestore.New(v.db)
	media := mediastore.New(v.db)
	feedback := feedbackstore.New(v.db)
	notes := notificationstore.New(v.db)
	auditLogs := audit.New(v.db)
	requests := requeststore.New(v.db)

	marker := "verify-" + runID
	userID, complaintID := primitive.NewObjectID(), primitive.NewObjectID()

	return []roundTrip{
		trip(models.CollUsers, tr, func(ctx context.Context) (primitive.ObjectID, error) {
			u, err := users.Create(ctx, models.User{Email: marker + "@verify.invalid", Username: marker, Role: models.RoleCitizen})
			return u.ID, err
		}, users.GetByID, users.Delete),

		trip(models.CollCategories, tr, func(ctx context.Context) (primitive.ObjectID, error) {
			c, err := cats.Create(ctx, models.Category{Name: marker})
			return c.ID, err
		}, cats.GetByID, cats.Delete),

		trip(models.CollComplaints, tr, func(ctx context.Context) (primitive.ObjectID, error) {
			c, err := complaints.Create(ctx, models.Complaint{
				Title: marker, Description: marker, CategoryID: primitive.NewObjectID(), UserID: userID,
			})
			return c.ID, err
		}, complaints.GetByID, complaints.Delete),

		trip(models.CollComplaintMedia, tr, func(ctx context.Context) (primitive.ObjectID, error) {
			m, err := media.Create(ctx, models.ComplaintMedia{ComplaintID: complaintID, FilePath: marker, MediaType: models.MediaImage})
			return m.ID, err
		}, media.GetByID, media.Delete),

		trip(models.CollComplaintUpdates, tr, func(ctx context.Context) (primitive.ObjectID, error) {
			u, err := updates.Create(ctx, models.ComplaintUpdate{ComplaintID: complaintID, UserID: userID, Status: models.StatusPending, Comment: marker})
			return u.ID, err
		}, updates.GetByID, updates.Delete),

		trip(models.CollFeedback, tr, func(ctx context.Context) (primitive.ObjectID, error) {
			f, err := feedback.Create(ctx, models.Feedback{ComplaintID: complaintID, UserID: userID, Rating: 5, Comment: marker})
			return f.ID, err
		}, feedback.GetByID, feedback.Delete),

		trip(models.CollAuditLogs, tr, func(ctx context.Context) (primitive.ObjectID, error) {
			a, err := auditLogs.Log(ctx, models.AuditLog{UserID: &userID, Action: "verify_probe", ResourceType: "verify", ResourceID: runID})
			return a.ID, err
		}, auditLogs.GetByID, auditLogs.Delete),

		trip(models.CollNotifications, tr, func(ctx context.Context) (primitive.ObjectID, error) {
			n, err := notes.Create(ctx, models.Notification{UserID: userID, ComplaintID: &complaintID, Title: marker, Message: marker})
			return n.ID, err
		}, notes.GetByID, notes.Delete),

		trip(models.CollOfficialRequests, tr, func(ctx context.Context) (primitive.ObjectID, error) {
			r, err := requests.Create(ctx, models.OfficialRequest{
				UserID: userID, Department: marker, Position: marker, EmployeeID: marker, Justification: marker,
			})
			return r.ID, err
		}, requests.GetByID, requests.Delete),
	}
}
