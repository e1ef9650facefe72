// internal/app/store/importer/importer.go
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/cityseva/internal/app/migration"
	"github.com/dalemusser/cityseva/internal/app/store/audit"
	categorystore "github.com/dalemusser/cityseva/internal/app/store/categories"
	complaintstore "github.com/dalemusser/cityseva/internal/app/store/complaints"
	feedbackstore "github.com/dalemusser/cityseva/internal/app/store/feedback"
	mediastore "github.com/dalemusser/cityseva/internal/app/store/media"
	notificationstore "github.com/dalemusser/cityseva/internal/app/store/notifications"
	requeststore "github.com/dalemusser/cityseva/internal/app/store/officialrequests"
	"github.com/dalemusser/cityseva/internal/app/store/query"
	updatestore "github.com/dalemusser/cityseva/internal/app/store/updates"
	userstore "github.com/dalemusser/cityseva/internal/app/store/users"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type lookupFunc func(context.Context, uint) (primitive.ObjectID, error)

type kindOps struct {
	byLegacy  lookupFunc
	byNatural func(context.Context, string) (primitive.ObjectID, error)
	insert    func(context.Context, any) (primitive.ObjectID, error)
	dup       error
}

// Target writes migrated documents through the collection stores.
type Target struct {
	db  *mongo.Database
	ops map[migration.Kind]kindOps
}

// New builds a migration target over db.
func New(db *mongo.Database) *Target {
	users := userstore.New(db)
	cats := categorystore.New(db)
	complaints := complaintstore.New(db)
	media := mediastore.New(db)
	updates := updatestore.New(db)
	feedback := feedbackstore.New(db)
	logs := audit.New(db)
	notes := notificationstore.New(db)
	requests := requeststore.New(db)

	return &Target{db: db, ops: map[migration.Kind]kindOps{
		migration.KindUsers: {
			byLegacy:  byLegacy(users.GetByLegacyID, func(u models.User) primitive.ObjectID { return u.ID }),
			byNatural: byKey(users.GetByEmail, func(u models.User) primitive.ObjectID { return u.ID }),
			insert:    insert(users.Import),
			dup:       userstore.ErrDuplicate,
		},
		migration.KindCategories: {
			byLegacy:  byLegacy(cats.GetByLegacyID, func(c models.Category) primitive.ObjectID { return c.ID }),
			byNatural: byKey(cats.GetByName, func(c models.Category) primitive.ObjectID { return c.ID }),
			insert:    insert(cats.Import),
			dup:       categorystore.ErrDuplicate,
		},
		migration.KindComplaints: {
			byLegacy: byLegacy(complaints.GetByLegacyID, func(c models.Complaint) primitive.ObjectID { return c.ID }),
			insert:   insert(complaints.Import),
			dup:      complaintstore.ErrDuplicate,
		},
		migration.KindMedia: {
			byLegacy: byLegacy(media.GetByLegacyID, func(m models.ComplaintMedia) primitive.ObjectID { return m.ID }),
			insert:   insert(media.Import),
			dup:      mediastore.ErrDuplicate,
		},
		migration.KindUpdates: {
			byLegacy: byLegacy(updates.GetByLegacyID, func(u models.ComplaintUpdate) primitive.ObjectID { return u.ID }),
			insert:   insert(updates.Import),
			dup:      updatestore.ErrDuplicate,
		},
		migration.KindFeedback: {
			byLegacy: byLegacy(feedback.GetByLegacyID, func(f models.Feedback) primitive.ObjectID { return f.ID }),
			insert:   insert(feedback.Import),
			dup:      feedbackstore.ErrDuplicate,
		},
		migration.KindAuditLogs: {
			byLegacy: byLegacy(logs.GetByLegacyID, func(a models.AuditLog) primitive.ObjectID { return a.ID }),
			insert:   insert(logs.Import),
			dup:      audit.ErrDuplicate,
		},
		migration.KindNotifications: {
			byLegacy: byLegacy(notes.GetByLegacyID, func(n models.Notification) primitive.ObjectID { return n.ID }),
			insert:   insert(notes.Import),
			dup:      notificationstore.ErrDuplicate,
		},
		migration.KindOfficialRequests: {
			byLegacy: byLegacy(requests.GetByLegacyID, func(r models.OfficialRequest) primitive.ObjectID { return r.ID }),
			insert:   insert(requests.Import),
			dup:      requeststore.ErrDuplicate,
		},
	}}
}

// Ping checks the primary is reachable.
func (t *Target) Ping(ctx context.Context) error {
	return t.db.Client().Ping(ctx, readpref.Primary())
}

// Existing finds a document by legacy id, then by natural key.
func (t *Target) Existing(ctx context.Context, kind migration.Kind, legacyID uint, naturalKey string) (primitive.ObjectID, bool, error) {
	ops, ok := t.ops[kind]
	if !ok {
		return primitive.NilObjectID, false, fmt.Errorf("importer: unknown kind %q", kind)
	}
	id, err := ops.byLegacy(ctx, legacyID)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, query.ErrNotFound) {
		return primitive.NilObjectID, false, transient(err)
	}
	if ops.byNatural == nil || naturalKey == "" {
		return primitive.NilObjectID, false, nil
	}
	id, err = ops.byNatural(ctx, naturalKey)
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, query.ErrNotFound):
		return primitive.NilObjectID, false, nil
	default:
		return primitive.NilObjectID, false, transient(err)
	}
}

// Insert writes doc, which must be the models type for kind.
func (t *Target) Insert(ctx context.Context, kind migration.Kind, doc any) (primitive.ObjectID, error) {
	ops, ok := t.ops[kind]
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("importer: unknown kind %q", kind)
	}
	id, err := ops.insert(ctx, doc)
	if err != nil {
		if errors.Is(err, ops.dup) {
			return primitive.NilObjectID, fmt.Errorf("%w: %v", migration.ErrExists, err)
		}
		return primitive.NilObjectID, transient(err)
	}
	return id, nil
}

// transient marks driver network and timeout errors as retryable.
func transient(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %w", migration.ErrTransient, err)
	}
	return err
}

func byLegacy[T any](get func(context.Context, uint) (*T, error), id func(T) primitive.ObjectID) lookupFunc {
	return func(ctx context.Context, legacyID uint) (primitive.ObjectID, error) {
		v, err := get(ctx, legacyID)
		if err != nil {
			return primitive.NilObjectID, err
		}
		return id(*v), nil
	}
}

func byKey[T any](get func(context.Context, string) (*T, error), id func(T) primitive.ObjectID) func(context.Context, string) (primitive.ObjectID, error) {
	return func(ctx context.Context, key string) (primitive.ObjectID, error) {
		v, err := get(ctx, key)
		if err != nil {
			return primitive.NilObjectID, err
		}
		return id(*v), nil
	}
}

func insert[T any](imp func(context.Context, T) (primitive.ObjectID, error)) func(context.Context, any) (primitive.ObjectID, error) {
	return func(ctx context.Context, doc any) (primitive.ObjectID, error) {
		v, ok := doc.(T)
		if !ok {
			return primitive.NilObjectID, fmt.Errorf("importer: unexpected document %T", doc)
		}
		return imp(ctx, v)
	}
}
