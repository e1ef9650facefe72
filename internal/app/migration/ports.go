// internal/app/migration/ports.go
package migration

import (
	"context"
	"errors"

	"github.com/dalemusser/cityseva/internal/domain/records"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Source reads relational rows. Each method returns the whole table in
// primary-key order.
type Source interface {
	Ping(ctx context.Context) error
	Users(ctx context.Context) ([]records.User, error)
	Categories(ctx context.Context) ([]records.Category, error)
	Complaints(ctx context.Context) ([]records.Complaint, error)
	Media(ctx context.Context) ([]records.ComplaintMedia, error)
	Updates(ctx context.Context) ([]records.ComplaintUpdate, error)
	Feedback(ctx context.Context) ([]records.Feedback, error)
	AuditLogs(ctx context.Context) ([]records.AuditLog, error)
	Notifications(ctx context.Context) ([]records.Notification, error)
	OfficialRequests(ctx context.Context) ([]records.OfficialRequest, error)
}

// Target writes documents.
//
// Existing looks a row up by legacy id and, for kinds that have one, by
// natural key (user email, category name). Insert receives the models.*
// value for kind and returns the new document ID.
type Target interface {
	Ping(ctx context.Context) error
	Existing(ctx context.Context, kind Kind, legacyID uint, naturalKey string) (primitive.ObjectID, bool, error)
	Insert(ctx context.Context, kind Kind, doc any) (primitive.ObjectID, error)
}

var (
	// ErrExists is wrapped by Target.Insert when a unique index rejected
	// the document, meaning a previous attempt already wrote it.
	ErrExists = errors.New("document already exists")
	// ErrTransient is wrapped by targets for errors worth retrying.
	ErrTransient = errors.New("transient store error")
)
