// internal/app/store/audit/store.go
package audit

import (
	"context"
	"errors"

	"github.com/dalemusser/cityseva/internal/app/store/query"
	"github.com/dalemusser/cityseva/internal/app/system/isotime"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = query.ErrNotFound
	ErrDuplicate = errors.New("audit log already imported")
)

// QueryFilter defines filters for querying audit logs.
type QueryFilter struct {
	UserID       *primitive.ObjectID
	Action       string
	ResourceType string
	ResourceID   string
	// Since and Until bound created_at; they compare as ISO-8601 text.
	Since  string
	Until  string
	Limit  int64
	Offset int64
}

// Store manages audit log records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollAuditLogs)}
}

// Log records an audit entry.
func (s *Store) Log(ctx context.Context, entry models.AuditLog) (models.AuditLog, error) {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt == "" {
		entry.CreatedAt = isotime.Now()
	}
	if _, err := s.c.InsertOne(ctx, entry); err != nil {
		return models.AuditLog{}, err
	}
	return entry, nil
}

// Import inserts a migrated entry as given.
func (s *Store) Import(ctx context.Context, entry models.AuditLog) (primitive.ObjectID, error) {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return entry.ID, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AuditLog, error) {
	return query.One[models.AuditLog](ctx, s.c, bson.M{"_id": id})
}

func (s *Store) GetByLegacyID(ctx context.Context, legacyID uint) (*models.AuditLog, error) {
	return query.One[models.AuditLog](ctx, s.c, bson.M{"legacy_id": legacyID})
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func buildQuery(filter QueryFilter) bson.M {
	q := bson.M{}
	if filter.UserID != nil {
		q["user_id"] = filter.UserID
	}
	if filter.Action != "" {
		q["action"] = filter.Action
	}
	if filter.ResourceType != "" {
		q["resource_type"] = filter.ResourceType
	}
	if filter.ResourceID != "" {
		q["resource_id"] = filter.ResourceID
	}
	if filter.Since != "" || filter.Until != "" {
		rng := bson.M{}
		if filter.Since != "" {
			rng["$gte"] = filter.Since
		}
		if filter.Until != "" {
			rng["$lte"] = filter.Until
		}
		q["created_at"] = rng
	}
	return q
}

// Query retrieves audit logs matching the given filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]models.AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, buildQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []models.AuditLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// CountByFilter returns the count of logs matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, buildQuery(filter))
}

// Find and Count give the audit store the same surface as the other stores.
func (s *Store) Find(ctx context.Context, f query.Filter) ([]models.AuditLog, error) {
	if f.OrderBy == "" {
		f = f.Newest()
	}
	return query.Many[models.AuditLog](ctx, s.c, f)
}

func (s *Store) Count(ctx context.Context, f query.Filter) (int64, error) {
	return query.Count(ctx, s.c, f)
}

// GetByUser retrieves recent audit logs for a specific actor.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.AuditLog, error) {
	return s.Query(ctx, QueryFilter{UserID: &userID, Limit: limit})
}

// GetRecent retrieves the most recent audit logs.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]models.AuditLog, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}
