// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"errors"

	"github.com/dalemusser/cityseva/internal/app/store/query"
	"github.com/dalemusser/cityseva/internal/app/system/isotime"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = query.ErrNotFound
	ErrDuplicate = errors.New("notification already imported")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollNotifications)}
}

// Create inserts an unread notification.
func (s *Store) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.ID = primitive.NewObjectID()
	n.IsRead = false
	n.CreatedAt = isotime.Now()
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

func (s *Store) Import(ctx context.Context, n models.Notification) (primitive.ObjectID, error) {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return n.ID, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	return query.One[models.Notification](ctx, s.c, bson.M{"_id": id})
}

func (s *Store) GetByLegacyID(ctx context.Context, legacyID uint) (*models.Notification, error) {
	return query.One[models.Notification](ctx, s.c, bson.M{"legacy_id": legacyID})
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return query.SetFields(ctx, s.c, bson.M{"_id": id}, set)
}

// MarkRead flags a notification read. It only matches the owner's
// notifications, so other users' IDs report ErrNotFound.
func (s *Store) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	return query.SetFields(ctx, s.c, bson.M{"_id": id, "user_id": userID}, bson.M{"is_read": true})
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns notifications matching f, newest first unless f orders them.
func (s *Store) Find(ctx context.Context, f query.Filter) ([]models.Notification, error) {
	if f.OrderBy == "" {
		f = f.Newest()
	}
	return query.Many[models.Notification](ctx, s.c, f)
}

func (s *Store) Count(ctx context.Context, f query.Filter) (int64, error) {
	return query.Count(ctx, s.c, f)
}

// CountUnread counts a user's unread notifications.
func (s *Store) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}
