// internal/app/store/updates/updatestore.go
package updatestore

import (
	"context"
	"errors"

	"github.com/dalemusser/cityseva/internal/app/store/query"
	"github.com/dalemusser/cityseva/internal/app/system/isotime"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/domain/rules"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = query.ErrNotFound
	ErrDuplicate = errors.New("complaint update already imported")
)

// Store holds the append-only status history. Entries have no updated_at.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollComplaintUpdates)}
}

func (s *Store) Create(ctx context.Context, u models.ComplaintUpdate) (models.ComplaintUpdate, error) {
	if !models.IsStatus(u.Status) {
		return models.ComplaintUpdate{}, rules.ErrInvalidStatus
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = isotime.Now()
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.ComplaintUpdate{}, err
	}
	return u, nil
}

func (s *Store) Import(ctx context.Context, u models.ComplaintUpdate) (primitive.ObjectID, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return u.ID, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ComplaintUpdate, error) {
	return query.One[models.ComplaintUpdate](ctx, s.c, bson.M{"_id": id})
}

func (s *Store) GetByLegacyID(ctx context.Context, legacyID uint) (*models.ComplaintUpdate, error) {
	return query.One[models.ComplaintUpdate](ctx, s.c, bson.M{"legacy_id": legacyID})
}

// Update merges set; history entries carry no updated_at.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return query.SetFields(ctx, s.c, bson.M{"_id": id}, set)
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns entries matching f in chronological order unless f orders them.
func (s *Store) Find(ctx context.Context, f query.Filter) ([]models.ComplaintUpdate, error) {
	if f.OrderBy == "" {
		f.OrderBy = "created_at"
	}
	return query.Many[models.ComplaintUpdate](ctx, s.c, f)
}

func (s *Store) Count(ctx context.Context, f query.Filter) (int64, error) {
	return query.Count(ctx, s.c, f)
}

// ForComplaint is the status history of one complaint, oldest first.
func (s *Store) ForComplaint(ctx context.Context, complaintID primitive.ObjectID) ([]models.ComplaintUpdate, error) {
	f := query.Where("complaint_id", complaintID)
	f.OrderBy = "created_at"
	return s.Find(ctx, f)
}
