// internal/app/store/officialrequests/requeststore.go
package requeststore

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
	ErrDuplicate = errors.New("official request already imported")
	errNoDept    = errors.New("department is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollOfficialRequests)}
}

// Create inserts a pending request.
func (s *Store) Create(ctx context.Context, r models.OfficialRequest) (models.OfficialRequest, error) {
	if r.Department == "" {
		return models.OfficialRequest{}, errNoDept
	}
	r.ID = primitive.NewObjectID()
	r.Status = models.RequestPending
	r.ReviewedBy = nil
	r.ReviewedAt = nil
	now := isotime.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.OfficialRequest{}, err
	}
	return r, nil
}

func (s *Store) Import(ctx context.Context, r models.OfficialRequest) (primitive.ObjectID, error) {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return r.ID, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.OfficialRequest, error) {
	return query.One[models.OfficialRequest](ctx, s.c, bson.M{"_id": id})
}

func (s *Store) GetByLegacyID(ctx context.Context, legacyID uint) (*models.OfficialRequest, error) {
	return query.One[models.OfficialRequest](ctx, s.c, bson.M{"legacy_id": legacyID})
}

// PendingForUser returns the user's pending request or ErrNotFound.
func (s *Store) PendingForUser(ctx context.Context, userID primitive.ObjectID) (*models.OfficialRequest, error) {
	return query.One[models.OfficialRequest](ctx, s.c, bson.M{"user_id": userID, "status": models.RequestPending})
}

// Update merges set and stamps updated_at.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	out := bson.M{}
	for k, v := range set {
		out[k] = v
	}
	out["updated_at"] = isotime.Now()
	return query.SetFields(ctx, s.c, bson.M{"_id": id}, out)
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) Find(ctx context.Context, f query.Filter) ([]models.OfficialRequest, error) {
	if f.OrderBy == "" {
		f = f.Newest()
	}
	return query.Many[models.OfficialRequest](ctx, s.c, f)
}

func (s *Store) Count(ctx context.Context, f query.Filter) (int64, error) {
	return query.Count(ctx, s.c, f)
}
