// internal/app/store/feedback/feedbackstore.go
package feedbackstore

import (
	"context"
	"errors"

	"github.com/dalemusser/cityseva/internal/app/store/query"
	"github.com/dalemusser/cityseva/internal/app/system/isotime"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/domain/rules"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = query.ErrNotFound
	// ErrDuplicate is returned for a second feedback on the same complaint.
	ErrDuplicate = errors.New("feedback already exists for this complaint")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollFeedback)}
}

// Create inserts feedback. The unique index on complaint_id is what
// guarantees at most one per complaint, even under concurrent submits.
func (s *Store) Create(ctx context.Context, f models.Feedback) (models.Feedback, error) {
	if f.Rating < 1 || f.Rating > 5 {
		return models.Feedback{}, rules.ErrInvalidRating
	}
	f.ID = primitive.NewObjectID()
	f.CreatedAt = isotime.Now()
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Feedback{}, ErrDuplicate
		}
		return models.Feedback{}, err
	}
	return f, nil
}

func (s *Store) Import(ctx context.Context, f models.Feedback) (primitive.ObjectID, error) {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return f.ID, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	return query.One[models.Feedback](ctx, s.c, bson.M{"_id": id})
}

func (s *Store) GetByLegacyID(ctx context.Context, legacyID uint) (*models.Feedback, error) {
	return query.One[models.Feedback](ctx, s.c, bson.M{"legacy_id": legacyID})
}

// GetByComplaint returns the complaint's feedback or ErrNotFound.
func (s *Store) GetByComplaint(ctx context.Context, complaintID primitive.ObjectID) (*models.Feedback, error) {
	return query.One[models.Feedback](ctx, s.c, bson.M{"complaint_id": complaintID})
}

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

func (s *Store) Find(ctx context.Context, f query.Filter) ([]models.Feedback, error) {
	return query.Many[models.Feedback](ctx, s.c, f)
}

func (s *Store) Count(ctx context.Context, f query.Filter) (int64, error) {
	return query.Count(ctx, s.c, f)
}
