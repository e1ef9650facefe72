// internal/app/store/media/mediastore.go
package mediastore

import (
	"context"
	"errors"
	"strings"

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
	ErrDuplicate = errors.New("media already imported")
	errNoPath    = errors.New("media file path is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollComplaintMedia)}
}

func (s *Store) Create(ctx context.Context, m models.ComplaintMedia) (models.ComplaintMedia, error) {
	m.FilePath = strings.TrimSpace(m.FilePath)
	if m.FilePath == "" {
		return models.ComplaintMedia{}, errNoPath
	}
	if !models.IsMediaKind(m.MediaType) {
		return models.ComplaintMedia{}, rules.ErrInvalidMediaKind
	}
	m.ID = primitive.NewObjectID()
	m.CreatedAt = isotime.Now()
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.ComplaintMedia{}, err
	}
	return m, nil
}

func (s *Store) Import(ctx context.Context, m models.ComplaintMedia) (primitive.ObjectID, error) {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return m.ID, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ComplaintMedia, error) {
	return query.One[models.ComplaintMedia](ctx, s.c, bson.M{"_id": id})
}

func (s *Store) GetByLegacyID(ctx context.Context, legacyID uint) (*models.ComplaintMedia, error) {
	return query.One[models.ComplaintMedia](ctx, s.c, bson.M{"legacy_id": legacyID})
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

func (s *Store) Find(ctx context.Context, f query.Filter) ([]models.ComplaintMedia, error) {
	if f.OrderBy == "" {
		f.OrderBy = "created_at"
	}
	return query.Many[models.ComplaintMedia](ctx, s.c, f)
}

func (s *Store) Count(ctx context.Context, f query.Filter) (int64, error) {
	return query.Count(ctx, s.c, f)
}
