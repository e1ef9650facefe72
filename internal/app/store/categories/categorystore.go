// internal/app/store/categories/categorystore.go
package categorystore

import (
	"context"
	"errors"

	"github.com/dalemusser/cityseva/internal/app/store/query"
	"github.com/dalemusser/cityseva/internal/app/system/isotime"
	"github.com/dalemusser/cityseva/internal/app/system/normalize"
	"github.com/dalemusser/cityseva/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = query.ErrNotFound
	ErrDuplicate = errors.New("a category with this name already exists")
	errNoName    = errors.New("category name is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollCategories)}
}

// Create inserts a category. Names are unique case-insensitively.
func (s *Store) Create(ctx context.Context, c models.Category) (models.Category, error) {
	c.ID = primitive.NewObjectID()
	c.Name = normalize.Name(c.Name)
	if c.Name == "" {
		return models.Category{}, errNoName
	}
	c.NameCI = text.Fold(c.Name)
	now := isotime.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Category{}, ErrDuplicate
		}
		return models.Category{}, err
	}
	return c, nil
}

// Import inserts c as given, keeping its timestamps and legacy_id.
func (s *Store) Import(ctx context.Context, c models.Category) (primitive.ObjectID, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.NameCI = text.Fold(c.Name)
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return c.ID, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return query.One[models.Category](ctx, s.c, bson.M{"_id": id})
}

// GetByName matches case-insensitively.
func (s *Store) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return query.One[models.Category](ctx, s.c, bson.M{"name_ci": text.Fold(normalize.Name(name))})
}

func (s *Store) GetByLegacyID(ctx context.Context, legacyID uint) (*models.Category, error) {
	return query.One[models.Category](ctx, s.c, bson.M{"legacy_id": legacyID})
}

// GetByIDs loads every category in ids with one $in query.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return query.Many[models.Category](ctx, s.c, query.Filter{Eq: bson.M{"_id": bson.M{"$in": ids}}})
}

// Update merges set into the category and stamps updated_at.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	out := bson.M{}
	for k, v := range set {
		out[k] = v
	}
	if v, ok := out["name"].(string); ok {
		out["name"] = normalize.Name(v)
		out["name_ci"] = text.Fold(normalize.Name(v))
	}
	out["updated_at"] = isotime.Now()

	err := query.SetFields(ctx, s.c, bson.M{"_id": id}, out)
	if err != nil && wafflemongo.IsDup(err) {
		return ErrDuplicate
	}
	return err
}

// Delete removes the category document. Callers check for referencing
// complaints first; the document store has no RESTRICT.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns categories matching f, by name when no order is given.
func (s *Store) Find(ctx context.Context, f query.Filter) ([]models.Category, error) {
	if f.OrderBy == "" {
		f.OrderBy = "name_ci"
	}
	return query.Many[models.Category](ctx, s.c, f)
}

func (s *Store) Count(ctx context.Context, f query.Filter) (int64, error) {
	return query.Count(ctx, s.c, f)
}
