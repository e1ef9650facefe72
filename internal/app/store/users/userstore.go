// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/cityseva/internal/app/store/query"
	"github.com/dalemusser/cityseva/internal/app/system/isotime"
	"github.com/dalemusser/cityseva/internal/app/system/normalize"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/domain/rules"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = query.ErrNotFound
	// ErrDuplicate is returned when the email or username is already taken.
	ErrDuplicate = errors.New("a user with this email or username already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollUsers)}
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.Username = normalize.Name(u.Username)
	u.UsernameCI = text.Fold(u.Username)
	u.Role = normalize.Role(u.Role)
	if u.Role == "" {
		u.Role = models.RoleCitizen
	}
	if err := rules.CheckRoleDepartment(u.Role, u.Department); err != nil {
		return models.User{}, err
	}

	now := isotime.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, err
	}
	return u, nil
}

// Import inserts u as given, keeping its timestamps and legacy_id.
func (s *Store) Import(ctx context.Context, u models.User) (primitive.ObjectID, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = normalize.Email(u.Email)
	u.UsernameCI = text.Fold(u.Username)
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return u.ID, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return query.One[models.User](ctx, s.c, bson.M{"_id": id})
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return query.One[models.User](ctx, s.c, bson.M{"email": normalize.Email(email)})
}

// GetByUsername looks up a user by case- and accent-insensitive username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return query.One[models.User](ctx, s.c, bson.M{"username_ci": text.Fold(normalize.Name(username))})
}

// GetByLegacyID finds the user migrated from relational row legacyID.
func (s *Store) GetByLegacyID(ctx context.Context, legacyID uint) (*models.User, error) {
	return query.One[models.User](ctx, s.c, bson.M{"legacy_id": legacyID})
}

// GetByIDs loads every user in ids with one $in query.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return query.Many[models.User](ctx, s.c, query.Filter{Eq: bson.M{"_id": bson.M{"$in": ids}}})
}

// Update merges set into the user and stamps updated_at.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	out := bson.M{}
	for k, v := range set {
		out[k] = v
	}
	if v, ok := out["username"].(string); ok {
		out["username_ci"] = text.Fold(v)
	}
	if v, ok := out["email"].(string); ok {
		out["email"] = normalize.Email(v)
	}
	out["updated_at"] = isotime.Now()

	err := query.SetFields(ctx, s.c, bson.M{"_id": id}, out)
	if err != nil && wafflemongo.IsDup(err) {
		return ErrDuplicate
	}
	return err
}

// Delete removes a user document. Returns the number deleted (0 or 1).
// Dependents are handled by store/cascade.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns users matching f.
func (s *Store) Find(ctx context.Context, f query.Filter) ([]models.User, error) {
	return query.Many[models.User](ctx, s.c, f)
}

// Count returns the number of users matching f.
func (s *Store) Count(ctx context.Context, f query.Filter) (int64, error) {
	return query.Count(ctx, s.c, f)
}
