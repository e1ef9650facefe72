// internal/app/store/complaints/complaintstore.go
package complaintstore

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
	ErrDuplicate = errors.New("complaint already imported")
	errNoTitle   = errors.New("complaint title is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(models.CollComplaints)}
}

// Create inserts a complaint. Status defaults to pending and priority to
// medium; resolved_at is made to agree with status.
func (s *Store) Create(ctx context.Context, c models.Complaint) (models.Complaint, error) {
	if c.Title == "" {
		return models.Complaint{}, errNoTitle
	}
	c.ID = primitive.NewObjectID()
	if c.Status == "" {
		c.Status = models.StatusPending
	}
	if !models.IsStatus(c.Status) {
		return models.Complaint{}, rules.ErrInvalidStatus
	}
	p, err := rules.NormalizePriority(c.Priority)
	if err != nil {
		return models.Complaint{}, err
	}
	c.Priority = p

	now := isotime.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	switch {
	case c.Status != models.StatusResolved:
		c.ResolvedAt = nil
	case c.ResolvedAt == nil:
		c.ResolvedAt = &now
	}

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Complaint{}, err
	}
	return c, nil
}

// Import inserts c as given, keeping its timestamps and legacy_id.
func (s *Store) Import(ctx context.Context, c models.Complaint) (primitive.ObjectID, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return c.ID, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Complaint, error) {
	return query.One[models.Complaint](ctx, s.c, bson.M{"_id": id})
}

func (s *Store) GetByLegacyID(ctx context.Context, legacyID uint) (*models.Complaint, error) {
	return query.One[models.Complaint](ctx, s.c, bson.M{"legacy_id": legacyID})
}

// Update merges set into the complaint and stamps updated_at.
//
// When set carries a status, resolved_at follows it: entering resolved
// stamps it (unless set provides one) and any other status removes it.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	out := bson.M{}
	for k, v := range set {
		out[k] = v
	}
	now := isotime.Now()
	out["updated_at"] = now

	update := bson.M{}
	if st, ok := out["status"].(string); ok {
		if !models.IsStatus(st) {
			return rules.ErrInvalidStatus
		}
		if st == models.StatusResolved {
			if _, has := out["resolved_at"]; !has {
				out["resolved_at"] = now
			}
		} else {
			delete(out, "resolved_at")
			update["$unset"] = bson.M{"resolved_at": ""}
		}
	}
	update["$set"] = out

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the complaint document only; store/cascade removes its
// dependents.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns complaints matching f, newest first when no order is given.
func (s *Store) Find(ctx context.Context, f query.Filter) ([]models.Complaint, error) {
	if f.OrderBy == "" {
		f = f.Newest()
	}
	return query.Many[models.Complaint](ctx, s.c, f)
}

func (s *Store) Count(ctx context.Context, f query.Filter) (int64, error) {
	return query.Count(ctx, s.c, f)
}

// CountByCategory is used to refuse deleting a category that is in use.
func (s *Store) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"category_id": categoryID})
}
