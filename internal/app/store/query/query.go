// internal/app/store/query/query.go
//
// Package query holds the filter type and the small generic read helpers the
// per-collection stores share.
package query

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is the one "missing" error every store returns.
var ErrNotFound = errors.New("not found")

// MaxLimit caps page size regardless of what the caller asks for.
const MaxLimit = 500

// Filter selects documents by field equality, with optional ordering and
// paging. A zero Filter matches everything in natural order.
type Filter struct {
	Eq      bson.M
	OrderBy string
	Desc    bool
	Limit   int64
	Offset  int64
}

// Where returns a Filter with the single equality clause field == value.
func Where(field string, value any) Filter {
	return Filter{Eq: bson.M{field: value}}
}

// And adds an equality clause and returns f for chaining.
func (f Filter) And(field string, value any) Filter {
	eq := make(bson.M, len(f.Eq)+1)
	for k, v := range f.Eq {
		eq[k] = v
	}
	eq[field] = value
	f.Eq = eq
	return f
}

// Newest orders by created_at descending.
func (f Filter) Newest() Filter {
	f.OrderBy = "created_at"
	f.Desc = true
	return f
}

// Page sets limit and offset.
func (f Filter) Page(limit, offset int64) Filter {
	f.Limit = limit
	f.Offset = offset
	return f
}

// Match returns the mongo filter document.
func (f Filter) Match() bson.M {
	if f.Eq == nil {
		return bson.M{}
	}
	return f.Eq
}

// FindOptions translates ordering and paging. _id breaks ties so paging
// is stable when the order field repeats.
func (f Filter) FindOptions() *options.FindOptions {
	opts := options.Find()
	if f.OrderBy != "" {
		dir := 1
		if f.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: f.OrderBy, Value: dir}, {Key: "_id", Value: dir}})
	}
	if f.Limit > 0 {
		limit := f.Limit
		if limit > MaxLimit {
			limit = MaxLimit
		}
		opts.SetLimit(limit)
	}
	if f.Offset > 0 {
		opts.SetSkip(f.Offset)
	}
	return opts
}

// One decodes a single document, mapping mongo.ErrNoDocuments to ErrNotFound.
func One[T any](ctx context.Context, c *mongo.Collection, filter any) (*T, error) {
	var out T
	if err := c.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// Many runs f against c and decodes every match.
func Many[T any](ctx context.Context, c *mongo.Collection, f Filter) ([]T, error) {
	cur, err := c.Find(ctx, f.Match(), f.FindOptions())
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count counts documents matching f's equality clauses; paging is ignored.
func Count(ctx context.Context, c *mongo.Collection, f Filter) (int64, error) {
	return c.CountDocuments(ctx, f.Match())
}

// SetFields runs a $set on one document and reports ErrNotFound when
// nothing matched.
func SetFields(ctx context.Context, c *mongo.Collection, filter any, set bson.M) error {
	res, err := c.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
