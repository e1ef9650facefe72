package query

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestFilter_And_DoesNotMutateReceiver(t *testing.T) {
	base := Where("status", "pending")
	next := base.And("user_id", "u1")

	if len(base.Eq) != 1 {
		t.Errorf("base filter was mutated: %v", base.Eq)
	}
	if len(next.Eq) != 2 || next.Eq["user_id"] != "u1" {
		t.Errorf("unexpected filter: %v", next.Eq)
	}
}

func TestFilter_Match_ZeroMatchesAll(t *testing.T) {
	m := Filter{}.Match()
	if m == nil || len(m) != 0 {
		t.Errorf("expected empty match, got %v", m)
	}
}

func TestFilter_FindOptions(t *testing.T) {
	opts := Where("x", 1).Newest().Page(25, 50).FindOptions()

	if opts.Limit == nil || *opts.Limit != 25 {
		t.Errorf("expected limit 25, got %v", opts.Limit)
	}
	if opts.Skip == nil || *opts.Skip != 50 {
		t.Errorf("expected skip 50, got %v", opts.Skip)
	}
	sort, ok := opts.Sort.(bson.D)
	if !ok || len(sort) != 2 || sort[0].Key != "created_at" || sort[0].Value != -1 {
		t.Errorf("unexpected sort: %v", opts.Sort)
	}
}

func TestFilter_FindOptions_CapsLimit(t *testing.T) {
	opts := Filter{Limit: MaxLimit * 10}.FindOptions()
	if opts.Limit == nil || *opts.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %v", MaxLimit, opts.Limit)
	}
}

func TestFilter_FindOptions_NoOrder(t *testing.T) {
	opts := Filter{}.FindOptions()
	if opts.Sort != nil {
		t.Errorf("expected no sort, got %v", opts.Sort)
	}
	if opts.Limit != nil || opts.Skip != nil {
		t.Error("expected no paging")
	}
}
