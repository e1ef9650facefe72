package docbackend_test

import (
	"context"
	"testing"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/backend/backendtest"
	"github.com/dalemusser/cityseva/internal/app/backend/docbackend"
	"github.com/dalemusser/cityseva/internal/app/system/displaycache"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBackend(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) backend.Backend {
		return docbackend.New(testutil.SetupTestDB(t), nil, nil)
	})
}

// memCache records lookups so tests can see what hit the store.
type memCache struct {
	names map[string]string
	asked int
}

func (m *memCache) Names(_ context.Context, kind string, ids []string) (map[string]string, []string) {
	m.asked++
	found := map[string]string{}
	var missing []string
	for _, id := range ids {
		if n, ok := m.names[kind+id]; ok {
			found[id] = n
			continue
		}
		missing = append(missing, id)
	}
	return found, missing
}

func (m *memCache) Remember(_ context.Context, kind string, names map[string]string) {
	for id, n := range names {
		m.names[kind+id] = n
	}
}

func (m *memCache) Forget(_ context.Context, kind, id string) {
	delete(m.names, kind+id)
}

var _ displaycache.Cache = (*memCache)(nil)

func TestListComplaints_RefreshesEmbeddedNames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	author := fx.CreateUser(ctx, "rita", models.RoleCitizen)
	cat := fx.CreateCategory(ctx, "Parks")
	cp := fx.CreateComplaint(ctx, author, cat, "broken bench", models.StatusPending)

	// Rename behind the backend's back; the embedded copy is now stale.
	if _, err := db.Collection(models.CollCategories).UpdateOne(ctx,
		bson.M{"_id": cat.ID}, bson.M{"$set": bson.M{"name": "Parks & Rec"}}); err != nil {
		t.Fatalf("rename category: %v", err)
	}

	cache := &memCache{names: map[string]string{}}
	b := docbackend.New(db, cache, nil)

	list, err := b.ListComplaints(ctx, backend.ComplaintFilter{})
	if err != nil {
		t.Fatalf("ListComplaints: %v", err)
	}
	if len(list) != 1 || list[0].ID != cp.ID.Hex() {
		t.Fatalf("ListComplaints = %+v, want the one complaint", list)
	}
	if list[0].CategoryName != "Parks & Rec" {
		t.Errorf("CategoryName = %q, want current name", list[0].CategoryName)
	}
	if list[0].AuthorName != "rita" {
		t.Errorf("AuthorName = %q, want rita", list[0].AuthorName)
	}
	if cache.names[displaycache.Categories+cat.ID.Hex()] != "Parks & Rec" {
		t.Errorf("category name not remembered: %v", cache.names)
	}

	// Cached names win over the store on the next page.
	cache.names[displaycache.Users+author.ID.Hex()] = "rita (cached)"
	got, err := b.GetComplaint(ctx, cp.ID.Hex())
	if err != nil {
		t.Fatalf("GetComplaint: %v", err)
	}
	if got.AuthorName != "rita (cached)" {
		t.Errorf("AuthorName = %q, want cached value", got.AuthorName)
	}
}

func TestDeleteUser_ForgetsCachedName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "sam", models.RoleCitizen)

	cache := &memCache{names: map[string]string{displaycache.Users + u.ID.Hex(): "sam"}}
	b := docbackend.New(db, cache, nil)

	if err := b.DeleteUser(ctx, u.ID.Hex()); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, ok := cache.names[displaycache.Users+u.ID.Hex()]; ok {
		t.Errorf("cached name survived DeleteUser")
	}
}
