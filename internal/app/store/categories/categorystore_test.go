package categorystore_test

import (
	"testing"

	categorystore "github.com/dalemusser/cityseva/internal/app/store/categories"
	"github.com/dalemusser/cityseva/internal/app/store/query"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := categorystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, err := store.Create(ctx, models.Category{Name: "  Potholes ", Department: "Roads", Icon: "road"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.Name != "Potholes" {
		t.Errorf("expected trimmed name, got %q", c.Name)
	}

	got, err := store.GetByName(ctx, "POTHOLES")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("GetByName returned wrong category")
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := categorystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Category{Name: "Water"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Category{Name: "water"}); err != categorystore.ErrDuplicate {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestStore_Create_EmptyName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := categorystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Category{Name: "   "}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestStore_UpdateDeleteFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := categorystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, _ := store.Create(ctx, models.Category{Name: "Bravo"})
	a, _ := store.Create(ctx, models.Category{Name: "Alpha"})

	all, err := store.Find(ctx, query.Filter{})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != a.ID {
		t.Errorf("expected name order with Alpha first, got %+v", all)
	}

	if err := store.Update(ctx, b.ID, bson.M{"name": "Charlie"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := store.GetByName(ctx, "charlie")
	if got == nil || got.ID != b.ID {
		t.Error("expected renamed category to be found by new name")
	}

	if n, err := store.Delete(ctx, a.ID); err != nil || n != 1 {
		t.Errorf("Delete: n=%d err=%v", n, err)
	}
	if _, err := store.GetByID(ctx, a.ID); err != categorystore.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Update(ctx, primitive.NewObjectID(), bson.M{"icon": "x"}); err != categorystore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
