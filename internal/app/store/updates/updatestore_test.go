package updatestore_test

import (
	"testing"

	updatestore "github.com/dalemusser/cityseva/internal/app/store/updates"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_CreateAndHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := updatestore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "official", models.RoleOfficial)
	cat := fx.CreateCategory(ctx, "Roads")
	c := fx.CreateComplaint(ctx, u, cat, "Pothole", models.StatusPending)

	for _, st := range []string{models.StatusPending, models.StatusInProgress, models.StatusResolved} {
		if _, err := store.Create(ctx, models.ComplaintUpdate{ComplaintID: c.ID, UserID: u.ID, Status: st}); err != nil {
			t.Fatalf("Create(%s) failed: %v", st, err)
		}
	}

	history, err := store.ForComplaint(ctx, c.ID)
	if err != nil {
		t.Fatalf("ForComplaint failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history))
	}
	if history[0].Status != models.StatusPending || history[2].Status != models.StatusResolved {
		t.Errorf("expected chronological order, got %s..%s", history[0].Status, history[2].Status)
	}
}

func TestStore_Create_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := updatestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.ComplaintUpdate{Status: "done"}); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestStore_Update_NoUpdatedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := updatestore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "official", models.RoleOfficial)
	cat := fx.CreateCategory(ctx, "Roads")
	c := fx.CreateComplaint(ctx, u, cat, "Pothole", models.StatusPending)
	up := fx.CreateUpdate(ctx, c.ID, u.ID, models.StatusPending)

	if err := store.Update(ctx, up.ID, bson.M{"comment": "fixed typo"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	var raw bson.M
	if err := db.Collection(models.CollComplaintUpdates).FindOne(ctx, bson.M{"_id": up.ID}).Decode(&raw); err != nil {
		t.Fatalf("find raw: %v", err)
	}
	if raw["comment"] != "fixed typo" {
		t.Errorf("expected merged comment, got %v", raw["comment"])
	}
	if _, has := raw["updated_at"]; has {
		t.Error("history entries must not carry updated_at")
	}
}
