package mediastore_test

import (
	"testing"

	mediastore "github.com/dalemusser/cityseva/internal/app/store/media"
	"github.com/dalemusser/cityseva/internal/app/store/query"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
)

func TestStore_CreateAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mediastore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "author", models.RoleCitizen)
	cat := fx.CreateCategory(ctx, "Roads")
	c := fx.CreateComplaint(ctx, u, cat, "Pothole", models.StatusPending)

	if _, err := store.Create(ctx, models.ComplaintMedia{ComplaintID: c.ID, FilePath: "uploads/a.jpg", MediaType: models.MediaImage}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.ComplaintMedia{ComplaintID: c.ID, FilePath: "uploads/b.mp4", MediaType: models.MediaVideo}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Find(ctx, query.Where("complaint_id", c.ID))
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 media, got %d", len(got))
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mediastore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.ComplaintMedia{FilePath: "x.gif", MediaType: "gif"}); err == nil {
		t.Error("expected error for unknown media type")
	}
	if _, err := store.Create(ctx, models.ComplaintMedia{FilePath: "  ", MediaType: models.MediaImage}); err == nil {
		t.Error("expected error for empty path")
	}
}
