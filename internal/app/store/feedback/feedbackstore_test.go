package feedbackstore_test

import (
	"testing"

	feedbackstore "github.com/dalemusser/cityseva/internal/app/store/feedback"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
)

// A second feedback for the same complaint must be rejected.
func TestStore_Create_AtMostOncePerComplaint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := feedbackstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "author", models.RoleCitizen)
	cat := fx.CreateCategory(ctx, "Roads")
	c := fx.CreateComplaint(ctx, u, cat, "Pothole", models.StatusResolved)

	if _, err := store.Create(ctx, models.Feedback{ComplaintID: c.ID, UserID: u.ID, Rating: 4}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Feedback{ComplaintID: c.ID, UserID: u.ID, Rating: 5})
	if err != feedbackstore.ErrDuplicate {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	got, err := store.GetByComplaint(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByComplaint failed: %v", err)
	}
	if got.Rating != 4 {
		t.Errorf("expected the first rating to stand, got %d", got.Rating)
	}
}

func TestStore_Create_RatingRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := feedbackstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, r := range []int{0, 6, -1} {
		if _, err := store.Create(ctx, models.Feedback{Rating: r}); err == nil {
			t.Errorf("expected error for rating %d", r)
		}
	}
}
