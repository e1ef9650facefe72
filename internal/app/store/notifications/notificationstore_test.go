package notificationstore_test

import (
	"testing"

	notificationstore "github.com/dalemusser/cityseva/internal/app/store/notifications"
	"github.com/dalemusser/cityseva/internal/app/store/query"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
)

func TestStore_MarkRead_OwnerOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "owner", models.RoleCitizen)
	other := fx.CreateUser(ctx, "other", models.RoleCitizen)

	n, err := store.Create(ctx, models.Notification{UserID: owner.ID, Title: "Hi", Message: "Hello"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.MarkRead(ctx, n.ID, other.ID); err != notificationstore.ErrNotFound {
		t.Errorf("expected ErrNotFound for non-owner, got %v", err)
	}
	unread, _ := store.CountUnread(ctx, owner.ID)
	if unread != 1 {
		t.Errorf("expected 1 unread, got %d", unread)
	}

	if err := store.MarkRead(ctx, n.ID, owner.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	unread, _ = store.CountUnread(ctx, owner.ID)
	if unread != 0 {
		t.Errorf("expected 0 unread, got %d", unread)
	}
}

func TestStore_Find_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "u", models.RoleCitizen)
	first, _ := store.Create(ctx, models.Notification{UserID: u.ID, Title: "1", Message: "one"})
	second, _ := store.Create(ctx, models.Notification{UserID: u.ID, Title: "2", Message: "two"})

	got, err := store.Find(ctx, query.Where("user_id", u.ID))
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	// Equal timestamps fall back to _id order, which is creation order.
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Error("expected newest first")
	}
}
