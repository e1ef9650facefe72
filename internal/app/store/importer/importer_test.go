package importer_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/cityseva/internal/app/migration"
	"github.com/dalemusser/cityseva/internal/app/store/importer"
	"github.com/dalemusser/cityseva/internal/app/system/isotime"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTarget_InsertAndExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tgt := importer.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := tgt.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	now := isotime.Now()
	id, err := tgt.Insert(ctx, migration.KindUsers, models.User{
		LegacyID: 7, Email: "Ravi@City.test", Username: "ravi",
		PasswordHash: "h", Role: models.RoleCitizen, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, found, err := tgt.Existing(ctx, migration.KindUsers, 7, "")
	if err != nil || !found {
		t.Fatalf("Existing by legacy id: found=%v err=%v", found, err)
	}
	if got != id {
		t.Errorf("Existing returned %s, want %s", got.Hex(), id.Hex())
	}

	got, found, err = tgt.Existing(ctx, migration.KindUsers, 99, "ravi@city.test")
	if err != nil || !found || got != id {
		t.Errorf("Existing by email: id=%s found=%v err=%v", got.Hex(), found, err)
	}

	_, found, err = tgt.Existing(ctx, migration.KindUsers, 99, "someone@city.test")
	if err != nil || found {
		t.Errorf("expected no match, found=%v err=%v", found, err)
	}
}

func TestTarget_InsertDuplicateIsErrExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tgt := importer.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cat := models.Category{LegacyID: 1, Name: "Streetlights", NameCI: "streetlights", CreatedAt: isotime.Now()}
	if _, err := tgt.Insert(ctx, migration.KindCategories, cat); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	_, err := tgt.Insert(ctx, migration.KindCategories, cat)
	if !errors.Is(err, migration.ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
}

func TestTarget_InsertWrongType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tgt := importer.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := tgt.Insert(ctx, migration.KindComplaints, models.User{}); err == nil {
		t.Error("expected error for mismatched document type")
	}
	if _, _, err := tgt.Existing(ctx, migration.Kind("widgets"), 1, ""); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestTarget_ComplaintKeepsReferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tgt := importer.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author, cat := primitive.NewObjectID(), primitive.NewObjectID()
	now := isotime.Now()
	id, err := tgt.Insert(ctx, migration.KindComplaints, models.Complaint{
		LegacyID: 3, Title: "Broken pipe", Description: "Leak on 5th",
		UserID: author, CategoryID: cat, Status: models.StatusPending, Priority: models.PriorityHigh,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, found, err := tgt.Existing(ctx, migration.KindComplaints, 3, "")
	if err != nil || !found || got != id {
		t.Fatalf("Existing: id=%s found=%v err=%v", got.Hex(), found, err)
	}
}
