package cascade_test

import (
	"testing"

	"github.com/dalemusser/cityseva/internal/app/store/cascade"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func count(t *testing.T, db *mongo.Database, coll string, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := db.Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("count %s: %v", coll, err)
	}
	return n
}

// A complaint with 2 media, 3 updates, 1 feedback and 1 notification leaves
// nothing behind.
func TestDeleteComplaint_RemovesAllDependents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	d := cascade.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "author", models.RoleCitizen)
	cat := fx.CreateCategory(ctx, "Roads")
	c := fx.CreateComplaint(ctx, author, cat, "Pothole", models.StatusResolved)
	other := fx.CreateComplaint(ctx, author, cat, "Other", models.StatusPending)

	fx.CreateMedia(ctx, c.ID, "a.jpg")
	fx.CreateMedia(ctx, c.ID, "b.jpg")
	fx.CreateUpdate(ctx, c.ID, author.ID, models.StatusPending)
	fx.CreateUpdate(ctx, c.ID, author.ID, models.StatusInProgress)
	fx.CreateUpdate(ctx, c.ID, author.ID, models.StatusResolved)
	fx.CreateFeedback(ctx, c.ID, author.ID, 5)
	fx.CreateNotification(ctx, author.ID, &c.ID)
	fx.CreateUpdate(ctx, other.ID, author.ID, models.StatusPending)

	counts, err := d.DeleteComplaint(ctx, c.ID)
	if err != nil {
		t.Fatalf("DeleteComplaint failed: %v", err)
	}
	if counts.Media != 2 || counts.Updates != 3 || counts.Feedback != 1 || counts.Notifications != 1 || counts.Root != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}

	byComplaint := bson.M{"complaint_id": c.ID}
	for _, coll := range []string{models.CollComplaintMedia, models.CollComplaintUpdates, models.CollFeedback, models.CollNotifications} {
		if n := count(t, db, coll, byComplaint); n != 0 {
			t.Errorf("%s: expected 0 documents for deleted complaint, got %d", coll, n)
		}
	}
	if n := count(t, db, models.CollComplaints, bson.M{"_id": c.ID}); n != 0 {
		t.Error("complaint document still present")
	}
	if n := count(t, db, models.CollComplaintUpdates, bson.M{"complaint_id": other.ID}); n != 1 {
		t.Errorf("unrelated complaint's history was touched: %d", n)
	}
}

func TestDeleteComplaint_AlreadyGoneIsNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	d := cascade.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counts, err := d.DeleteComplaint(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if counts.Root != 0 {
		t.Errorf("expected nothing deleted, got %+v", counts)
	}
}

func TestDeleteUser_CascadesAndClearsReferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	d := cascade.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	victim := fx.CreateUser(ctx, "victim", models.RoleOfficial)
	citizen := fx.CreateUser(ctx, "citizen", models.RoleCitizen)
	cat := fx.CreateCategory(ctx, "Roads")

	// Victim's own complaint with dependents from someone else.
	own := fx.CreateComplaint(ctx, victim, cat, "Mine", models.StatusPending)
	fx.CreateUpdate(ctx, own.ID, citizen.ID, models.StatusPending)
	fx.CreateNotification(ctx, citizen.ID, &own.ID)

	// Citizen's complaint assigned to the victim, with the victim's activity on it.
	theirs := fx.CreateComplaint(ctx, citizen, cat, "Theirs", models.StatusResolved)
	if _, err := db.Collection(models.CollComplaints).UpdateOne(ctx, bson.M{"_id": theirs.ID},
		bson.M{"$set": bson.M{"assigned_to": victim.ID, "assignee_name": victim.Username}}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	fx.CreateUpdate(ctx, theirs.ID, victim.ID, models.StatusResolved)
	fx.CreateFeedback(ctx, theirs.ID, victim.ID, 3)
	fx.CreateNotification(ctx, victim.ID, nil)

	// Requests: one by the victim, one reviewed by the victim.
	fx.CreateOfficialRequest(ctx, victim.ID, nil, models.RequestPending)
	reviewed := fx.CreateOfficialRequest(ctx, citizen.ID, &victim.ID, models.RequestApproved)
	audit := fx.CreateAuditLog(ctx, victim.ID, "status_changed")

	if _, err := d.DeleteUser(ctx, victim.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	byVictim := bson.M{"user_id": victim.ID}
	for _, coll := range []string{models.CollComplaints, models.CollNotifications, models.CollFeedback, models.CollComplaintUpdates, models.CollOfficialRequests} {
		if n := count(t, db, coll, byVictim); n != 0 {
			t.Errorf("%s: expected 0 documents referencing deleted user, got %d", coll, n)
		}
	}
	if n := count(t, db, models.CollUsers, bson.M{"_id": victim.ID}); n != 0 {
		t.Error("user document still present")
	}

	// Dependents of the victim's complaint went with it.
	if n := count(t, db, models.CollComplaintUpdates, bson.M{"complaint_id": own.ID}); n != 0 {
		t.Errorf("expected own complaint history deleted, got %d", n)
	}
	if n := count(t, db, models.CollNotifications, bson.M{"complaint_id": own.ID}); n != 0 {
		t.Errorf("expected own complaint notifications deleted, got %d", n)
	}

	// The reviewed request survives with its reviewer cleared.
	var req models.OfficialRequest
	if err := db.Collection(models.CollOfficialRequests).FindOne(ctx, bson.M{"_id": reviewed.ID}).Decode(&req); err != nil {
		t.Fatalf("reviewed request was deleted: %v", err)
	}
	if req.ReviewedBy != nil {
		t.Error("expected reviewed_by to be cleared")
	}

	// The assigned complaint survives unassigned.
	var c models.Complaint
	if err := db.Collection(models.CollComplaints).FindOne(ctx, bson.M{"_id": theirs.ID}).Decode(&c); err != nil {
		t.Fatalf("assigned complaint was deleted: %v", err)
	}
	if c.AssignedTo != nil || c.AssigneeName != "" {
		t.Error("expected assignee to be cleared")
	}

	// The audit entry survives without an actor.
	var a models.AuditLog
	if err := db.Collection(models.CollAuditLogs).FindOne(ctx, bson.M{"_id": audit.ID}).Decode(&a); err != nil {
		t.Fatalf("audit entry was deleted: %v", err)
	}
	if a.UserID != nil {
		t.Error("expected audit actor to be cleared")
	}

	// A second delete is a no-op.
	if _, err := d.DeleteUser(ctx, victim.ID); err != nil {
		t.Errorf("second DeleteUser should succeed, got %v", err)
	}
}
