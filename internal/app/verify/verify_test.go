package verify_test

import (
	"context"
	"testing"

	"github.com/dalemusser/cityseva/internal/app/verify"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func counts(t *testing.T, ctx context.Context, db *mongo.Database) map[string]int64 {
	t.Helper()
	out := make(map[string]int64, len(models.Collections))
	for _, coll := range models.Collections {
		n, err := db.Collection(coll).CountDocuments(ctx, bson.M{})
		require.NoError(t, err)
		out[coll] = n
	}
	return out
}

func byKind(rep *verify.Report, kind string) map[string]verify.Check {
	out := map[string]verify.Check{}
	for _, c := range rep.Checks {
		if c.Kind == kind {
			out[c.Name] = c
		}
	}
	return out
}

func TestRun_EmptyDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rep, err := verify.New(db, nil).Run(ctx)
	require.NoError(t, err)

	assert.True(t, rep.Passed)
	assert.NotEmpty(t, rep.RunID)
	assert.Empty(t, rep.CleanupErr)
	assert.Empty(t, rep.Failed())

	colls := byKind(rep, "collection")
	trips := byKind(rep, "roundtrip")
	require.Len(t, colls, len(models.Collections))
	require.Len(t, trips, len(models.Collections))
	for _, name := range models.Collections {
		assert.Equal(t, verify.Empty, colls[name].Status, name)
		assert.Equal(t, verify.Pass, trips[name].Status, "%s: %s", name, trips[name].Detail)
	}
}

func TestRun_SeededDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	alice := fx.CreateUser(ctx, "alice", models.RoleCitizen)
	bob := fx.CreateUser(ctx, "bob", models.RoleOfficial)
	roads := fx.CreateCategory(ctx, "Roads")
	c := fx.CreateComplaint(ctx, alice, roads, "Pothole on 5th", models.StatusPending)
	fx.CreateUpdate(ctx, c.ID, alice.ID, models.StatusPending)
	fx.CreateNotification(ctx, bob.ID, &c.ID)

	rep, err := verify.New(db, nil).Run(ctx)
	require.NoError(t, err)
	assert.True(t, rep.Passed)

	colls := byKind(rep, "collection")
	assert.Equal(t, verify.Pass, colls[models.CollUsers].Status)
	assert.EqualValues(t, 2, colls[models.CollUsers].Count)
	assert.Equal(t, verify.Pass, colls[models.CollComplaints].Status)
	assert.EqualValues(t, 1, colls[models.CollComplaints].Count)
	assert.Equal(t, verify.Empty, colls[models.CollOfficialRequests].Status)
	assert.Equal(t, verify.Empty, colls[models.CollFeedback].Status)
}

func TestRun_LeavesNoProbes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "carol", models.RoleAdmin)
	fx.CreateAuditLog(ctx, u.ID, "login_success")

	before := counts(t, ctx, db)
	_, err := verify.New(db, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, counts(t, ctx, db))

	n, err := db.Collection(models.CollUsers).CountDocuments(ctx, bson.M{"username": bson.M{"$regex": "^verify-"}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRun_CanceledContext(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := verify.New(db, nil).Run(ctx)
	require.Error(t, err)
	require.NotNil(t, rep)
	assert.False(t, rep.Passed)
}
