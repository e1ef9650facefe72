package notifications_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/features/featuretest"
	"github.com/dalemusser/cityseva/internal/app/features/notifications"
	"github.com/dalemusser/cityseva/internal/app/features/shared/jsonapi"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAndMarkRead(t *testing.T) {
	e := featuretest.New(t)
	h := notifications.Routes(notifications.NewHandler(e.Svc, e.ErrLog))
	alice := e.User("alice", models.RoleCitizen)
	bob := e.User("bob", models.RoleCitizen)
	olga := e.User("olga", models.RoleOfficial)
	c := e.Complaint(alice, e.Category("Roads"), "Pothole")

	_, err := e.Svc.ChangeStatus(e.Ctx, featuretest.Civic(olga), c.ID, models.StatusInProgress, "")
	require.NoError(t, err)

	rec := featuretest.Serve(h, testutil.NewRequest("GET", "/?unread=true"), alice)
	rec.AssertStatus(t, http.StatusOK)
	var list jsonapi.List[backend.Notification]
	rec.DecodeJSON(t, &list)
	require.Len(t, list.Items, 1)
	n := list.Items[0]
	assert.Equal(t, c.ID, n.ComplaintID)
	assert.False(t, n.IsRead)

	featuretest.Serve(h, testutil.NewRequest("POST", "/"+n.ID+"/read"), bob).AssertStatus(t, http.StatusNotFound)
	featuretest.Serve(h, testutil.NewRequest("POST", "/"+n.ID+"/read"), alice).AssertStatus(t, http.StatusNoContent)

	rec = featuretest.Serve(h, testutil.NewRequest("GET", "/?unread=true"), alice)
	list = jsonapi.List[backend.Notification]{}
	rec.DecodeJSON(t, &list)
	assert.Empty(t, list.Items)

	rec = featuretest.Serve(h, testutil.NewRequest("GET", "/"), alice)
	list = jsonapi.List[backend.Notification]{}
	rec.DecodeJSON(t, &list)
	require.Len(t, list.Items, 1)
	assert.True(t, list.Items[0].IsRead)

	rec = featuretest.Serve(h, testutil.NewRequest("GET", "/"), bob)
	list = jsonapi.List[backend.Notification]{}
	rec.DecodeJSON(t, &list)
	assert.Empty(t, list.Items)
}
