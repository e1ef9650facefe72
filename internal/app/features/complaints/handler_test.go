package complaints_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/features/complaints"
	"github.com/dalemusser/cityseva/internal/app/features/featuretest"
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(e *featuretest.Env) http.Handler {
	return complaints.Routes(complaints.NewHandler(e.Svc, e.ErrLog, e.Log))
}

type listBody struct {
	Items []backend.Complaint `json:"items"`
	Total int64               `json:"total"`
	Range struct {
		Start     int `json:"start"`
		NextStart int `json:"next_start"`
	} `json:"range"`
}

func TestSubmitAndRead(t *testing.T) {
	e := featuretest.New(t)
	h := newRouter(e)
	alice := e.User("alice", models.RoleCitizen)
	bob := e.User("bob", models.RoleCitizen)
	cat := e.Category("Roads")

	lat, lng := 27.7172, 85.3240
	rec := featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/", map[string]any{
		"title": "Pothole on Ring Road", "description": "Deep <script>x</script>pothole",
		"category_id": cat.ID, "priority": "HIGH", "latitude": lat, "longitude": lng,
	}), alice)
	rec.AssertStatus(t, http.StatusCreated)
	var c backend.Complaint
	rec.DecodeJSON(t, &c)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, models.PriorityHigh, c.Priority)
	assert.NotContains(t, c.Description, "<script>")
	require.NotNil(t, c.Latitude)
	assert.InDelta(t, lat, *c.Latitude, 1e-9)

	rec = featuretest.Serve(h, testutil.NewRequest("GET", "/"+c.ID), alice)
	rec.AssertStatus(t, http.StatusOK)
	var got backend.Complaint
	rec.DecodeJSON(t, &got)
	assert.Equal(t, "Roads", got.CategoryName)
	assert.Equal(t, "alice", got.AuthorName)

	featuretest.Serve(h, testutil.NewRequest("GET", "/"+c.ID), bob).AssertStatus(t, http.StatusNotFound)
	featuretest.Serve(h, testutil.NewRequest("GET", "/"+c.ID), auth.Actor{}).AssertStatus(t, http.StatusUnauthorized)

	rec = featuretest.Serve(h, testutil.NewRequest("GET", "/"+c.ID+"/updates"), alice)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Complaint submitted")
}

func TestSubmit_Validation(t *testing.T) {
	e := featuretest.New(t)
	h := newRouter(e)
	alice := e.User("alice", models.RoleCitizen)
	cat := e.Category("Roads")

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing title", map[string]any{"description": "d", "category_id": cat.ID}, "title"},
		{"bad priority", map[string]any{"title": "t", "description": "d", "category_id": cat.ID, "priority": "meh"}, "priority"},
		{"unknown category", map[string]any{"title": "t", "description": "d", "category_id": "ffffffffffffffffffffffff"}, "category_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/", tt.body), alice)
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, fmt.Sprintf(`"field":%q`, tt.field))
		})
	}
}

func TestList_ScopingFiltersAndPaging(t *testing.T) {
	e := featuretest.New(t)
	h := newRouter(e)
	alice := e.User("alice", models.RoleCitizen)
	bob := e.User("bob", models.RoleCitizen)
	olga := e.User("olga", models.RoleOfficial)
	cat := e.Category("Roads")
	for i := 0; i < 3; i++ {
		e.Complaint(alice, cat, fmt.Sprintf("alice %d", i))
	}
	e.Complaint(bob, cat, "bob 0")

	rec := featuretest.Serve(h, testutil.NewRequest("GET", "/"), alice)
	rec.AssertStatus(t, http.StatusOK)
	var lb listBody
	rec.DecodeJSON(t, &lb)
	assert.Len(t, lb.Items, 3)
	assert.EqualValues(t, 3, lb.Total)

	rec = featuretest.Serve(h, testutil.NewRequest("GET", "/?limit=2"), olga)
	lb = listBody{}
	rec.DecodeJSON(t, &lb)
	assert.Len(t, lb.Items, 2)
	assert.EqualValues(t, 4, lb.Total)
	assert.Equal(t, 3, lb.Range.NextStart)
	assert.Equal(t, "bob 0", lb.Items[0].Title)

	rec = featuretest.Serve(h, testutil.NewRequest("GET", "/?author_id="+bob.ID+"&status=ALL"), olga)
	lb = listBody{}
	rec.DecodeJSON(t, &lb)
	require.Len(t, lb.Items, 1)
	assert.Equal(t, bob.ID, lb.Items[0].AuthorID)

	rec = featuretest.Serve(h, testutil.NewRequest("GET", "/?status=resolved"), olga)
	lb = listBody{}
	rec.DecodeJSON(t, &lb)
	assert.Empty(t, lb.Items)
	assert.NotNil(t, lb.Items)
}

func TestStatusAssignAndFeedback(t *testing.T) {
	e := featuretest.New(t)
	h := newRouter(e)
	alice := e.User("alice", models.RoleCitizen)
	olga := e.User("olga", models.RoleOfficial)
	cat := e.Category("Roads")
	c := e.Complaint(alice, cat, "Broken light")

	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/status", map[string]string{"status": "resolved"}), alice).
		AssertStatus(t, http.StatusForbidden)
	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/status", map[string]string{"status": "done"}), olga).
		AssertStatus(t, http.StatusBadRequest)

	// Feedback is refused until resolved.
	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/feedback", map[string]any{"rating": 5}), alice).
		AssertStatus(t, http.StatusConflict)

	rec := featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/assign", map[string]string{"assignee_id": olga.ID}), e.Admin)
	rec.AssertStatus(t, http.StatusOK)
	var got backend.Complaint
	rec.DecodeJSON(t, &got)
	assert.Equal(t, "olga", got.AssigneeName)
	assert.NotNil(t, got.AssignedAt)

	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/assign", map[string]string{"assignee_id": alice.ID}), e.Admin).
		AssertStatus(t, http.StatusBadRequest)

	rec = featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/status", map[string]string{"status": "resolved", "comment": "Replaced bulb"}), olga)
	rec.AssertStatus(t, http.StatusOK)
	got = backend.Complaint{}
	rec.DecodeJSON(t, &got)
	assert.Equal(t, models.StatusResolved, got.Status)
	assert.NotNil(t, got.ResolvedAt)

	olgaOther := e.User("oscar", models.RoleOfficial)
	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/feedback", map[string]any{"rating": 4}), olgaOther).
		AssertStatus(t, http.StatusForbidden)
	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/feedback", map[string]any{"rating": 9}), alice).
		AssertStatus(t, http.StatusBadRequest)
	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/feedback", map[string]any{"rating": 5, "comment": "Fast!"}), alice).
		AssertStatus(t, http.StatusCreated)
	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/feedback", map[string]any{"rating": 5}), alice).
		AssertStatus(t, http.StatusConflict)

	rec = featuretest.Serve(h, testutil.NewRequest("GET", "/"+c.ID+"/feedback"), olga)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Fast!")
}

func TestMediaAndDelete(t *testing.T) {
	e := featuretest.New(t)
	h := newRouter(e)
	alice := e.User("alice", models.RoleCitizen)
	bob := e.User("bob", models.RoleCitizen)
	cat := e.Category("Roads")
	c := e.Complaint(alice, cat, "Flooded underpass")

	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/media", map[string]string{"file_path": "/u/1.mp4", "media_type": "video"}), alice).
		AssertStatus(t, http.StatusCreated)
	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/media", map[string]string{"file_path": "/u/1.gif", "media_type": "gif"}), alice).
		AssertStatus(t, http.StatusBadRequest)
	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/"+c.ID+"/media", map[string]string{"file_path": "/u/2.jpg", "media_type": "image"}), bob).
		AssertStatus(t, http.StatusNotFound)

	rec := featuretest.Serve(h, testutil.NewRequest("GET", "/"+c.ID+"/media"), alice)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "/u/1.mp4")

	featuretest.Serve(h, testutil.NewRequest("DELETE", "/"+c.ID), bob).AssertStatus(t, http.StatusForbidden)
	featuretest.Serve(h, testutil.NewRequest("DELETE", "/"+c.ID), alice).AssertStatus(t, http.StatusNoContent)
	featuretest.Serve(h, testutil.NewRequest("GET", "/"+c.ID), alice).AssertStatus(t, http.StatusNotFound)

	media, err := e.B.ListMedia(e.Ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, media)
}
