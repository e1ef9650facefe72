package categories_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/features/categories"
	"github.com/dalemusser/cityseva/internal/app/features/featuretest"
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndList(t *testing.T) {
	e := featuretest.New(t)
	h := categories.Routes(categories.NewHandler(e.Svc, e.ErrLog, e.Log))

	body := map[string]string{"name": "Street Lights", "department": "Electrical", "description": "<b>Dark</b> streets"}
	rec := featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/", body), e.Admin)
	rec.AssertStatus(t, http.StatusCreated)
	var created backend.Category
	rec.DecodeJSON(t, &created)
	assert.Equal(t, "Dark streets", created.Description)

	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/", map[string]string{"name": "street lights"}), e.Admin).
		AssertStatus(t, http.StatusConflict)
	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/", map[string]string{"name": "  "}), e.Admin).
		AssertStatus(t, http.StatusBadRequest)

	citizen := e.User("alice", models.RoleCitizen)
	featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/", map[string]string{"name": "Parks"}), citizen).
		AssertStatus(t, http.StatusForbidden)

	rec = featuretest.Serve(h, testutil.NewRequest("GET", "/"), auth.Actor{})
	rec.AssertStatus(t, http.StatusOK)
	var list struct {
		Items []backend.Category `json:"items"`
	}
	rec.DecodeJSON(t, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ID, list.Items[0].ID)

	featuretest.Serve(h, testutil.NewRequest("GET", "/"+created.ID), auth.Actor{}).AssertStatus(t, http.StatusOK)
}

func TestHandleDelete(t *testing.T) {
	e := featuretest.New(t)
	h := categories.Routes(categories.NewHandler(e.Svc, e.ErrLog, e.Log))
	used := e.Category("Roads")
	unused := e.Category("Parks")
	e.Complaint(e.User("alice", models.RoleCitizen), used, "Pothole")

	featuretest.Serve(h, testutil.NewRequest("DELETE", "/"+used.ID), e.Admin).AssertStatus(t, http.StatusConflict)
	featuretest.Serve(h, testutil.NewRequest("DELETE", "/"+unused.ID), e.Admin).AssertStatus(t, http.StatusNoContent)
	featuretest.Serve(h, testutil.NewRequest("GET", "/"+unused.ID), auth.Actor{}).AssertStatus(t, http.StatusNotFound)
}
