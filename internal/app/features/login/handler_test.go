package login_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/cityseva/internal/app/features/featuretest"
	"github.com/dalemusser/cityseva/internal/app/features/login"
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/app/system/ratelimit"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleLogin(t *testing.T) {
	e := featuretest.New(t)
	tokens := auth.NewIssuer("test-secret", time.Hour)
	h := login.Routes(login.NewHandler(e.Svc, tokens, nil, e.ErrLog, e.Log))
	olga := e.User("olga", models.RoleOfficial)

	rec := featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/", map[string]string{
		"email": "olga@example.org", "password": featuretest.Password,
	}), auth.Actor{})
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
		ExpiresIn int64  `json:"expires_in"`
		User      struct {
			ID        string     `json:"id"`
			LastLogin *time.Time `json:"last_login"`
		} `json:"user"`
	}
	rec.DecodeJSON(t, &resp)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.EqualValues(t, 3600, resp.ExpiresIn)
	assert.Equal(t, olga.ID, resp.User.ID)
	assert.NotNil(t, resp.User.LastLogin)

	a, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, olga, a)
}

func TestHandleLogin_Rejections(t *testing.T) {
	e := featuretest.New(t)
	h := login.Routes(login.NewHandler(e.Svc, auth.NewIssuer("s", time.Hour), nil, e.ErrLog, e.Log))
	e.User("olga", models.RoleOfficial)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"wrong password", map[string]string{"email": "olga@example.org", "password": "nope-nope-nope"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "ghost@example.org", "password": featuretest.Password}, http.StatusUnauthorized},
		{"malformed body", []string{"olga"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/", tt.body), auth.Actor{})
			rec.AssertStatus(t, tt.status)
			assert.NotContains(t, rec.Body.String(), "token")
		})
	}
}

func TestHandleLogin_Throttled(t *testing.T) {
	e := featuretest.New(t)
	limiter := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer limiter.Stop()
	h := login.Routes(login.NewHandler(e.Svc, auth.NewIssuer("s", time.Hour), limiter, e.ErrLog, e.Log))
	e.User("olga", models.RoleOfficial)

	attempt := func(password string) *testutil.ResponseRecorder {
		return featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/", map[string]string{
			"email": "olga@example.org", "password": password,
		}), auth.Actor{})
	}

	attempt("wrong-password-1").AssertStatus(t, http.StatusUnauthorized)
	attempt("wrong-password-2").AssertStatus(t, http.StatusUnauthorized)

	rec := attempt(featuretest.Password)
	rec.AssertStatus(t, http.StatusTooManyRequests)
	rec.AssertContains(t, ratelimit.TooManyForAccount)
}

func TestHandleLogin_SuccessResetsAccountLimit(t *testing.T) {
	e := featuretest.New(t)
	limiter := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer limiter.Stop()
	h := login.Routes(login.NewHandler(e.Svc, auth.NewIssuer("s", time.Hour), limiter, e.ErrLog, e.Log))
	e.User("olga", models.RoleOfficial)

	attempt := func(password string) *testutil.ResponseRecorder {
		return featuretest.Serve(h, testutil.NewJSONRequest(t, "POST", "/", map[string]string{
			"email": "olga@example.org", "password": password,
		}), auth.Actor{})
	}

	attempt("wrong-password-1").AssertStatus(t, http.StatusUnauthorized)
	attempt(featuretest.Password).AssertStatus(t, http.StatusOK)
	attempt("wrong-password-2").AssertStatus(t, http.StatusUnauthorized)
	attempt(featuretest.Password).AssertStatus(t, http.StatusOK)
}
