// internal/testutil/http.go
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminActor returns an admin actor with a fresh ID.
func AdminActor() auth.Actor {
	return auth.Actor{ID: primitive.NewObjectID().Hex(), Role: models.RoleAdmin}
}

// OfficialActor returns an official actor with a fresh ID.
func OfficialActor() auth.Actor {
	return auth.Actor{ID: primitive.NewObjectID().Hex(), Role: models.RoleOfficial}
}

// CitizenActor returns a citizen actor with a fresh ID.
func CitizenActor() auth.Actor {
	return auth.Actor{ID: primitive.NewObjectID().Hex(), Role: models.RoleCitizen}
}

// ActorFor returns the actor for a stored user.
func ActorFor(u models.User) auth.Actor {
	return auth.Actor{ID: u.ID.Hex(), Role: u.Role}
}

// WithActor adds an actor to the request context for testing authenticated handlers.
// This bypasses the bearer-token middleware and injects the actor directly.
func WithActor(r *http.Request, a auth.Actor) *http.Request {
	return r.WithContext(auth.WithActor(r.Context(), a))
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates an HTTP request with an actor in context.
func NewAuthenticatedRequest(method, target string, a auth.Actor) *http.Request {
	return WithActor(httptest.NewRequest(method, target, nil), a)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", r.Body.String(), err)
	}
}
