package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/cityseva/internal/app/features/health"
	"github.com/dalemusser/cityseva/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type response struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Mongo    string `json:"mongo"`
	Postgres string `json:"postgres"`
}

func serve(t *testing.T, h *health.Handler) (int, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec.Code, resp
}

func TestServe_MongoConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	code, resp := serve(t, health.NewHandler(db.Client(), nil, "document", zap.NewNop()))

	if code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, code)
	}
	if resp.Status != "ok" || resp.Mongo != "connected" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Postgres != "not_configured" {
		t.Errorf("postgres: got %q, want not_configured", resp.Postgres)
	}
	if resp.Backend != "document" {
		t.Errorf("backend: got %q, want document", resp.Backend)
	}
}

func TestServe_BothConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sqlDB := testutil.SetupTestSQL(t)
	code, resp := serve(t, health.NewHandler(db.Client(), sqlDB, "sql", zap.NewNop()))

	if code != http.StatusOK || resp.Postgres != "connected" || resp.Mongo != "connected" {
		t.Errorf("unexpected response %d %+v", code, resp)
	}
}

func TestServe_MongoDown(t *testing.T) {
	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Disconnect(context.Background())

	code, resp := serve(t, health.NewHandler(client, nil, "document", zap.NewNop()))
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, code)
	}
	if resp.Status != "error" || resp.Mongo != "disconnected" {
		t.Errorf("unexpected response: %+v", resp)
	}
}
