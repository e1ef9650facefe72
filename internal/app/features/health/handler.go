package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/cityseva/internal/app/sqlstore"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler holds dependencies needed for health checks. Either store may
// be nil when it is not configured.
type Handler struct {
	Mongo   *mongo.Client
	SQL     *gorm.DB
	Backend string
	Log     *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(client *mongo.Client, sqlDB *gorm.DB, backendName string, logger *zap.Logger) *Handler {
	return &Handler{
		Mongo:   client,
		SQL:     sqlDB,
		Backend: backendName,
		Log:     logger,
	}
}

const (
	connected     = "connected"
	disconnected  = "disconnected"
	notConfigured = "not_configured"
)

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Mongo    string `json:"mongo"`
	Postgres string `json:"postgres"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "backend":"document", "mongo":"connected", "postgres":"connected" }
//
// When a configured store does not answer: 503 with "status":"error".
// Causes are logged, not returned.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Backend:  h.Backend,
		Mongo:    notConfigured,
		Postgres: notConfigured,
	}

	if h.Mongo != nil {
		resp.Mongo = connected
		if err := h.Mongo.Ping(ctx, readpref.Primary()); err != nil {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			resp.Mongo = disconnected
		}
	}
	if h.SQL != nil {
		resp.Postgres = connected
		if err := sqlstore.Ping(ctx, h.SQL); err != nil {
			h.Log.Error("health-check: postgres ping failed", zap.Error(err))
			resp.Postgres = disconnected
		}
	}

	if resp.Mongo == disconnected || resp.Postgres == disconnected {
		resp.Status = "error"
		resp.Message = "Database unavailable"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
