package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client  *mongo.Client
	Tenants []string
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. tenants are reported as-is.
func NewHandler(client *mongo.Client, tenants []string, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		Tenants: tenants,
		Log:     logger,
	}
}

type healthResponse struct {
	Status   string   `json:"status"`
	Database string   `json:"database"`
	Tenants  []string `json:"tenants,omitempty"`
	Message  string   `json:"message,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "tenants":["airqo"] }
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		respond.JSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:   "error",
			Database: "disconnected",
			Message:  "Database unavailable",
			Error:    err.Error(),
		})
		return
	}
	respond.JSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Database: "connected",
		Tenants:  h.Tenants,
	})
}
