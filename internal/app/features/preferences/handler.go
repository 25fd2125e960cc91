// internal/app/features/preferences/handler.go
package preferences

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/services/preferences"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"go.uber.org/zap"
)

type Handler struct {
	Log     *zap.Logger
	Metrics *metrics.Recorder
}

func NewHandler(rec *metrics.Recorder, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Metrics: rec}
}

func (h *Handler) service(w http.ResponseWriter, r *http.Request) (*preferences.Service, bool) {
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return nil, false
	}
	return preferences.New(db, h.Log, h.Metrics), true
}
