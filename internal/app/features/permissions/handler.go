// internal/app/features/permissions/handler.go
package permissions

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/services/access"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"go.uber.org/zap"
)

type Handler struct {
	Log     *zap.Logger
	Audit   *auditlog.Logger
	Metrics *metrics.Recorder
}

func NewHandler(audit *auditlog.Logger, rec *metrics.Recorder, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Audit: audit, Metrics: rec}
}

func (h *Handler) service(w http.ResponseWriter, r *http.Request) (*access.Service, bool) {
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return nil, false
	}
	return access.New(db, h.Log, h.Audit, h.Metrics), true
}
