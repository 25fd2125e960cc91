// internal/app/features/networks/handler.go
package networks

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/members"
	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/services/membership"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Handler is the dependency container for the networks feature.
type Handler struct {
	SuperAdminPermissions []string

	Log     *zap.Logger
	Audit   *auditlog.Logger
	Metrics *metrics.Recorder
	Members *members.Handler
}

func NewHandler(permissions []string, audit *auditlog.Logger, rec *metrics.Recorder, logger *zap.Logger) *Handler {
	return &Handler{
		SuperAdminPermissions: permissions,
		Log:                   logger,
		Audit:                 audit,
		Metrics:               rec,
		Members:               members.NewHandler(userstore.NetworkScope, "net_id", audit, rec, logger),
	}
}

func (h *Handler) membership(w http.ResponseWriter, r *http.Request) (*membership.Service, bool) {
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return nil, false
	}
	return membership.New(db, h.Log, h.Audit, h.Metrics), true
}
