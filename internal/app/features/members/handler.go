// internal/app/features/members/handler.go
package members

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/services/membership"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Handler serves the membership endpoints of one scope. Groups and
// networks each mount their own Handler under their id parameter.
type Handler struct {
	Scope   userstore.Scope
	Param   string // chi parameter carrying the group or network id
	Log     *zap.Logger
	Audit   *auditlog.Logger
	Metrics *metrics.Recorder
}

func NewHandler(sc userstore.Scope, param string, audit *auditlog.Logger, rec *metrics.Recorder, logger *zap.Logger) *Handler {
	return &Handler{
		Scope:   sc,
		Param:   param,
		Log:     logger,
		Audit:   audit,
		Metrics: rec,
	}
}

// service binds the membership workflow to the request's tenant.
func (h *Handler) service(w http.ResponseWriter, r *http.Request) (*membership.Service, bool) {
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return nil, false
	}
	return membership.New(db, h.Log, h.Audit, h.Metrics), true
}
