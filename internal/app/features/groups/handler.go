// internal/app/features/groups/handler.go
package groups

import (
	"github.com/dalemusser/accesshub/internal/app/features/members"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Handler is the dependency container for the groups feature. Stores and
// services are bound to the tenant database of each request.
type Handler struct {
	// SuperAdminPermissions are granted to the SUPER_ADMIN role of every
	// new group.
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
		Members:               members.NewHandler(userstore.GroupScope, "grp_id", audit, rec, logger),
	}
}
