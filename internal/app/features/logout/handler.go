// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/app/system/tenant"
	"go.uber.org/zap"
)

type Handler struct {
	Log      *zap.Logger
	Audit    *auditlog.Logger
	Sessions *auth.SessionManager
}

func NewHandler(sessions *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		Audit:    audit,
		Sessions: sessions,
	}
}

// HandleLogout serves POST /users/logout. It expires the session cookie;
// bearer tokens stay valid until they expire.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if h.Sessions != nil {
		if err := h.Sessions.Clear(w, r); err != nil {
			h.Log.Error("logout: clear session", zap.Error(err))
			respond.Result(w, result.Internal[any](err))
			return
		}
	}
	if _, ok := auth.CurrentUser(r); ok {
		audit := h.Audit
		if info := tenant.FromRequest(r); info != nil {
			audit = audit.ForTenant(info.DB)
		}
		audit.LoggedOut(r.Context())
	}
	respond.Result(w, result.Done[any]("logout successful"))
}
