// internal/app/features/login/handler.go
package login

import (
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"github.com/dalemusser/accesshub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler signs users in with a password. A successful login answers
// with a bearer token and also sets the session cookie.
type Handler struct {
	Sessions *auth.SessionManager
	Tokens   *auth.Tokens
	Limiter  *ratelimit.LoginLimiter

	Log     *zap.Logger
	Audit   *auditlog.Logger
	Metrics *metrics.Recorder
}

func NewHandler(sessions *auth.SessionManager, tokens *auth.Tokens, limiter *ratelimit.LoginLimiter,
	audit *auditlog.Logger, rec *metrics.Recorder, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: sessions,
		Tokens:   tokens,
		Limiter:  limiter,
		Log:      logger,
		Audit:    audit,
		Metrics:  rec,
	}
}
