// internal/app/features/login/login.go
package login

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	loginstore "github.com/dalemusser/accesshub/internal/app/store/logins"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/ratelimit"
	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/app/system/tenant"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.uber.org/zap"
)

// The login is what the user types (email or userName); user_id is the
// ObjectID of the user document.
type loginBody struct {
	Email    string `json:"email"`
	UserName string `json:"userName"`
	Password string `json:"password"`
}

func (b loginBody) login() string {
	if s := strings.TrimSpace(b.Email); s != "" {
		return s
	}
	return strings.TrimSpace(b.UserName)
}

// Session is the payload of a successful login.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// HandleLogin serves POST /users/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	done := h.Metrics.Start("user.login")
	done(h.login(w, r))
}

// login writes the response and reports its outcome.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) result.Kind {
	var body loginBody
	if !shared.Decode(w, r, &body) {
		return result.KindValidation
	}
	id := body.login()
	if id == "" || body.Password == "" {
		respond.BadRequest(w, "the email or userName and the password are required")
		return result.KindValidation
	}

	ip := ratelimit.ClientIP(r)
	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, id); !ok {
			h.Audit.LoginFailed(r.Context(), id, ip, "rate_limited")
			ratelimit.TooMany(w, time.Minute, reason)
			return result.KindValidation
		}
	}

	db, ok := shared.TenantDB(w, r)
	if !ok {
		return result.KindValidation
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()
	audit := h.Audit.ForTenant(db)

	users := userstore.New(db)
	u, err := users.Authenticate(ctx, id, body.Password)
	if errors.Is(err, userstore.ErrBadPassword) {
		audit.LoginFailed(ctx, id, ip, "bad_credentials")
		respond.Unauthorized(w, "the login or password is incorrect")
		return result.KindValidation
	}
	if err != nil {
		h.Log.Error("authenticate failed", zap.Error(err))
		respond.Result(w, result.Internal[any](err))
		return result.KindInternal
	}
	if h.Limiter != nil {
		h.Limiter.Succeeded(id)
	}

	if err := users.TouchLastLogin(ctx, u.ID); err != nil {
		h.Log.Warn("stamp last login failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}
	if err := loginstore.New(db).CreateFrom(ctx, r, u, loginstore.ProviderPassword); err != nil {
		h.Log.Warn("record login failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}

	su := auth.SessionUser{
		ID:     u.ID.Hex(),
		Name:   strings.TrimSpace(u.FirstName + " " + u.LastName),
		Email:  u.Email,
		Tenant: tenant.FromRequest(r).Key,
	}
	var token string
	if h.Tokens != nil {
		if token, err = h.Tokens.Issue(su); err != nil {
			h.Log.Error("issue token failed", zap.Error(err))
			respond.Result(w, result.Internal[any](err))
			return result.KindInternal
		}
	}
	if h.Sessions != nil {
		if err := h.Sessions.Save(w, r, su); err != nil {
			h.Log.Warn("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		}
	}

	audit.LoginSucceeded(ctx, u.ID, ip)
	respond.Result(w, result.OK("login successful", Session{Token: token, User: u}))
	return result.KindOK
}
