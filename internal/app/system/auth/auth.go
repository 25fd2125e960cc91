// Package auth identifies the caller of a request. A caller is recognised
// either by an HS256 bearer token or by a signed session cookie; both
// resolve to the same SessionUser carried in the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/tenant"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
	userName  = "user_name"
	userEmail = "user_email"
	tenantKey = "tenant"
)

// SessionUser is the authenticated caller. ID is the hex ObjectID of the
// user document in Tenant, the tenant the caller logged in to.
type SessionUser struct {
	ID     string
	Name   string
	Email  string
	Tenant string
}

type ctxKey struct{}

// WithUser stores u in ctx.
func WithUser(ctx context.Context, u *SessionUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the caller, if any.
func FromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(ctxKey{}).(*SessionUser)
	return u, ok && u != nil
}

// CurrentUser returns the caller of r, if any.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	return FromContext(r.Context())
}

/*─────────────────────────────────────────────────────────────────────────────*
| Sessions                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager wraps a gorilla cookie store.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds the cookie store. In production (secure=true)
// cookies are Secure with SameSite=None; otherwise SameSite=Lax.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// Save writes u into the session cookie.
func (m *SessionManager) Save(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[userEmail] = u.Email
	sess.Values[tenantKey] = u.Tenant
	return sess.Save(r, w)
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func (m *SessionManager) load(r *http.Request) (*SessionUser, bool) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		// A cookie signed with a rotated key fails to decode; treat it as absent.
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			m.log.Debug("ignoring undecodable session cookie", zap.Error(err))
		} else {
			m.log.Warn("session cookie read failed", zap.Error(err))
		}
		return nil, false
	}
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return nil, false
	}
	u := &SessionUser{
		ID:     getString(sess, userIDKey),
		Name:   getString(sess, userName),
		Email:  getString(sess, userEmail),
		Tenant: getString(sess, tenantKey),
	}
	return u, u.ID != ""
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| Bearer tokens                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// ErrNoSecret is returned when tokens are requested without a secret.
var ErrNoSecret = errors.New("jwt secret is required")

// Tokens issues and validates HS256 tokens whose subject is the user id.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens builds a token issuer. ttl <= 0 means 24h.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl}, nil
}

type claims struct {
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Tenant string `json:"tenant"`
	jwt.RegisteredClaims
}

// Issue signs a token for u.
func (t *Tokens) Issue(u SessionUser) (string, error) {
	now := time.Now()
	c := claims{
		Email:  u.Email,
		Name:   u.Name,
		Tenant: u.Tenant,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

// Validate verifies tokenString and returns its user.
func (t *Tokens) Validate(tokenString string) (*SessionUser, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	if c.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &SessionUser{ID: c.Subject, Name: c.Name, Email: c.Email, Tenant: c.Tenant}, nil
}

// bearer extracts the token from "Authorization: Bearer <t>" or the older
// "Authorization: JWT <t>" form.
func bearer(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	for _, prefix := range []string{"Bearer ", "JWT "} {
		if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
			return strings.TrimSpace(h[len(prefix):])
		}
	}
	return ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// Authenticator resolves the caller from a bearer token or a session.
// Either source may be nil.
type Authenticator struct {
	Sessions *SessionManager
	Tokens   *Tokens
	Log      *zap.Logger
}

// LoadUser injects the caller into the context when one is present. It
// never rejects a request.
func (a *Authenticator) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := bearer(r); tok != "" && a.Tokens != nil {
			u, err := a.Tokens.Validate(tok)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
				return
			}
			a.Log.Debug("bearer token rejected", zap.Error(err))
		}
		if a.Sessions != nil {
			if u, ok := a.Sessions.load(r); ok {
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests without a caller with a 401 envelope. When
// the request is bound to a tenant, a caller who logged in to another
// tenant is rejected with a 403 envelope.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			respond.Unauthorized(w, "provide a valid bearer token or session")
			return
		}
		if info := tenant.FromRequest(r); info != nil && info.Key != u.Tenant {
			respond.Forbidden(w, "the caller does not belong to this tenant")
			return
		}
		next.ServeHTTP(w, r)
	})
}
