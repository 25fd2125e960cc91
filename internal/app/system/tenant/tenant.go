// Package tenant resolves the tenant of a request and hands out the
// tenant's database. Every tenant lives in its own MongoDB database named
// "<base>_<tenant>", so no query can cross tenants.
package tenant

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrInvalidKey is returned for keys that cannot name a database.
	ErrInvalidKey = errors.New("invalid tenant key")
	// ErrUnknownTenant is returned for well-formed keys that are not served.
	ErrUnknownTenant = errors.New("unknown tenant")
)

const maxKeyLen = 32

// Registry serves a fixed set of tenants and memoizes one *mongo.Database
// handle per tenant key.
type Registry struct {
	client        *mongo.Client
	base          string
	defaultTenant string
	keys          []string
	allowed       map[string]bool

	mu  sync.Mutex
	dbs map[string]*mongo.Database
}

// NewRegistry builds a registry over client. base is the configured
// database prefix, defaultTenant is used when a request names none and
// tenants lists the other tenants served. Any other key is rejected.
func NewRegistry(client *mongo.Client, base, defaultTenant string, tenants []string) *Registry {
	r := &Registry{
		client:        client,
		base:          base,
		defaultTenant: normalize.Tenant(defaultTenant),
		allowed:       make(map[string]bool),
		dbs:           make(map[string]*mongo.Database),
	}
	for _, t := range append([]string{defaultTenant}, tenants...) {
		k := normalize.Tenant(t)
		if k == "" || r.allowed[k] {
			continue
		}
		r.allowed[k] = true
		r.keys = append(r.keys, k)
	}
	return r
}

// Default returns the default tenant key.
func (r *Registry) Default() string { return r.defaultTenant }

// Keys returns the served tenant keys, default first.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Resolve normalizes key (falling back to the default tenant) and checks
// that it is served.
func (r *Registry) Resolve(key string) (string, error) {
	k := normalize.Tenant(key)
	if k == "" {
		k = r.defaultTenant
	}
	if !ValidKey(k) {
		return "", ErrInvalidKey
	}
	if !r.allowed[k] {
		return "", ErrUnknownTenant
	}
	return k, nil
}

// DatabaseName returns the database backing a normalized tenant key.
func (r *Registry) DatabaseName(key string) string {
	return r.base + "_" + key
}

// DB returns the database for key, caching the handle on first use.
func (r *Registry) DB(key string) (*mongo.Database, error) {
	k, err := r.Resolve(key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	db, ok := r.dbs[k]
	if !ok {
		db = r.client.Database(r.DatabaseName(k))
		r.dbs[k] = db
	}
	return db, nil
}

// ValidKey reports whether k is a lower-case key of letters, digits, '_'
// or '-'.
func ValidKey(k string) bool {
	if k == "" || len(k) > maxKeyLen {
		return false
	}
	for i := 0; i < len(k); i++ {
		c := k[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request scoping                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey struct{}

// Info is the tenant bound to the current request.
type Info struct {
	Key string
	DB  *mongo.Database
}

// Middleware reads ?tenant= and stores the tenant Info in the request
// context. A key that is malformed or not served is rejected with a 400
// envelope before any database handle is created.
func Middleware(reg *Registry, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.URL.Query().Get("tenant")
			key, err := reg.Resolve(raw)
			if err != nil {
				logger.Debug("rejecting request tenant", zap.String("tenant", raw), zap.Error(err))
				respond.BadRequest(w, "the tenant value is not among the expected ones")
				return
			}
			db, err := reg.DB(key)
			if err != nil {
				respond.BadRequest(w, "the tenant value is not among the expected ones")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), &Info{Key: key, DB: db})))
		})
	}
}

// WithInfo stores info in ctx.
func WithInfo(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the tenant Info, or nil outside the middleware.
func FromContext(ctx context.Context) *Info {
	if info, ok := ctx.Value(ctxKey{}).(*Info); ok {
		return info
	}
	return nil
}

// FromRequest is FromContext(r.Context()).
func FromRequest(r *http.Request) *Info {
	return FromContext(r.Context())
}
