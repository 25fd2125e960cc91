// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	auditlogfeature "github.com/dalemusser/accesshub/internal/app/features/auditlog"
	errorsfeature "github.com/dalemusser/accesshub/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/accesshub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/accesshub/internal/app/features/health"
	loginfeature "github.com/dalemusser/accesshub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/accesshub/internal/app/features/logout"
	networksfeature "github.com/dalemusser/accesshub/internal/app/features/networks"
	permissionsfeature "github.com/dalemusser/accesshub/internal/app/features/permissions"
	preferencesfeature "github.com/dalemusser/accesshub/internal/app/features/preferences"
	registriesfeature "github.com/dalemusser/accesshub/internal/app/features/registries"
	requestsfeature "github.com/dalemusser/accesshub/internal/app/features/requests"
	rolesfeature "github.com/dalemusser/accesshub/internal/app/features/roles"
	usersfeature "github.com/dalemusser/accesshub/internal/app/features/users"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/ratelimit"
	"github.com/dalemusser/accesshub/internal/app/system/requestid"
	"github.com/dalemusser/accesshub/internal/app/system/tenant"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// APIPrefix is where every accesshub endpoint lives.
const APIPrefix = "/api/v2/users"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: the MongoDB client, tenant registry and shared recorders
//   - logger: the fully configured zap.Logger for this app
//
// accesshub serves JSON only. The router applies, in order: panic
// recovery, request ids, CORS, request metrics, the optional per-IP rate
// limit and caller loading. Everything under APIPrefix is bound to the
// tenant named by ?tenant=. Login, logout, health and metrics stay open;
// the rest requires a caller when require_auth is on.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Bearer tokens are optional when auth is not required.
	var tokens *auth.Tokens
	if appCfg.JWTSecret != "" {
		tokens, err = auth.NewTokens(appCfg.JWTSecret, appCfg.TokenTTL)
		if err != nil {
			logger.Error("token issuer init failed", zap.Error(err))
			return nil, err
		}
	}
	authn := &auth.Authenticator{Sessions: sessionMgr, Tokens: tokens, Log: logger}

	bg := deps.Background
	if bg == nil {
		bg = &Background{}
	}
	bg.LoginLimiter = ratelimit.NewLoginLimiter()

	audit := deps.Audit
	rec := deps.Metrics

	r := chi.NewRouter()
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestid.Header},
		ExposedHeaders:   []string{requestid.Header, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(rec.Middleware)
	if appCfg.RateLimitRPS > 0 {
		bg.APILimiter = ratelimit.New(appCfg.RateLimitRPS, appCfg.RateLimitBurst, 10*time.Minute)
		r.Use(ratelimit.Middleware(bg.APILimiter))
	}
	r.Use(authn.LoadUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Tenants.Keys(), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route(APIPrefix, func(api chi.Router) {
		api.Use(tenant.Middleware(deps.Tenants, logger))

		// Open endpoints
		api.Mount("/health", healthfeature.Routes(healthHandler))
		api.Handle("/metrics", rec.Handler())

		loginHandler := loginfeature.NewHandler(sessionMgr, tokens, bg.LoginLimiter, audit, rec, logger)
		api.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, logger)
		api.Mount("/logout", logoutfeature.Routes(logoutHandler))

		// Everything else
		api.Group(func(pr chi.Router) {
			if appCfg.RequireAuth {
				pr.Use(auth.RequireUser)
			}

			groupsHandler := groupsfeature.NewHandler(appCfg.SuperAdminPermissions, audit, rec, logger)
			pr.Mount("/groups", groupsfeature.Routes(groupsHandler))

			networksHandler := networksfeature.NewHandler(appCfg.SuperAdminPermissions, audit, rec, logger)
			pr.Mount("/networks", networksfeature.Routes(networksHandler))

			rolesHandler := rolesfeature.NewHandler(audit, rec, logger)
			pr.Mount("/roles", rolesfeature.Routes(rolesHandler))

			permissionsHandler := permissionsfeature.NewHandler(audit, rec, logger)
			pr.Mount("/permissions", permissionsfeature.Routes(permissionsHandler))

			preferencesHandler := preferencesfeature.NewHandler(rec, logger)
			pr.Mount("/preferences", preferencesfeature.Routes(preferencesHandler))

			pr.Mount("/locations", registriesfeature.Routes(registriesfeature.Locations(rec, logger)))
			pr.Mount("/hosts", registriesfeature.Routes(registriesfeature.Hosts(rec, logger)))
			pr.Mount("/unknown-ips", registriesfeature.Routes(registriesfeature.UnknownIPs(rec, logger)))

			requestsHandler := requestsfeature.NewHandler(audit, rec, logger)
			pr.Mount("/requests", requestsfeature.Routes(requestsHandler))

			auditHandler := auditlogfeature.NewHandler(logger)
			pr.Mount("/audit", auditlogfeature.Routes(auditHandler))

			// User CRUD shares the API root, so it is registered in place.
			usersHandler := usersfeature.NewHandler(rec, logger)
			usersHandler.Mount(pr)
		})
	})

	logger.Info("routes built",
		zap.String("prefix", APIPrefix),
		zap.Bool("require_auth", appCfg.RequireAuth),
		zap.Float64("rate_limit_rps", appCfg.RateLimitRPS),
	)
	return r, nil
}
