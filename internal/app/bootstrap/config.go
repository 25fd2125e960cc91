// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/tenant"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// defaultSuperAdminPermissions are granted to the SUPER_ADMIN role of
// every new group or network unless super_admin_permissions overrides them.
const defaultSuperAdminPermissions = "CREATE_UPDATE_AND_DELETE_NETWORK_USERS,CREATE_UPDATE_AND_DELETE_GROUP_USERS," +
	"CREATE_UPDATE_AND_DELETE_NETWORK_ROLES,CREATE_UPDATE_AND_DELETE_GROUP_ROLES,VIEW_AIR_QUALITY_FOR_NETWORK," +
	"VIEW_AIR_QUALITY_FOR_GROUP,CREATE_UPDATE_AND_DELETE_NETWORK_DEVICES,CREATE_UPDATE_AND_DELETE_GROUP_SITES"

// appConfigKeys defines the configuration keys for accesshub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: ACCESSHUB_MONGO_URI, ACCESSHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "accesshub", Desc: "Base database name (tenants use <base>_<tenant>)"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Tenancy
	{Name: "default_tenant", Default: "airqo", Desc: "Tenant used when a request has no ?tenant="},
	{Name: "tenants", Default: "", Desc: "Comma-separated tenants served besides the default; any other ?tenant= is rejected"},
	{Name: "super_admin_permissions", Default: defaultSuperAdminPermissions, Desc: "Comma-separated permissions of every new SUPER_ADMIN role"},

	// Sessions and tokens
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "accesshub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (e.g., 24h, 30m)"},
	{Name: "jwt_secret", Default: "", Desc: "HS256 secret for bearer tokens"},
	{Name: "token_ttl", Default: "24h", Desc: "Bearer token lifetime"},

	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated CORS origins ('*' allows all)"},
	{Name: "audit_log", Default: auditlog.ModeAll, Desc: "Audit event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "require_auth", Default: true, Desc: "Require a session or bearer token on every route except login and health"},

	// Rate limiting
	{Name: "rate_limit_rps", Default: 20, Desc: "Per-IP requests per second across the API (0 disables)"},
	{Name: "rate_limit_burst", Default: 40, Desc: "Per-IP burst size"},

	// Background maintenance
	{Name: "orphan_sweep_interval", Default: "1h", Desc: "How often orphaned memberships are pulled (0 disables)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ACCESSHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
//
// Database timeouts are read separately from ACCESSHUB_TIMEOUT_*.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ACCESSHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		DefaultTenant:         normalize.Tenant(appValues.String("default_tenant")),
		Tenants:               tenantList(appValues.String("tenants")),
		SuperAdminPermissions: normalize.SplitList(appValues.String("super_admin_permissions")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),
		JWTSecret:     appValues.String("jwt_secret"),
		TokenTTL:      appValues.Duration("token_ttl", 24*time.Hour),

		CORSAllowedOrigins: normalize.SplitList(appValues.String("cors_allowed_origins")),
		AuditLog:           strings.ToLower(strings.TrimSpace(appValues.String("audit_log"))),
		RequireAuth:        appValues.Bool("require_auth"),

		RateLimitRPS:   float64(appValues.Int("rate_limit_rps")),
		RateLimitBurst: appValues.Int("rate_limit_burst"),

		OrphanSweepInterval: appValues.Duration("orphan_sweep_interval", time.Hour),
	}

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("database timeouts overridden", zap.Int("values", n))
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked here to catch configuration errors before
// attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return errors.New("mongo_database is required")
	}
	if !tenant.ValidKey(appCfg.DefaultTenant) {
		return fmt.Errorf("default_tenant %q is not a valid tenant key", appCfg.DefaultTenant)
	}
	for _, t := range appCfg.Tenants {
		if !tenant.ValidKey(t) {
			return fmt.Errorf("tenant %q is not a valid tenant key", t)
		}
	}
	if appCfg.RequireAuth && appCfg.JWTSecret == "" {
		return errors.New("jwt_secret is required when require_auth is on")
	}
	switch appCfg.AuditLog {
	case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
	default:
		return fmt.Errorf("audit_log must be all, db, log or off, got %q", appCfg.AuditLog)
	}
	if appCfg.RateLimitRPS < 0 || appCfg.RateLimitBurst < 0 {
		return errors.New("rate_limit_rps and rate_limit_burst must not be negative")
	}
	if appCfg.RateLimitRPS > 0 && appCfg.RateLimitBurst == 0 {
		return errors.New("rate_limit_burst must be positive when rate_limit_rps is set")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		logger.Warn("session_key still has its development default")
	}
	return nil
}

func tenantList(s string) []string {
	keys := normalize.SplitList(s)
	for i, k := range keys {
		keys[i] = normalize.Tenant(k)
	}
	return keys
}
