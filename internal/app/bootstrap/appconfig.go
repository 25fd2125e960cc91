// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, body limits); AppConfig
// carries what accesshub itself needs. It is passed to every lifecycle
// hook and from there into the feature handlers.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Base database name; each tenant uses <base>_<tenant>
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Tenancy
	DefaultTenant string   // Tenant used when a request carries no ?tenant=
	Tenants       []string // Tenants whose indexes are ensured at startup

	// Permission names granted to the SUPER_ADMIN role of every new group or network
	SuperAdminPermissions []string

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: accesshub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Bearer tokens
	JWTSecret string        // HS256 signing secret
	TokenTTL  time.Duration // Lifetime of issued tokens

	CORSAllowedOrigins []string // Origins allowed by the CORS middleware ("*" allows all)
	AuditLog           string   // Audit event sink: all, db, log or off
	RequireAuth        bool     // Guard every non-login route with the authenticator

	// API-wide per-IP rate limit (0 disables)
	RateLimitRPS   float64
	RateLimitBurst int

	// How often orphaned membership entries are pulled (0 disables)
	OrphanSweepInterval time.Duration
}
