// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where you put everything specific to YOUR application:
//   - Database connection strings (MongoDB URI, Postgres DSN, etc.)
//   - External service API keys and endpoints
//   - Feature flags and application modes
//   - Business logic configuration
//   - Default values for your domain
//
// Add fields here as your application grows. The struct is passed to
// most lifecycle hooks, so any configuration needed during startup,
// request handling, or shutdown should live here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in the driver pool
	MongoMinPoolSize uint64 // Minimum idle connections kept in the pool

	// Audit logging configuration. Each category accepts "all" (database
	// and log), "db" (database only), "log" (log only), or "off".
	AuditLogVotes    string // Vote cast/rejection events
	AuditLogMerges   string // Merge success/rejection events
	AuditLogFeedback string // Feedback creation events

	// Duplicate-scan rate limiting (requests per minute)
	ScanRateLimitIP    int // Per-IP scan budget
	ScanRateLimitActor int // Per-actor scan budget (authenticated callers)
}
