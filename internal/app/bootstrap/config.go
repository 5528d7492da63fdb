// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for FeedbackHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, audit_log_votes, etc.
//   - Environment variables: FEEDBACKHUB_MONGO_URI, FEEDBACKHUB_AUDIT_LOG_VOTES, etc.
//   - Command-line flags: --mongo_uri, --audit_log_votes, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "feedback_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Audit logging settings
	{Name: "audit_log_votes", Default: "all", Desc: "Vote event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_merges", Default: "all", Desc: "Merge event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_feedback", Default: "all", Desc: "Feedback event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Duplicate-scan rate limiting
	{Name: "scan_rate_limit_ip", Default: 30, Desc: "Duplicate scans allowed per IP per minute"},
	{Name: "scan_rate_limit_actor", Default: 10, Desc: "Duplicate scans allowed per authenticated actor per minute"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, FEEDBACKHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FEEDBACKHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Audit logging
		AuditLogVotes:    appValues.String("audit_log_votes"),
		AuditLogMerges:   appValues.String("audit_log_merges"),
		AuditLogFeedback: appValues.String("audit_log_feedback"),

		// Duplicate-scan rate limiting
		ScanRateLimitIP:    appValues.Int("scan_rate_limit_ip"),
		ScanRateLimitActor: appValues.Int("scan_rate_limit_actor"),
	}

	return coreCfg, appCfg, nil
}

// validAuditMode reports whether s is an accepted audit logging mode.
func validAuditMode(s string) bool {
	switch s {
	case "all", "db", "log", "off":
		return true
	}
	return false
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// FeedbackHub validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	for name, mode := range map[string]string{
		"audit_log_votes":    appCfg.AuditLogVotes,
		"audit_log_merges":   appCfg.AuditLogMerges,
		"audit_log_feedback": appCfg.AuditLogFeedback,
	} {
		if !validAuditMode(mode) {
			return fmt.Errorf("%s must be 'all', 'db', 'log', or 'off' (got %q)", name, mode)
		}
	}

	if appCfg.ScanRateLimitIP < 1 || appCfg.ScanRateLimitActor < 1 {
		return fmt.Errorf("scan rate limits must be at least 1 per minute")
	}

	return nil
}
