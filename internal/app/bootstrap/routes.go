// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	feedbackfeature "github.com/dalemusser/feedbackhub/internal/app/features/feedback"
	healthfeature "github.com/dalemusser/feedbackhub/internal/app/features/health"
	votesfeature "github.com/dalemusser/feedbackhub/internal/app/features/votes"
	auditstore "github.com/dalemusser/feedbackhub/internal/app/store/audit"
	"github.com/dalemusser/feedbackhub/internal/app/system/auditlog"
	"github.com/dalemusser/feedbackhub/internal/app/system/httpjson"
	"github.com/dalemusser/feedbackhub/internal/app/system/ratelimit"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// This function should:
//  1. Create a router (chi, standard mux, etc.)
//  2. Mount feature routers for different parts of your application
//  3. Add any additional middleware needed for specific routes
//  4. Return the configured router as an http.Handler
//
// FeedbackHub mounts a JSON API: feedback intake, duplicate scanning, and
// merging under /api/feedback, weighted voting under /api/votes, and a
// health check at /health for load balancers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.FeedbackHubMongoDatabase

	// Shared handler dependencies. The audit logger carries per-category
	// modes from config; the scan limiter guards the duplicate-detection
	// endpoint, which does a linear scan of active feedback.
	errLog := httpjson.NewErrorLogger(logger)
	auditLogger := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Votes:    appCfg.AuditLogVotes,
		Merges:   appCfg.AuditLogMerges,
		Feedback: appCfg.AuditLogFeedback,
	})
	limiter := ratelimit.NewScanLimiterWithConfig(
		appCfg.ScanRateLimitIP, time.Minute,
		appCfg.ScanRateLimitActor, time.Minute,
	)
	clock := clockwork.NewRealClock()

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.FeedbackHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		feedbackHandler := feedbackfeature.NewHandler(db, logger, errLog, auditLogger, limiter, clock)
		api.Mount("/feedback", feedbackfeature.Routes(feedbackHandler))

		votesHandler := votesfeature.NewHandler(db, logger, errLog, auditLogger, clock)
		api.Mount("/votes", votesfeature.Routes(votesHandler))
	})

	return r, nil
}
