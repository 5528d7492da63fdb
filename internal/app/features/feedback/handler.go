// internal/app/features/feedback/handler.go
package feedback

import (
	"github.com/dalemusser/feedbackhub/internal/app/system/auditlog"
	"github.com/dalemusser/feedbackhub/internal/app/system/httpjson"
	"github.com/dalemusser/feedbackhub/internal/app/system/ratelimit"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for feedback items.
type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	ErrLog  *httpjson.ErrorLogger
	Audit   *auditlog.Logger
	Limiter *ratelimit.ScanLimiter
	Clock   clockwork.Clock
}

// NewHandler constructs a feedback Handler bound to a DB, logger, audit
// logger, and the duplicate-scan rate limiter.
func NewHandler(db *mongo.Database, logger *zap.Logger, errLog *httpjson.ErrorLogger, audit *auditlog.Logger, limiter *ratelimit.ScanLimiter, clock clockwork.Clock) *Handler {
	return &Handler{
		DB:      db,
		Log:     logger,
		ErrLog:  errLog,
		Audit:   audit,
		Limiter: limiter,
		Clock:   clock,
	}
}
