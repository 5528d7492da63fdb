// internal/app/features/votes/handler.go
package votes

import (
	"github.com/dalemusser/feedbackhub/internal/app/system/auditlog"
	"github.com/dalemusser/feedbackhub/internal/app/system/httpjson"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for votes.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *httpjson.ErrorLogger
	Audit  *auditlog.Logger
	Clock  clockwork.Clock
}

// NewHandler constructs a votes Handler bound to a DB, logger, and audit
// logger. The clock drives decay computation and is replaceable in tests.
func NewHandler(db *mongo.Database, logger *zap.Logger, errLog *httpjson.ErrorLogger, audit *auditlog.Logger, clock clockwork.Clock) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
		Audit:  audit,
		Clock:  clock,
	}
}
