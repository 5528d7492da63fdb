// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/dalemusser/feedbackhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Votes controls logging for vote events (cast, duplicate rejection).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Votes string
	// Merges controls logging for merge events. Only rejections and the
	// structured-log mirror are governed here; the durable record of a
	// successful merge is written inside the merge transaction and cannot
	// be disabled.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Merges string
	// Feedback controls logging for feedback lifecycle events (creation).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Feedback string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr, stripping the port if present
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	if l.zapLog == nil {
		return
	}

	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FeedbackID != nil {
		fields = append(fields, zap.String("feedback_id", event.FeedbackID.Hex()))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit: "+event.EventType, fields...)
	} else {
		l.zapLog.Warn("audit: "+event.EventType, fields...)
	}
}

// logToDB writes the event to MongoDB. Failures are logged but never
// propagated; an audit write must not break the request it describes.
func (l *Logger) logToDB(ctx context.Context, event audit.Event) {
	if l.store == nil {
		return
	}
	if err := l.store.Log(ctx, event); err != nil && l.zapLog != nil {
		l.zapLog.Error("failed to write audit event",
			zap.String("event_type", event.EventType),
			zap.Error(err))
	}
}

// modeFor returns the configured mode for an event category.
// Unconfigured categories default to "all".
func (l *Logger) modeFor(category string) string {
	var mode string
	switch category {
	case audit.CategoryVotes:
		mode = l.config.Votes
	case audit.CategoryMerges:
		mode = l.config.Merges
	case audit.CategoryFeedback:
		mode = l.config.Feedback
	}
	if mode == "" {
		mode = "all"
	}
	return mode
}

// Log records an audit event per the configured mode for its category.
// Safe to call on a nil Logger.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	switch l.modeFor(event.Category) {
	case "off":
		return
	case "db":
		l.logToDB(ctx, event)
	case "log":
		l.logToZap(event)
	default: // "all"
		l.logToDB(ctx, event)
		l.logToZap(event)
	}
}

// LogVoteCast logs a successfully cast vote.
func (l *Logger) LogVoteCast(ctx context.Context, r *http.Request, voterID, feedbackID primitive.ObjectID, weight float64) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryVotes,
		EventType:  audit.EventVoteCast,
		UserID:     &voterID,
		FeedbackID: &feedbackID,
		IP:         getClientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
		Details: map[string]string{
			"weight": floatToString(weight),
		},
	})
}

// LogVoteRejectedDuplicate logs a vote rejected by the unique index on
// (feedback_id, user_id).
func (l *Logger) LogVoteRejectedDuplicate(ctx context.Context, r *http.Request, voterID, feedbackID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryVotes,
		EventType:     audit.EventVoteRejectedDuplicate,
		UserID:        &voterID,
		FeedbackID:    &feedbackID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "user has already voted on this feedback",
	})
}

// LogMergeRejected logs a merge attempt that failed a precondition.
func (l *Logger) LogMergeRejected(ctx context.Context, r *http.Request, actorID *primitive.ObjectID, sourceID, targetID primitive.ObjectID, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryMerges,
		EventType:     audit.EventMergeRejected,
		ActorID:       actorID,
		FeedbackID:    &sourceID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"source_id": sourceID.Hex(),
			"target_id": targetID.Hex(),
		},
	})
}

// LogFeedbackMerged mirrors a completed merge to the structured log. The
// durable record was already written inside the merge transaction, so this
// never writes to the database regardless of mode.
func (l *Logger) LogFeedbackMerged(r *http.Request, actorID *primitive.ObjectID, sourceID, targetID primitive.ObjectID, votesMigrated int) {
	if l == nil {
		return
	}
	mode := l.modeFor(audit.CategoryMerges)
	if mode == "off" || mode == "db" {
		return
	}
	l.logToZap(audit.Event{
		Category:   audit.CategoryMerges,
		EventType:  audit.EventFeedbackMerged,
		ActorID:    actorID,
		FeedbackID: &targetID,
		IP:         getClientIP(r),
		Success:    true,
		Details: map[string]string{
			"source_id":      sourceID.Hex(),
			"target_id":      targetID.Hex(),
			"votes_migrated": intToString(votesMigrated),
		},
	})
}

// LogFeedbackCreated logs creation of a feedback item.
func (l *Logger) LogFeedbackCreated(ctx context.Context, r *http.Request, authorID, feedbackID primitive.ObjectID, title string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryFeedback,
		EventType:  audit.EventFeedbackCreated,
		UserID:     &authorID,
		FeedbackID: &feedbackID,
		IP:         getClientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
		Details: map[string]string{
			"title": title,
		},
	})
}

func intToString(i int) string {
	return strconv.Itoa(i)
}

func floatToString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
