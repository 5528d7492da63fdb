// internal/app/features/feedback/duplicates.go
package feedback

import (
	"context"
	"net/http"
	"unicode/utf8"

	feedbackstore "github.com/dalemusser/feedbackhub/internal/app/store/feedback"
	"github.com/dalemusser/feedbackhub/internal/app/system/httpjson"
	"github.com/dalemusser/feedbackhub/internal/app/system/identity"
	"github.com/dalemusser/feedbackhub/internal/app/system/limits"
	"github.com/dalemusser/feedbackhub/internal/app/system/normalize"
	"github.com/dalemusser/feedbackhub/internal/app/system/ratelimit"
	"github.com/dalemusser/feedbackhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// duplicatesResponse is the JSON envelope for the duplicate scan.
// Total counts every match above the threshold; Matches is capped.
type duplicatesResponse struct {
	Matches []feedbackstore.DuplicateMatch `json:"matches"`
	Total   int                            `json:"total"`
}

// ServeDuplicates handles GET /api/feedback/duplicates?title=…&exclude=….
// The scan walks every active item, so it is rate limited per IP and per
// actor.
func (h *Handler) ServeDuplicates(w http.ResponseWriter, r *http.Request) {
	actor := ""
	if actorID, ok := identity.ActorID(r); ok {
		actor = actorID.Hex()
	}
	if ok, reason := h.Limiter.Check(r, actor); !ok {
		h.Log.Warn("duplicate scan rate limited",
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("actor_id", actor))
		httpjson.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	title := normalize.QueryParam(query.Get(r, "title"))
	if title == "" {
		httpjson.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if utf8.RuneCountInString(title) > limits.MaxTitleLength {
		httpjson.Error(w, http.StatusBadRequest, "title is too long")
		return
	}

	var excludeID primitive.ObjectID
	if raw := normalize.QueryParam(query.Get(r, "exclude")); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "exclude is not a valid id")
			return
		}
		excludeID = id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	matches, err := feedbackstore.NewWithLogger(h.DB, h.Log).FindDuplicates(ctx, title, excludeID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "duplicate scan failed", err, "Unable to scan for duplicates.")
		return
	}

	total := len(matches)
	if len(matches) > limits.MaxDuplicateResults {
		matches = matches[:limits.MaxDuplicateResults]
	}
	if matches == nil {
		matches = []feedbackstore.DuplicateMatch{}
	}

	httpjson.Write(w, http.StatusOK, duplicatesResponse{Matches: matches, Total: total})
}
