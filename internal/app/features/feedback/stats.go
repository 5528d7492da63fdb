// internal/app/features/feedback/stats.go
package feedback

import (
	"context"
	"errors"
	"net/http"

	feedbackstore "github.com/dalemusser/feedbackhub/internal/app/store/feedback"
	votestore "github.com/dalemusser/feedbackhub/internal/app/store/votes"
	"github.com/dalemusser/feedbackhub/internal/app/system/httpjson"
	"github.com/dalemusser/feedbackhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeStats handles GET /api/feedback/{feedbackID}/stats. Decayed totals
// are computed on read; nothing here writes.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "feedbackID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid feedback id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := feedbackstore.New(h.DB).Get(ctx, id); err != nil {
		if errors.Is(err, feedbackstore.ErrFeedbackNotFound) {
			httpjson.Error(w, http.StatusNotFound, "feedback not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "load feedback failed", err, "Unable to load feedback.")
		return
	}

	stats, err := votestore.New(h.DB, h.Clock).Stats(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "compute vote stats failed", err, "Unable to load vote stats.")
		return
	}

	httpjson.Write(w, http.StatusOK, stats)
}
