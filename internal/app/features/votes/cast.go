// internal/app/features/votes/cast.go
package votes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	feedbackstore "github.com/dalemusser/feedbackhub/internal/app/store/feedback"
	userstore "github.com/dalemusser/feedbackhub/internal/app/store/users"
	votestore "github.com/dalemusser/feedbackhub/internal/app/store/votes"
	"github.com/dalemusser/feedbackhub/internal/app/system/httpjson"
	"github.com/dalemusser/feedbackhub/internal/app/system/identity"
	"github.com/dalemusser/feedbackhub/internal/app/system/limits"
	"github.com/dalemusser/feedbackhub/internal/app/system/timeouts"
	"github.com/dalemusser/feedbackhub/internal/app/system/voteweight"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// castRequest is the JSON body for POST /api/votes.
type castRequest struct {
	FeedbackID string `json:"feedback_id"`
}

// HandleCast processes POST /api/votes: the actor votes on a feedback item.
// The weight is snapshotted from the actor's role, panel memberships, and
// village context at this moment and never recomputed.
// Authorization: RequireActor middleware in routes.go ensures an actor is set.
func (h *Handler) HandleCast(w http.ResponseWriter, r *http.Request) {
	actorID, ok := identity.ActorID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "missing actor identity")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req castRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode cast vote body failed", err, "Invalid JSON body.")
		return
	}

	feedbackID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.FeedbackID))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "A valid feedback id is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	weight, err := voteweight.NewCalculator(h.DB).ComputeBaseWeight(ctx, actorID, feedbackID)
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrUserNotFound):
			httpjson.Error(w, http.StatusUnprocessableEntity, "user not found")
		case errors.Is(err, feedbackstore.ErrFeedbackNotFound):
			httpjson.Error(w, http.StatusNotFound, "feedback not found")
		default:
			h.ErrLog.LogServerError(w, r, "compute vote weight failed", err, "Unable to cast vote.")
		}
		return
	}

	vote, err := votestore.New(h.DB, h.Clock).Cast(ctx, feedbackID, actorID, weight)
	if err != nil {
		switch {
		case errors.Is(err, votestore.ErrDuplicateVote):
			h.Audit.LogVoteRejectedDuplicate(ctx, r, actorID, feedbackID)
			httpjson.Error(w, http.StatusConflict, err.Error())
		case errors.Is(err, votestore.ErrFeedbackNotVotable):
			httpjson.Error(w, http.StatusConflict, err.Error())
		default:
			h.ErrLog.LogServerError(w, r, "cast vote failed", err, "Unable to cast vote.")
		}
		return
	}

	h.Audit.LogVoteCast(ctx, r, actorID, feedbackID, vote.Weight)

	httpjson.Write(w, http.StatusCreated, vote)
}
