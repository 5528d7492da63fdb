// internal/app/features/votes/check.go
package votes

import (
	"context"
	"net/http"

	votestore "github.com/dalemusser/feedbackhub/internal/app/store/votes"
	"github.com/dalemusser/feedbackhub/internal/app/system/httpjson"
	"github.com/dalemusser/feedbackhub/internal/app/system/identity"
	"github.com/dalemusser/feedbackhub/internal/app/system/normalize"
	"github.com/dalemusser/feedbackhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// checkResponse is the JSON envelope for GET /api/votes/check.
type checkResponse struct {
	HasVoted bool `json:"has_voted"`
}

// ServeCheck handles GET /api/votes/check?feedback_id=…: has the actor
// already voted on this item? Unknown feedback ids simply report false.
// Authorization: RequireActor middleware in routes.go ensures an actor is set.
func (h *Handler) ServeCheck(w http.ResponseWriter, r *http.Request) {
	actorID, ok := identity.ActorID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "missing actor identity")
		return
	}

	feedbackID, err := primitive.ObjectIDFromHex(normalize.QueryParam(query.Get(r, "feedback_id")))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "A valid feedback id is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	voted, err := votestore.New(h.DB, h.Clock).HasVoted(ctx, feedbackID, actorID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "has-voted check failed", err, "Unable to check vote.")
		return
	}

	httpjson.Write(w, http.StatusOK, checkResponse{HasVoted: voted})
}
