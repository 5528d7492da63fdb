// internal/app/features/votes/weight.go
package votes

import (
	"context"
	"errors"
	"net/http"

	votestore "github.com/dalemusser/feedbackhub/internal/app/store/votes"
	"github.com/dalemusser/feedbackhub/internal/app/system/httpjson"
	"github.com/dalemusser/feedbackhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// weightResponse is the JSON envelope for GET /api/votes/{voteID}/weight.
type weightResponse struct {
	VoteID        primitive.ObjectID `json:"vote_id"`
	CurrentWeight float64            `json:"current_weight"`
}

// ServeWeight handles GET /api/votes/{voteID}/weight: the vote's stored
// snapshot weight with time decay applied as of now. Computed on read,
// never persisted.
func (h *Handler) ServeWeight(w http.ResponseWriter, r *http.Request) {
	voteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "voteID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid vote id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	weight, err := votestore.New(h.DB, h.Clock).CurrentWeight(ctx, voteID)
	if err != nil {
		if errors.Is(err, votestore.ErrVoteNotFound) {
			httpjson.Error(w, http.StatusNotFound, "vote not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "compute current weight failed", err, "Unable to compute vote weight.")
		return
	}

	httpjson.Write(w, http.StatusOK, weightResponse{VoteID: voteID, CurrentWeight: weight})
}
