// internal/app/features/feedback/merge.go
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	feedbackstore "github.com/dalemusser/feedbackhub/internal/app/store/feedback"
	"github.com/dalemusser/feedbackhub/internal/app/system/httpjson"
	"github.com/dalemusser/feedbackhub/internal/app/system/identity"
	"github.com/dalemusser/feedbackhub/internal/app/system/inputval"
	"github.com/dalemusser/feedbackhub/internal/app/system/limits"
	"github.com/dalemusser/feedbackhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mergeRequest is the JSON body for POST /api/feedback/{feedbackID}/merge.
// RequestID lets callers correlate the merge with their own systems; one is
// generated when absent.
type mergeRequest struct {
	TargetID  string `json:"target_id"`
	RequestID string `json:"request_id"`
}

// mergeInput defines validation rules for the merge body.
type mergeInput struct {
	TargetID  string `validate:"required,objectid" label:"Target id"`
	RequestID string `validate:"max=64" label:"Request id"`
}

// mergeErrorStatus maps merge precondition failures to HTTP statuses.
// Returns 0 for errors that are not preconditions.
func mergeErrorStatus(err error) int {
	switch {
	case errors.Is(err, feedbackstore.ErrFeedbackNotFound):
		return http.StatusNotFound
	case errors.Is(err, feedbackstore.ErrAlreadyMerged),
		errors.Is(err, feedbackstore.ErrVoteConflict):
		return http.StatusConflict
	case errors.Is(err, feedbackstore.ErrSelfMerge),
		errors.Is(err, feedbackstore.ErrCircularMerge):
		return http.StatusUnprocessableEntity
	default:
		return 0
	}
}

// HandleMerge processes POST /api/feedback/{feedbackID}/merge: the item in
// the path is merged into the target named in the body.
// Authorization: RequireActor middleware in routes.go ensures an actor is set.
func (h *Handler) HandleMerge(w http.ResponseWriter, r *http.Request) {
	actorID, ok := identity.ActorID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "missing actor identity")
		return
	}

	sourceID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "feedbackID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid feedback id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode merge body failed", err, "Invalid JSON body.")
		return
	}

	input := mergeInput{
		TargetID:  strings.TrimSpace(req.TargetID),
		RequestID: strings.TrimSpace(req.RequestID),
	}
	if result := inputval.Validate(input); result.HasErrors() {
		httpjson.Error(w, http.StatusBadRequest, result.First())
		return
	}

	targetID, err := primitive.ObjectIDFromHex(input.TargetID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "target_id is not a valid id")
		return
	}

	requestID := input.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := feedbackstore.NewWithLogger(h.DB, h.Log).Merge(ctx, sourceID, targetID, &actorID, requestID)
	if err != nil {
		status := mergeErrorStatus(err)
		if status == 0 {
			h.ErrLog.LogServerError(w, r, "merge feedback failed", err, "Unable to merge feedback.")
			return
		}
		h.Audit.LogMergeRejected(ctx, r, &actorID, sourceID, targetID, err.Error())
		httpjson.Error(w, status, err.Error())
		return
	}

	h.Audit.LogFeedbackMerged(r, &actorID, sourceID, targetID, res.VotesMigrated)

	httpjson.Write(w, http.StatusOK, res)
}
