// internal/app/features/feedback/create.go
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
	"github.com/dalemusser/feedbackhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// createRequest is the JSON body for POST /api/feedback.
type createRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	VillageID string `json:"village_id"`
}

// createInput defines validation rules for creating feedback.
type createInput struct {
	Title string `validate:"required,max=200" label:"Title"`
	Body  string `validate:"required,max=20000" label:"Body"`
}

// HandleCreate processes POST /api/feedback. The actor becomes the author.
// Authorization: RequireActor middleware in routes.go ensures an actor is set.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := identity.ActorID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "missing actor identity")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode create feedback body failed", err, "Invalid JSON body.")
		return
	}

	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)

	input := createInput{Title: title, Body: body}
	if result := inputval.Validate(input); result.HasErrors() {
		httpjson.Error(w, http.StatusBadRequest, result.First())
		return
	}

	var villageID *primitive.ObjectID
	if raw := strings.TrimSpace(req.VillageID); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "village_id is not a valid id")
			return
		}
		villageID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := feedbackstore.New(h.DB).Create(ctx, models.Feedback{
		Title:     title,
		Body:      body,
		AuthorID:  actorID,
		VillageID: villageID,
	})
	if err != nil {
		switch {
		case errors.Is(err, feedbackstore.ErrAuthorMissing):
			httpjson.Error(w, http.StatusUnprocessableEntity, "author does not exist")
		case errors.Is(err, feedbackstore.ErrVillageMissing):
			httpjson.Error(w, http.StatusUnprocessableEntity, "village does not exist")
		default:
			h.ErrLog.LogServerError(w, r, "create feedback failed", err, "Unable to create feedback.")
		}
		return
	}

	h.Audit.LogFeedbackCreated(ctx, r, actorID, created.ID, created.Title)

	httpjson.Write(w, http.StatusCreated, created)
}
