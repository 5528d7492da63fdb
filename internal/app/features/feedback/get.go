// internal/app/features/feedback/get.go
package feedback

import (
	"context"
	"errors"
	"net/http"

	feedbackstore "github.com/dalemusser/feedbackhub/internal/app/store/feedback"
	"github.com/dalemusser/feedbackhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/feedbackhub/internal/app/system/httpjson"
	"github.com/dalemusser/feedbackhub/internal/app/system/timeouts"
	"github.com/dalemusser/feedbackhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// itemResponse is a feedback item plus its sanitized display body.
type itemResponse struct {
	*models.Feedback
	BodyHTML string `json:"body_html"`
}

// ServeGet handles GET /api/feedback/{feedbackID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "feedbackID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid feedback id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	fb, err := feedbackstore.New(h.DB).Get(ctx, id)
	if err != nil {
		if errors.Is(err, feedbackstore.ErrFeedbackNotFound) {
			httpjson.Error(w, http.StatusNotFound, "feedback not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "load feedback failed", err, "Unable to load feedback.")
		return
	}

	httpjson.Write(w, http.StatusOK, itemResponse{
		Feedback: fb,
		BodyHTML: string(htmlsanitize.PrepareForDisplay(fb.Body)),
	})
}
