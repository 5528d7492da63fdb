// internal/app/features/feedback/routes.go
package feedback

import (
	"github.com/dalemusser/feedbackhub/internal/app/system/identity"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all feedback routes under the base path (typically
// "/api/feedback" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Reads: no actor required. The duplicate scan uses the actor for
	// rate limiting when present.
	r.Get("/", h.ServeList)
	r.Get("/duplicates", h.ServeDuplicates)
	r.Get("/{feedbackID}", h.ServeGet)
	r.Get("/{feedbackID}/stats", h.ServeStats)

	// Writes: the gateway-injected actor is mandatory.
	r.Group(func(pr chi.Router) {
		pr.Use(identity.RequireActor)

		pr.Post("/", h.HandleCreate)
		pr.Post("/{feedbackID}/merge", h.HandleMerge)
	})

	return r
}
