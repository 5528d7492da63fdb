// internal/app/features/votes/routes.go
package votes

import (
	"github.com/dalemusser/feedbackhub/internal/app/system/identity"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all vote routes under the base path (typically "/api/votes"
// from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// A vote's decayed weight is readable without an actor.
	r.Get("/{voteID}/weight", h.ServeWeight)

	// Casting and the has-voted check act on behalf of the actor.
	r.Group(func(pr chi.Router) {
		pr.Use(identity.RequireActor)

		pr.Post("/", h.HandleCast)
		pr.Get("/check", h.ServeCheck)
	})

	return r
}
