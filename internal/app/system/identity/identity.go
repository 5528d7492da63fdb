// internal/app/system/identity/identity.go

// Package identity resolves the acting user for a request.
//
// Authentication lives upstream: the gateway authenticates the caller
// and injects the user's id as the X-Actor-ID header. This package
// parses that header, optionally enforces its presence, and exposes the
// actor to handlers.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/feedbackhub/internal/app/system/httpjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HeaderActorID names the gateway header carrying the acting user's id.
const HeaderActorID = "X-Actor-ID"

type ctxKey int

const actorKey ctxKey = 0

// WithActor returns a context carrying the actor id.
func WithActor(ctx context.Context, id primitive.ObjectID) context.Context {
	return context.WithValue(ctx, actorKey, id)
}

// ActorID returns the acting user's id and a found flag. It prefers the
// id placed in the context by RequireActor and falls back to parsing
// the header so optional-actor routes work without the middleware.
// A malformed header is treated as absent - fail closed.
func ActorID(r *http.Request) (primitive.ObjectID, bool) {
	if id, ok := r.Context().Value(actorKey).(primitive.ObjectID); ok {
		return id, true
	}
	return parseHeader(r)
}

func parseHeader(r *http.Request) (primitive.ObjectID, bool) {
	raw := strings.TrimSpace(r.Header.Get(HeaderActorID))
	if raw == "" {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// RequireActor rejects requests without a valid X-Actor-ID header.
// Mutating routes sit behind this; read routes may treat the actor as
// optional and call ActorID directly.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(HeaderActorID))
		if raw == "" {
			httpjson.Error(w, http.StatusUnauthorized, "missing "+HeaderActorID+" header")
			return
		}
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.Error(w, http.StatusUnauthorized, "invalid "+HeaderActorID+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), id)))
	})
}
