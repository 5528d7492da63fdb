package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/dalemusser/feedbackhub/internal/app/system/identity"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates an HTTP request with a JSON body.
func NewJSONRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithActor sets the acting-user header on the request. This stands in for
// the upstream gateway that normally injects the caller's identity.
func WithActor(r *http.Request, actorID primitive.ObjectID) *http.Request {
	r.Header.Set(identity.HeaderActorID, actorID.Hex())
	return r
}
