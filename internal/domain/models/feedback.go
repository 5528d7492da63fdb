// internal/domain/models/feedback.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback states. The only transition is active → merged, exactly once,
// and it never reverses.
const (
	FeedbackActive = "active"
	FeedbackMerged = "merged"
)

// Feedback is a submitted idea users vote on.
//
// DuplicateOfID is set only when State is "merged" and always references an
// active feedback item: merge chains have depth 1, so a merged item can
// never itself be a merge target.
type Feedback struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Title    string             `bson:"title" json:"title"`
	TitleCI  string             `bson:"title_ci" json:"title_ci"` // lowercase, diacritics-stripped
	Body     string             `bson:"body" json:"body"`
	AuthorID primitive.ObjectID `bson:"author_id" json:"author_id"`

	State         string              `bson:"state" json:"state"` // "active" | "merged"
	DuplicateOfID *primitive.ObjectID `bson:"duplicate_of_id,omitempty" json:"duplicate_of_id,omitempty"`

	// VillageID scopes the item to a village; when unset, the voter's
	// current village is the fallback weight context.
	VillageID *primitive.ObjectID `bson:"village_id,omitempty" json:"village_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
