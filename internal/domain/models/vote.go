// internal/domain/models/vote.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vote is one user's weighted vote on one feedback item.
//
// Weight is snapshotted at cast time from the voter's role, panel
// memberships, and village context, and is immutable afterwards: reads that
// need a current number apply time decay to this stored value, they never
// rewrite it. At most one vote exists per (feedback_id, user_id) — enforced
// by a unique index, not just an application check.
//
// A vote is destroyed only as a side effect of a merge: it is either
// recreated on the merge target (keeping this weight and CreatedAt) or
// discarded when the target already has a vote from the same user.
type Vote struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FeedbackID primitive.ObjectID `bson:"feedback_id" json:"feedback_id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Weight     float64            `bson:"weight" json:"weight"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
