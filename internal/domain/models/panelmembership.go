// internal/domain/models/panelmembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Panel membership statuses.
const (
	MembershipActive = "active"
	MembershipEnded  = "ended"
)

// PanelMembership is the authoritative join between users and panels.
// Exactly one document per (user_id, panel_id); status is a scalar — update
// the document to end a membership, never insert a second one.
type PanelMembership struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	PanelID primitive.ObjectID `bson:"panel_id" json:"panel_id"`
	Status  string             `bson:"status" json:"status"` // "active" | "ended"

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}
