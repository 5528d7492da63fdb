// internal/domain/models/village.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Village priority tiers. The tier multiplicatively scales vote weight.
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"
)

// Tiers is the canonical list of priority tiers.
var Tiers = []string{TierHigh, TierMedium, TierLow}

// ValidTier reports whether tier is one of the known priority tiers.
func ValidTier(tier string) bool {
	for _, t := range Tiers {
		if tier == t {
			return true
		}
	}
	return false
}

// Village is immutable reference data: once created, a village's priority
// tier never changes. Village administration lives outside this app.
type Village struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"name_ci"`
	PriorityTier string             `bson:"priority_tier" json:"priority_tier"` // high | medium | low

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
