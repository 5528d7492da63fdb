// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. Role assignment itself is handled by the upstream identity
// service; this app only reads the role when weighing votes.
const (
	RoleUser       = "user"
	RoleModerator  = "moderator"
	RoleAdmin      = "admin"
	RoleResearcher = "researcher"
	RolePM         = "pm"
	RolePO         = "po"
)

// User account statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Roles is the canonical list of user roles, in ascending weight order.
var Roles = []string{RoleUser, RoleModerator, RoleAdmin, RoleResearcher, RolePM, RolePO}

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if role == r {
			return true
		}
	}
	return false
}

// User represents a voter.
//
// NOTE:
//   - Panel membership is not embedded on User.
//     Use the panel_memberships collection to discover a user's panels.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	Role       string             `bson:"role" json:"role"` // user | moderator | admin | researcher | pm | po
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`

	// CurrentVillageID is the fallback village context when a feedback item
	// carries no village of its own.
	CurrentVillageID *primitive.ObjectID `bson:"current_village_id,omitempty" json:"current_village_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
