// internal/domain/models/panel.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Panel is a research/advisory group. Enrollment in an active panel grants a
// flat vote-weight boost; panel administration lives outside this app.
type Panel struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
