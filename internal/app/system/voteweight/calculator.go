// internal/app/system/voteweight/calculator.go
package voteweight

import (
	"context"
	"errors"

	feedbackstore "github.com/dalemusser/feedbackhub/internal/app/store/feedback"
	membershipstore "github.com/dalemusser/feedbackhub/internal/app/store/panelmemberships"
	userstore "github.com/dalemusser/feedbackhub/internal/app/store/users"
	villagestore "github.com/dalemusser/feedbackhub/internal/app/store/villages"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Calculator resolves the voter and feedback context and applies the weight
// tables. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	users       *userstore.Store
	memberships *membershipstore.Store
	feedback    *feedbackstore.Store
	villages    *villagestore.Store
}

// NewCalculator wires a Calculator over the given database.
func NewCalculator(db *mongo.Database) *Calculator {
	return &Calculator{
		users:       userstore.New(db),
		memberships: membershipstore.New(db),
		feedback:    feedbackstore.New(db),
		villages:    villagestore.New(db),
	}
}

// ComputeBaseWeight returns the weight a vote by userID on feedbackID would
// snapshot right now.
//
// Fails with userstore.ErrUserNotFound or feedbackstore.ErrFeedbackNotFound
// when an id does not resolve; otherwise it is total. The village context is
// the feedback's village, falling back to the voter's current village; a
// missing or dangling village reference means multiplier 1.0.
func (c *Calculator) ComputeBaseWeight(ctx context.Context, userID, feedbackID primitive.ObjectID) (float64, error) {
	user, err := c.users.Get(ctx, userID)
	if err != nil {
		return 0, err
	}

	fb, err := c.feedback.Get(ctx, feedbackID)
	if err != nil {
		return 0, err
	}

	hasPanel, err := c.memberships.HasActive(ctx, userID)
	if err != nil {
		return 0, err
	}

	tier, err := c.resolveTier(ctx, fb.VillageID, user.CurrentVillageID)
	if err != nil {
		return 0, err
	}

	return Base(user.Role, hasPanel, tier), nil
}

// resolveTier looks up the priority tier of the first village reference that
// is set. A reference that doesn't resolve is treated as no village.
func (c *Calculator) resolveTier(ctx context.Context, feedbackVillage, userVillage *primitive.ObjectID) (string, error) {
	villageID := feedbackVillage
	if villageID == nil {
		villageID = userVillage
	}
	if villageID == nil {
		return "", nil
	}

	v, err := c.villages.Get(ctx, *villageID)
	if err != nil {
		if errors.Is(err, villagestore.ErrVillageNotFound) || errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", err
	}
	return v.PriorityTier, nil
}
