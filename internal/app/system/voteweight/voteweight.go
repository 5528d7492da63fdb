// internal/app/system/voteweight/voteweight.go

// Package voteweight computes the base weight snapshotted onto a vote at
// cast time.
//
// The weight tables are pure lookups so they can be tested without storage;
// Calculator layers the store reads on top. A vote's base weight is computed
// exactly once: later role, panel, or village changes never rewrite it.
package voteweight

import "github.com/dalemusser/feedbackhub/internal/domain/models"

// PanelBoost is added once when the voter holds at least one active panel
// membership. The boost is flat: two panels do not boost twice.
const PanelBoost = 0.3

// roleWeights maps user roles to their base vote weight.
var roleWeights = map[string]float64{
	models.RoleUser:       1.0,
	models.RoleModerator:  1.0,
	models.RoleAdmin:      1.0,
	models.RoleResearcher: 1.5,
	models.RolePM:         2.0,
	models.RolePO:         3.0,
}

// tierMultipliers maps village priority tiers to their weight multiplier.
var tierMultipliers = map[string]float64{
	models.TierHigh:   1.5,
	models.TierMedium: 1.0,
	models.TierLow:    0.5,
}

// RoleWeight returns the base weight for a role. Unknown roles fall back to
// the baseline 1.0 (store-side validation makes that unreachable in
// practice).
func RoleWeight(role string) float64 {
	if w, ok := roleWeights[role]; ok {
		return w
	}
	return 1.0
}

// TierMultiplier returns the weight multiplier for a village priority tier.
// An empty or unknown tier means "no village context": multiplier 1.0.
func TierMultiplier(tier string) float64 {
	if m, ok := tierMultipliers[tier]; ok {
		return m
	}
	return 1.0
}

// Base combines the three factors: (roleWeight + panelBoost) * tierMultiplier.
func Base(role string, hasActivePanel bool, tier string) float64 {
	w := RoleWeight(role)
	if hasActivePanel {
		w += PanelBoost
	}
	return w * TierMultiplier(tier)
}
