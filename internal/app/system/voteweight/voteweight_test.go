package voteweight

import (
	"math"
	"testing"

	"github.com/dalemusser/feedbackhub/internal/domain/models"
)

func TestRoleWeight(t *testing.T) {
	tests := []struct {
		role string
		want float64
	}{
		{models.RoleUser, 1.0},
		{models.RoleModerator, 1.0},
		{models.RoleAdmin, 1.0},
		{models.RoleResearcher, 1.5},
		{models.RolePM, 2.0},
		{models.RolePO, 3.0},
		{"somebody-else", 1.0}, // unknown roles get the baseline
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := RoleWeight(tt.role); got != tt.want {
				t.Errorf("RoleWeight(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestTierMultiplier(t *testing.T) {
	tests := []struct {
		tier string
		want float64
	}{
		{models.TierHigh, 1.5},
		{models.TierMedium, 1.0},
		{models.TierLow, 0.5},
		{"", 1.0},        // no village context
		{"unknown", 1.0}, // dangling reference
	}

	for _, tt := range tests {
		if got := TierMultiplier(tt.tier); got != tt.want {
			t.Errorf("TierMultiplier(%q) = %v, want %v", tt.tier, got, tt.want)
		}
	}
}

func TestBase(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		hasPanel bool
		tier     string
		want     float64
	}{
		{"plain user", models.RoleUser, false, "", 1.0},
		{"pm", models.RolePM, false, "", 2.0},
		{"po", models.RolePO, false, "", 3.0},
		{"researcher", models.RoleResearcher, false, "", 1.5},
		{"moderator", models.RoleModerator, false, "", 1.0},
		{"admin", models.RoleAdmin, false, "", 1.0},

		// Panel boost is a flat +0.3 on top of any role.
		{"user with panel", models.RoleUser, true, "", 1.3},
		{"pm with panel", models.RolePM, true, "", 2.3},
		{"po with panel", models.RolePO, true, "", 3.3},

		// Village tier scales the boosted weight.
		{"user in high village", models.RoleUser, false, models.TierHigh, 1.5},
		{"user in low village", models.RoleUser, false, models.TierLow, 0.5},
		{"user in medium village", models.RoleUser, false, models.TierMedium, 1.0},
		{"pm with panel in high village", models.RolePM, true, models.TierHigh, 3.45},
		{"po with panel in low village", models.RolePO, true, models.TierLow, 1.65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Base(tt.role, tt.hasPanel, tt.tier)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Base(%q, %v, %q) = %v, want %v", tt.role, tt.hasPanel, tt.tier, got, tt.want)
			}
		})
	}
}
