// internal/app/system/decay/decay.go

// Package decay implements the exponential time decay applied to stored vote
// weights at read time.
//
// Weights are never decayed in storage: every read recomputes the decayed
// projection against the current instant, so priority numbers are never
// stale and no background recomputation job exists.
package decay

import (
	"math"
	"time"
)

// HalfLifeDays is the period after which a vote's weight decays to 50% of
// its base value.
const HalfLifeDays = 180.0

// Weight returns baseWeight scaled by 2^(-ageInDays/180).
//
// At age 0 it returns baseWeight exactly; it is monotonically non-increasing
// as age grows and approaches zero without reaching it for finite age. A
// zero baseWeight yields exactly zero for any age. Negative ages (clock
// skew) are treated as zero so decay never amplifies a weight.
func Weight(baseWeight, ageInDays float64) float64 {
	if baseWeight == 0 {
		return 0
	}
	if ageInDays <= 0 {
		return baseWeight
	}
	return baseWeight * math.Exp2(-ageInDays/HalfLifeDays)
}

// AgeInDays returns the real-valued age of an instant relative to now, in
// days. Fractional days are meaningful: a 12-hour-old vote ages 0.5 days.
func AgeInDays(now, createdAt time.Time) float64 {
	return now.Sub(createdAt).Hours() / 24
}
