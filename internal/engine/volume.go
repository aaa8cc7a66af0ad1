// Package engine implements the workout-session domain rules: volume math,
// personal-record detection, program-cursor advancement, mission progress,
// and the session lifecycle that orchestrates them.
package engine

import "github.com/claude/liftlog/internal/models"

// TotalVolume sums weight*reps over every completed set in the session.
// Incomplete sets are unfilled placeholders and contribute zero regardless of
// what weight/reps they hold. Safe to call mid-session; idempotent.
func TotalVolume(s *models.WorkoutSession) float64 {
	var total float64
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if set.Completed {
				total += set.WeightKg * float64(set.Reps)
			}
		}
	}
	return total
}

// EstimatedOneRepMax estimates a one-rep max from a set using the Epley
// formula weight*(1+reps/30). A single rep is an actual 1RM, not an
// estimate, so it is returned unchanged. Monotonically increasing in both
// weight and reps.
func EstimatedOneRepMax(weightKg float64, reps int) float64 {
	if reps <= 1 {
		return weightKg
	}
	return weightKg * (1 + float64(reps)/30)
}
