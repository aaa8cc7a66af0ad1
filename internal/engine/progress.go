package engine

import (
	"time"

	"github.com/claude/liftlog/internal/models"
)

// ProgressionPoint is one session's contribution to an exercise's trend.
type ProgressionPoint struct {
	Date           time.Time `json:"date"`
	MaxWeightKg    float64   `json:"max_weight_kg"`
	EstimatedOneRM float64   `json:"estimated_1rm"`
	CompletedSets  int       `json:"completed_sets"`
}

// ExerciseProgression builds a chronological series of max weight, best
// estimated 1RM, and completed-set count for one exercise across the most
// recent limit sessions that touched it. Sessions where the exercise has no
// completed sets are skipped.
func ExerciseProgression(sessions []models.WorkoutSession, exerciseID string, limit int) []ProgressionPoint {
	var points []ProgressionPoint

	for _, s := range sessions {
		if s.CompletedAt == nil {
			continue
		}
		var maxWeight, bestOneRM float64
		var completed int
		for _, ex := range s.Exercises {
			if ex.ExerciseID != exerciseID {
				continue
			}
			for _, set := range ex.Sets {
				if !set.Completed {
					continue
				}
				completed++
				if set.WeightKg > maxWeight {
					maxWeight = set.WeightKg
				}
				if oneRM := EstimatedOneRepMax(set.WeightKg, set.Reps); oneRM > bestOneRM {
					bestOneRM = oneRM
				}
			}
		}
		if completed == 0 {
			continue
		}
		points = append(points, ProgressionPoint{
			Date:           *s.CompletedAt,
			MaxWeightKg:    maxWeight,
			EstimatedOneRM: bestOneRM,
			CompletedSets:  completed,
		})
	}

	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	return points
}

// MuscleWeekVolume is one muscle group's volume within one week bucket.
type MuscleWeekVolume struct {
	WeekStart time.Time          `json:"week_start"`
	Volumes   map[string]float64 `json:"volumes"`
}

// WeeklyVolumeByMuscle buckets completed-set volume per muscle group per week
// over the last weeks weeks, mapping exercises to muscle groups through the
// catalog. Exercises missing from the catalog contribute nothing. Buckets are
// returned oldest first; weeks with no training still appear, with an empty
// volume map.
func WeeklyVolumeByMuscle(sessions []models.WorkoutSession, catalog models.ExerciseCatalog, weeks int, now time.Time) []MuscleWeekVolume {
	if weeks <= 0 {
		return nil
	}

	latest := startOfWeek(now)
	buckets := make([]MuscleWeekVolume, weeks)
	for i := range buckets {
		buckets[i] = MuscleWeekVolume{
			WeekStart: latest.AddDate(0, 0, -7*(weeks-1-i)),
			Volumes:   map[string]float64{},
		}
	}
	earliest := buckets[0].WeekStart

	for _, s := range sessions {
		if s.CompletedAt == nil {
			continue
		}
		week := startOfWeek(*s.CompletedAt)
		if week.Before(earliest) || week.After(latest) {
			continue
		}
		idx := int(week.Sub(earliest).Hours() / (24 * 7))

		for _, ex := range s.Exercises {
			groups := catalog.MuscleGroups(ex.ExerciseID)
			if len(groups) == 0 {
				continue
			}
			var vol float64
			for _, set := range ex.Sets {
				if set.Completed {
					vol += set.WeightKg * float64(set.Reps)
				}
			}
			if vol == 0 {
				continue
			}
			for _, g := range groups {
				buckets[idx].Volumes[g] += vol
			}
		}
	}

	return buckets
}

// startOfWeek truncates a time to midnight UTC of its Monday.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
