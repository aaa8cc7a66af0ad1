package engine

import (
	"time"

	"github.com/claude/liftlog/internal/models"
)

// DetectRecords compares a finalized session against prior history and
// returns a new personal record for each exercise whose best completed set
// strictly beats the best estimated 1RM across all prior sessions. Ties are
// not improvements and produce nothing, as do exercises with no completed
// sets or a best set at zero weight.
func DetectRecords(session *models.WorkoutSession, prior []models.WorkoutSession, completedAt time.Time) []models.PersonalRecord {
	var records []models.PersonalRecord

	for _, ex := range session.Exercises {
		best, ok := bestCompletedSet(ex.Sets)
		if !ok || best.WeightKg <= 0 {
			continue
		}

		newMax := EstimatedOneRepMax(best.WeightKg, best.Reps)
		if newMax <= bestPastOneRM(ex.ExerciseID, prior) {
			continue
		}

		records = append(records, models.PersonalRecord{
			ExerciseID: ex.ExerciseID,
			WeightKg:   best.WeightKg,
			Reps:       best.Reps,
			AchievedAt: completedAt,
			SessionID:  session.ID,
		})
	}

	return records
}

// AnnotateRecordSets flags every set in the session whose (weight, reps)
// matches a detected record for its exercise. Duplicate sets at the record
// load are all flagged.
func AnnotateRecordSets(session *models.WorkoutSession, records []models.PersonalRecord) {
	byExercise := make(map[string]models.PersonalRecord, len(records))
	for _, pr := range records {
		byExercise[pr.ExerciseID] = pr
	}

	for i := range session.Exercises {
		ex := &session.Exercises[i]
		pr, ok := byExercise[ex.ExerciseID]
		if !ok {
			continue
		}
		for j := range ex.Sets {
			set := &ex.Sets[j]
			if set.Completed && set.WeightKg == pr.WeightKg && set.Reps == pr.Reps {
				set.IsPersonalRecord = true
			}
		}
	}
}

// bestCompletedSet returns the completed set with the highest estimated 1RM,
// first occurrence winning ties. ok is false when no set is completed.
func bestCompletedSet(sets []models.LoggedSet) (best models.LoggedSet, ok bool) {
	var bestMax float64
	for _, set := range sets {
		if !set.Completed {
			continue
		}
		oneRM := EstimatedOneRepMax(set.WeightKg, set.Reps)
		if !ok || oneRM > bestMax {
			best = set
			bestMax = oneRM
			ok = true
		}
	}
	return best, ok
}

// bestPastOneRM returns the highest estimated 1RM for an exercise across all
// completed sets of the given sessions, or 0 when the exercise has no history.
func bestPastOneRM(exerciseID string, sessions []models.WorkoutSession) float64 {
	var best float64
	for _, s := range sessions {
		for _, ex := range s.Exercises {
			if ex.ExerciseID != exerciseID {
				continue
			}
			for _, set := range ex.Sets {
				if !set.Completed {
					continue
				}
				if oneRM := EstimatedOneRepMax(set.WeightKg, set.Reps); oneRM > best {
					best = oneRM
				}
			}
		}
	}
	return best
}
