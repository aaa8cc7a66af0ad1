package engine

import (
	"time"

	"github.com/claude/liftlog/internal/models"
)

// UpdateMissions computes progress deltas for the active missions of a
// program given a finalized session and its detected records. Missions that
// earn no delta are returned untouched with Applied=false, so no zero-value
// history entries are written.
//
// Per mission type:
//   - pr: delta = number of records detected, applied only when > 0
//   - consistency: delta = 1, one completed session is one unit
//   - volume: delta = the session's total volume, applied only when > 0
//   - rpe: delta = 1 when the session's average RPE over completed RPE-tagged
//     sets stays at or below the target ceiling; skipped entirely when no
//     completed set recorded an RPE
func UpdateMissions(missions []models.BlockMission, session *models.WorkoutSession, records []models.PersonalRecord, now time.Time) []MissionUpdate {
	updates := make([]MissionUpdate, 0, len(missions))

	for _, m := range missions {
		delta, apply := missionDelta(m, session, len(records))
		if !apply {
			updates = append(updates, MissionUpdate{Mission: m})
			continue
		}

		m.Progress.Current += delta
		m.Progress.History = append(m.Progress.History, models.ProgressEntry{Date: now, Value: delta})
		if m.Progress.Current >= m.Target.Value {
			m.Status = models.MissionCompleted
		} else {
			m.Status = models.MissionActive
		}

		updates = append(updates, MissionUpdate{Mission: m, Applied: true, Delta: delta})
	}

	return updates
}

// MissionUpdate is the outcome of applying one session to one mission.
type MissionUpdate struct {
	Mission models.BlockMission
	Applied bool
	Delta   float64
}

func missionDelta(m models.BlockMission, session *models.WorkoutSession, recordCount int) (delta float64, apply bool) {
	switch m.Type {
	case models.MissionPR:
		if recordCount > 0 {
			return float64(recordCount), true
		}
	case models.MissionConsistency:
		return 1, true
	case models.MissionVolume:
		if v := TotalVolume(session); v > 0 {
			return v, true
		}
	case models.MissionRPE:
		avg, ok := averageRPE(session)
		// Target is a ceiling: reward staying at or below it.
		if ok && avg <= m.Target.Value {
			return 1, true
		}
	}
	return 0, false
}

// averageRPE averages RPE over completed sets that recorded one. ok is false
// when no completed set carries an RPE.
func averageRPE(session *models.WorkoutSession) (avg float64, ok bool) {
	var sum float64
	var n int
	for _, ex := range session.Exercises {
		for _, set := range ex.Sets {
			if set.Completed && set.RPE > 0 {
				sum += set.RPE
				n++
			}
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
