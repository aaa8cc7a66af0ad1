package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// ProgressionRow holds one session's aggregates for a specific exercise.
type ProgressionRow struct {
	Date           string  `json:"date"`
	MaxWeightKg    float64 `json:"max_weight_kg"`
	EstimatedOneRM float64 `json:"estimated_1rm"`
	Sets           int     `json:"sets"`
	TonnageKg      float64 `json:"tonnage_kg"`
}

// GetExerciseProgression returns per-session max weight, best Epley-estimated
// 1RM, completed-set count, and tonnage for one exercise, chronologically,
// capped at the most recent limit sessions. Only completed sets count; a
// 1-rep set's weight is taken as-is.
func (db *DB) GetExerciseProgression(ctx context.Context, userID int, exerciseID string, limit int) ([]ProgressionRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT to_char(s.completed_at, 'YYYY-MM-DD'),
		        COALESCE(MAX(ss.weight_kg), 0),
		        COALESCE(MAX(CASE WHEN ss.reps <= 1 THEN ss.weight_kg
		                          ELSE ss.weight_kg * (1 + ss.reps / 30.0) END), 0),
		        COUNT(*)::int,
		        COALESCE(SUM(ss.weight_kg * ss.reps), 0)
		 FROM session_sets ss
		 JOIN sessions s ON s.id = ss.session_id AND s.user_id = ss.user_id
		 WHERE ss.user_id = $1 AND ss.exercise_id = $2 AND ss.completed
		 GROUP BY s.id, s.completed_at
		 ORDER BY s.completed_at DESC
		 LIMIT $3`,
		userID, exerciseID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying progression: %w", err)
	}
	defer rows.Close()

	var result []ProgressionRow
	for rows.Next() {
		var p ProgressionRow
		if err := rows.Scan(&p.Date, &p.MaxWeightKg, &p.EstimatedOneRM, &p.Sets, &p.TonnageKg); err != nil {
			return nil, fmt.Errorf("scanning progression: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query is newest-first to apply the limit; the series reads oldest-first.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}

// ExerciseWeekVolume is one exercise's completed-set volume in one week.
type ExerciseWeekVolume struct {
	WeekStart  time.Time `json:"week_start"`
	ExerciseID string    `json:"exercise_id"`
	TonnageKg  float64   `json:"tonnage_kg"`
}

// GetWeeklyExerciseVolume returns per-exercise weekly tonnage over a time
// range. The caller maps exercises to muscle groups through the catalog.
func (db *DB) GetWeeklyExerciseVolume(ctx context.Context, userID int, start, end time.Time) ([]ExerciseWeekVolume, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc('week', s.completed_at)::date AS week,
		        ss.exercise_id,
		        COALESCE(SUM(ss.weight_kg * ss.reps), 0)
		 FROM session_sets ss
		 JOIN sessions s ON s.id = ss.session_id AND s.user_id = ss.user_id
		 WHERE ss.user_id = $1 AND ss.completed
		   AND s.completed_at >= $2 AND s.completed_at < $3
		 GROUP BY week, ss.exercise_id
		 ORDER BY week ASC, ss.exercise_id ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying weekly volume: %w", err)
	}
	defer rows.Close()

	var result []ExerciseWeekVolume
	for rows.Next() {
		var v ExerciseWeekVolume
		if err := rows.Scan(&v.WeekStart, &v.ExerciseID, &v.TonnageKg); err != nil {
			return nil, fmt.Errorf("scanning weekly volume: %w", err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// MuscleWeekVolume is one week of tonnage grouped by muscle.
type MuscleWeekVolume struct {
	WeekStart time.Time          `json:"week_start"`
	Volumes   map[string]float64 `json:"volumes"`
}

// GroupVolumeByMuscle fans per-exercise weekly tonnage out to the muscle
// groups each exercise trains, per the catalog. A multi-muscle exercise
// counts its full tonnage toward every group. Uncatalogued exercises are
// skipped. Weeks come back in input order (oldest first).
func GroupVolumeByMuscle(rows []ExerciseWeekVolume, catalog models.ExerciseCatalog) []MuscleWeekVolume {
	var result []MuscleWeekVolume
	byWeek := map[time.Time]int{}
	for _, row := range rows {
		groups := catalog.MuscleGroups(row.ExerciseID)
		if len(groups) == 0 {
			continue
		}
		idx, ok := byWeek[row.WeekStart]
		if !ok {
			idx = len(result)
			byWeek[row.WeekStart] = idx
			result = append(result, MuscleWeekVolume{WeekStart: row.WeekStart, Volumes: map[string]float64{}})
		}
		for _, g := range groups {
			result[idx].Volumes[g] += row.TonnageKg
		}
	}
	return result
}

// DataStats holds aggregate statistics about a user's mirrored data.
type DataStats struct {
	TotalSessions  int64      `json:"total_sessions"`
	TotalSets      int64      `json:"total_sets"`
	TotalRecords   int64      `json:"total_records"`
	TotalTonnageKg float64    `json:"total_tonnage_kg"`
	EarliestData   *time.Time `json:"earliest_data"`
	LatestData     *time.Time `json:"latest_data"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_volume_kg), 0), MIN(completed_at), MAX(completed_at)
		 FROM sessions WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSessions, &stats.TotalTonnageKg, &stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM session_sets WHERE user_id = $1 AND completed`, userID,
	).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM personal_records WHERE user_id = $1`, userID,
	).Scan(&stats.TotalRecords)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}

	return stats, nil
}
