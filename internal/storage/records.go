package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// UpsertPersonalRecords mirrors personal records, one row per exercise. A
// record replaces the previous one for its exercise; records are never
// versioned. Returns count written.
func (db *DB) UpsertPersonalRecords(ctx context.Context, userID int, records []models.PersonalRecord) (int64, error) {
	var written int64
	for _, pr := range records {
		tag, err := db.Pool.Exec(ctx,
			`INSERT INTO personal_records (user_id, exercise_id, weight_kg, reps, achieved_at, session_id)
			 VALUES ($1,$2,$3,$4,$5,$6)
			 ON CONFLICT (user_id, exercise_id) DO UPDATE SET
				weight_kg = EXCLUDED.weight_kg,
				reps = EXCLUDED.reps,
				achieved_at = EXCLUDED.achieved_at,
				session_id = EXCLUDED.session_id`,
			userID, pr.ExerciseID, pr.WeightKg, pr.Reps, pr.AchievedAt, pr.SessionID)
		if err != nil {
			return written, fmt.Errorf("upserting record for %s: %w", pr.ExerciseID, err)
		}
		written += tag.RowsAffected()
	}
	return written, nil
}

// QueryPersonalRecords retrieves a user's current record per exercise.
func (db *DB) QueryPersonalRecords(ctx context.Context, userID int) ([]models.PersonalRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_id, weight_kg, reps, achieved_at, session_id
		 FROM personal_records
		 WHERE user_id = $1
		 ORDER BY achieved_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var result []models.PersonalRecord
	for rows.Next() {
		var pr models.PersonalRecord
		if err := rows.Scan(&pr.ExerciseID, &pr.WeightKg, &pr.Reps, &pr.AchievedAt, &pr.SessionID); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		result = append(result, pr)
	}
	return result, rows.Err()
}
