package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/jackc/pgx/v5"
)

// UpsertSession mirrors one completed session: the session row plus a
// normalized row per logged set (replacing any prior rows for the session,
// so replays converge). Returns true when a row was written.
func (db *DB) UpsertSession(ctx context.Context, userID int, session *models.WorkoutSession) (bool, error) {
	doc, err := json.Marshal(session)
	if err != nil {
		return false, fmt.Errorf("encoding session: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("starting session tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO sessions (id, user_id, program_id, training_day_index, started_at,
		 completed_at, duration_sec, total_volume_kg, doc)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (id) DO UPDATE SET
			completed_at = EXCLUDED.completed_at,
			duration_sec = EXCLUDED.duration_sec,
			total_volume_kg = EXCLUDED.total_volume_kg,
			doc = EXCLUDED.doc`,
		session.ID, userID, session.ProgramID, session.TrainingDayIndex, session.StartedAt,
		session.CompletedAt, session.DurationSeconds, session.TotalVolumeKg, doc)
	if err != nil {
		return false, fmt.Errorf("upserting session: %w", err)
	}
	inserted := tag.RowsAffected() > 0

	if _, err := tx.Exec(ctx,
		`DELETE FROM session_sets WHERE session_id = $1 AND user_id = $2`,
		session.ID, userID); err != nil {
		return false, fmt.Errorf("clearing session sets: %w", err)
	}

	if err := insertSessionSets(ctx, tx, userID, session); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing session: %w", err)
	}
	return inserted, nil
}

func insertSessionSets(ctx context.Context, tx pgx.Tx, userID int, session *models.WorkoutSession) error {
	var args []any
	var valueStrings []string
	i := 0
	for _, ex := range session.Exercises {
		for _, set := range ex.Sets {
			base := i * 9
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
			))
			args = append(args, session.ID, userID, ex.ExerciseID, set.SetNumber,
				set.WeightKg, set.Reps, set.Completed, nullableRPE(set.RPE), set.IsPersonalRecord)
			i++
		}
	}
	if len(valueStrings) == 0 {
		return nil
	}

	query := `INSERT INTO session_sets (session_id, user_id, exercise_id, set_number,
		weight_kg, reps, completed, rpe, is_pr) VALUES ` + strings.Join(valueStrings, ",")
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting session sets: %w", err)
	}
	return nil
}

func nullableRPE(rpe float64) *float64 {
	if rpe <= 0 {
		return nil
	}
	return &rpe
}

// SessionSummary is one session in a range query, without its sets.
type SessionSummary struct {
	ID            string     `json:"id"`
	ProgramID     string     `json:"program_id"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	DurationSec   int        `json:"duration_sec"`
	TotalVolumeKg float64    `json:"total_volume_kg"`
}

// QuerySessions retrieves completed sessions in a time range, newest first.
func (db *DB) QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]SessionSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, program_id, started_at, completed_at, duration_sec, total_volume_kg
		 FROM sessions
		 WHERE completed_at >= $1 AND completed_at < $2 AND user_id = $3
		 ORDER BY completed_at DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.ID, &s.ProgramID, &s.StartedAt, &s.CompletedAt, &s.DurationSec, &s.TotalVolumeKg); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetSession retrieves one session's full document by ID.
func (db *DB) GetSession(ctx context.Context, sessionID string, userID int) (*models.WorkoutSession, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT doc FROM sessions WHERE id = $1 AND user_id = $2`,
		sessionID, userID).Scan(&doc)
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	var session models.WorkoutSession
	if err := json.Unmarshal(doc, &session); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &session, nil
}
