package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// ReadHistory returns completed sessions in completion order plus the current
// personal-record map.
func (s *Store) ReadHistory(ctx context.Context) (*models.WorkoutHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM sessions ORDER BY completed_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	history := &models.WorkoutHistory{Records: map[string]models.PersonalRecord{}}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		var session models.WorkoutSession
		if err := json.Unmarshal([]byte(doc), &session); err != nil {
			return nil, fmt.Errorf("decoding session: %w", err)
		}
		history.Sessions = append(history.Sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prRows, err := s.db.QueryContext(ctx,
		`SELECT exercise_id, weight_kg, reps, achieved_at, session_id FROM personal_records`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer prRows.Close()

	for prRows.Next() {
		var pr models.PersonalRecord
		if err := prRows.Scan(&pr.ExerciseID, &pr.WeightKg, &pr.Reps, &pr.AchievedAt, &pr.SessionID); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		history.Records[pr.ExerciseID] = pr
	}
	return history, prRows.Err()
}

// AppendCompletion commits a finalized session, its new records, and the
// matching outbox entries in a single transaction, then clears the draft.
// Re-running with the same session ID is safe: the session row is replaced,
// record upserts are keyed by exercise.
func (s *Store) AppendCompletion(ctx context.Context, session *models.WorkoutSession, records []models.PersonalRecord) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting completion tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (id, program_id, completed_at, doc) VALUES (?, ?, ?, ?)`,
		session.ID, session.ProgramID, session.CompletedAt, string(doc)); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	for _, pr := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO personal_records (exercise_id, weight_kg, reps, achieved_at, session_id)
			 VALUES (?, ?, ?, ?, ?)`,
			pr.ExerciseID, pr.WeightKg, pr.Reps, pr.AchievedAt, pr.SessionID); err != nil {
			return fmt.Errorf("upserting record for %s: %w", pr.ExerciseID, err)
		}
	}

	if err := enqueueTx(ctx, tx, KindSession, session); err != nil {
		return err
	}
	if len(records) > 0 {
		if err := enqueueTx(ctx, tx, KindRecords, records); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM draft`); err != nil {
		return fmt.Errorf("clearing draft: %w", err)
	}

	return tx.Commit()
}

// ReadCursor returns the stored cursor for a program, or the initial cursor
// when the program has never advanced.
func (s *Store) ReadCursor(ctx context.Context, programID string) (models.Cursor, error) {
	c := models.NewCursor(programID)
	err := s.db.QueryRowContext(ctx,
		`SELECT day_index, week FROM cursors WHERE program_id = ?`, programID,
	).Scan(&c.DayIndex, &c.Week)
	if errors.Is(err, sql.ErrNoRows) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("reading cursor: %w", err)
	}
	return c, nil
}

// WriteCursor stores the cursor and queues it for remote sync.
func (s *Store) WriteCursor(ctx context.Context, c models.Cursor) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting cursor tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO cursors (program_id, day_index, week) VALUES (?, ?, ?)`,
		c.ProgramID, c.DayIndex, c.Week); err != nil {
		return fmt.Errorf("writing cursor: %w", err)
	}
	if err := enqueueTx(ctx, tx, KindCursor, c); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveDraft persists the active session. A nil session clears the draft.
func (s *Store) SaveDraft(ctx context.Context, session *models.WorkoutSession) error {
	if session == nil {
		return s.ClearDraft(ctx)
	}
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO draft (id, doc) VALUES (1, ?)`, string(doc)); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// LoadDraft returns the saved active session, or nil when none exists.
func (s *Store) LoadDraft(ctx context.Context) (*models.WorkoutSession, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM draft WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading draft: %w", err)
	}
	var session models.WorkoutSession
	if err := json.Unmarshal([]byte(doc), &session); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}
	return &session, nil
}

// ClearDraft removes the active-session draft.
func (s *Store) ClearDraft(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM draft`); err != nil {
		return fmt.Errorf("clearing draft: %w", err)
	}
	return nil
}
