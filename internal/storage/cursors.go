package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/jackc/pgx/v5"
)

// UpsertCursor mirrors a program cursor.
func (db *DB) UpsertCursor(ctx context.Context, userID int, c models.Cursor) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO cursors (user_id, program_id, day_index, week)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (user_id, program_id) DO UPDATE SET
			day_index = EXCLUDED.day_index,
			week = EXCLUDED.week`,
		userID, c.ProgramID, c.DayIndex, c.Week)
	if err != nil {
		return fmt.Errorf("upserting cursor: %w", err)
	}
	return nil
}

// GetCursor retrieves the cursor for a program, or the initial cursor when
// the program has never been synced.
func (db *DB) GetCursor(ctx context.Context, userID int, programID string) (models.Cursor, error) {
	c := models.NewCursor(programID)
	err := db.Pool.QueryRow(ctx,
		`SELECT day_index, week FROM cursors WHERE user_id = $1 AND program_id = $2`,
		userID, programID).Scan(&c.DayIndex, &c.Week)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("querying cursor: %w", err)
	}
	return c, nil
}
