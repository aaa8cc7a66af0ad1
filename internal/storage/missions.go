package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// UpsertMission mirrors one mission's definition, progress, and status.
func (db *DB) UpsertMission(ctx context.Context, userID int, m models.BlockMission) error {
	progress, err := json.Marshal(m.Progress)
	if err != nil {
		return fmt.Errorf("encoding mission progress: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO missions (id, user_id, program_id, type, title, target, status, progress)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			progress = EXCLUDED.progress`,
		m.ID, userID, m.ProgramID, m.Type, m.Title, m.Target.Value, m.Status, progress)
	if err != nil {
		return fmt.Errorf("upserting mission %s: %w", m.ID, err)
	}
	return nil
}

// QueryMissions retrieves a user's missions for a program (all statuses).
func (db *DB) QueryMissions(ctx context.Context, userID int, programID string) ([]models.BlockMission, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, program_id, type, title, target, status, progress
		 FROM missions
		 WHERE user_id = $1 AND program_id = $2
		 ORDER BY id`,
		userID, programID)
	if err != nil {
		return nil, fmt.Errorf("querying missions: %w", err)
	}
	defer rows.Close()

	var result []models.BlockMission
	for rows.Next() {
		var m models.BlockMission
		var progress []byte
		if err := rows.Scan(&m.ID, &m.ProgramID, &m.Type, &m.Title, &m.Target.Value, &m.Status, &progress); err != nil {
			return nil, fmt.Errorf("scanning mission: %w", err)
		}
		if err := json.Unmarshal(progress, &m.Progress); err != nil {
			return nil, fmt.Errorf("decoding mission progress: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
