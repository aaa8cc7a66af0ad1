package localstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// SeedMissions inserts missions that are not yet present, leaving existing
// progress untouched. Used when a program block's missions are first loaded.
func (s *Store) SeedMissions(ctx context.Context, missions []models.BlockMission) error {
	for _, m := range missions {
		progress, err := json.Marshal(m.Progress)
		if err != nil {
			return fmt.Errorf("encoding progress for %s: %w", m.ID, err)
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO missions (id, program_id, type, title, target, status, progress)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.ProgramID, m.Type, m.Title, m.Target.Value, m.Status, string(progress)); err != nil {
			return fmt.Errorf("seeding mission %s: %w", m.ID, err)
		}
	}
	return nil
}

// ActiveMissions returns the missions still accruing progress for a program.
func (s *Store) ActiveMissions(ctx context.Context, programID string) ([]models.BlockMission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, program_id, type, title, target, status, progress
		 FROM missions WHERE program_id = ? AND status = ?`,
		programID, models.MissionActive)
	if err != nil {
		return nil, fmt.Errorf("querying missions: %w", err)
	}
	defer rows.Close()

	var missions []models.BlockMission
	for rows.Next() {
		var m models.BlockMission
		var progress string
		if err := rows.Scan(&m.ID, &m.ProgramID, &m.Type, &m.Title, &m.Target.Value, &m.Status, &progress); err != nil {
			return nil, fmt.Errorf("scanning mission: %w", err)
		}
		if err := json.Unmarshal([]byte(progress), &m.Progress); err != nil {
			return nil, fmt.Errorf("decoding mission progress: %w", err)
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

// UpdateMission stores a mission's new progress and status and queues the
// change for remote sync.
func (s *Store) UpdateMission(ctx context.Context, m models.BlockMission) error {
	progress, err := json.Marshal(m.Progress)
	if err != nil {
		return fmt.Errorf("encoding progress for %s: %w", m.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting mission tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE missions SET status = ?, progress = ? WHERE id = ?`,
		m.Status, string(progress), m.ID); err != nil {
		return fmt.Errorf("updating mission %s: %w", m.ID, err)
	}
	if err := enqueueTx(ctx, tx, KindMission, m); err != nil {
		return err
	}
	return tx.Commit()
}
