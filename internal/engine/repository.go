package engine

import (
	"context"

	"github.com/claude/liftlog/internal/models"
)

// HistoryRepository is the engine's durable store for sessions, records,
// cursors, and the active-session draft. The engine is the store's only
// writer; implementations may assume a single logical thread of control and
// need no internal locking.
type HistoryRepository interface {
	// ReadHistory returns all completed sessions in completion order plus
	// the current personal-record map.
	ReadHistory(ctx context.Context) (*models.WorkoutHistory, error)

	// AppendCompletion commits a finalized session and its new records as a
	// single atomic write, queues the matching remote operations, and clears
	// the active-session draft.
	AppendCompletion(ctx context.Context, session *models.WorkoutSession, records []models.PersonalRecord) error

	// ReadCursor returns the cursor for a program, or the initial cursor
	// (day 0, week 1) when the program has never been advanced.
	ReadCursor(ctx context.Context, programID string) (models.Cursor, error)

	// WriteCursor stores the cursor for its program.
	WriteCursor(ctx context.Context, c models.Cursor) error

	// SaveDraft persists the active session so an interrupted workout
	// survives a restart.
	SaveDraft(ctx context.Context, session *models.WorkoutSession) error

	// LoadDraft returns the saved active session, or nil when none exists.
	LoadDraft(ctx context.Context) (*models.WorkoutSession, error)

	// ClearDraft removes the active-session draft.
	ClearDraft(ctx context.Context) error
}

// MissionRepository stores block missions and their progress.
type MissionRepository interface {
	// ActiveMissions returns the missions still accruing progress for a
	// program.
	ActiveMissions(ctx context.Context, programID string) ([]models.BlockMission, error)

	// UpdateMission stores a mission's new progress and status.
	UpdateMission(ctx context.Context, m models.BlockMission) error
}

// Dispatcher pushes locally committed data to the remote mirror. Dispatch is
// fire-and-forget: the completion path never waits on it and its failures
// never unwind local state.
type Dispatcher interface {
	Dispatch(ctx context.Context)
}
