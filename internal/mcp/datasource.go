package mcp

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]storage.SessionSummary, error)
	GetSession(ctx context.Context, sessionID string, userID int) (*models.WorkoutSession, error)
	QueryPersonalRecords(ctx context.Context, userID int) ([]models.PersonalRecord, error)
	QueryMissions(ctx context.Context, userID int, programID string) ([]models.BlockMission, error)
	GetExerciseProgression(ctx context.Context, userID int, exerciseID string, limit int) ([]storage.ProgressionRow, error)
	GetWeeklyExerciseVolume(ctx context.Context, userID int, start, end time.Time) ([]storage.ExerciseWeekVolume, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
