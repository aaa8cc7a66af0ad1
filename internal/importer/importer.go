// Package importer loads workout history exported from another tracker (or
// an earlier install) into the local store. Imported sessions go through the
// same record detection as live ones, so personal records stay consistent
// with the full history.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/claude/liftlog/internal/engine"
	"github.com/claude/liftlog/internal/localstore"
	"github.com/claude/liftlog/internal/models"
)

// Stats tracks import progress.
type Stats struct {
	SessionsImported int
	SessionsSkipped  int
	SessionsInvalid  int
	RecordsDetected  int
}

// ExportFile is the JSON document produced by an export.
type ExportFile struct {
	Sessions []models.WorkoutSession `json:"sessions"`
}

// Importer reads an export file and inserts its sessions into the local store.
type Importer struct {
	store  *localstore.Store
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(store *localstore.Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun}
}

// Import processes the export file at path. Sessions already present in the
// store are skipped; new ones are committed oldest-first so record detection
// sees history in the order it happened.
func (imp *Importer) Import(ctx context.Context, path string) (*Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading export file: %w", err)
	}

	var export ExportFile
	if err := json.Unmarshal(data, &export); err != nil {
		return &imp.stats, fmt.Errorf("parsing export file: %w", err)
	}

	history, err := imp.store.ReadHistory(ctx)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading history: %w", err)
	}
	existing := map[string]bool{}
	for _, s := range history.Sessions {
		existing[s.ID] = true
	}

	candidates := make([]models.WorkoutSession, 0, len(export.Sessions))
	for _, session := range export.Sessions {
		if session.ID == "" || session.CompletedAt == nil {
			imp.log.Warn("skipping invalid session", "id", session.ID)
			imp.stats.SessionsInvalid++
			continue
		}
		if existing[session.ID] {
			imp.stats.SessionsSkipped++
			continue
		}
		candidates = append(candidates, session)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CompletedAt.Before(*candidates[j].CompletedAt)
	})

	for i := range candidates {
		session := &candidates[i]
		session.TotalVolumeKg = engine.TotalVolume(session)

		records := engine.DetectRecords(session, history.Sessions, *session.CompletedAt)
		engine.AnnotateRecordSets(session, records)
		imp.stats.RecordsDetected += len(records)

		if !imp.dryRun {
			if err := imp.store.AppendCompletion(ctx, session, records); err != nil {
				return &imp.stats, fmt.Errorf("importing session %s: %w", session.ID, err)
			}
		}

		// Later imports must see this session as history.
		history.Sessions = append(history.Sessions, *session)
		imp.stats.SessionsImported++
	}

	return &imp.stats, nil
}
