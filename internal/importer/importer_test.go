package importer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/localstore"
	"github.com/claude/liftlog/internal/models"
)

func openTestStore(t *testing.T) *localstore.Store {
	t.Helper()
	store, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func writeExport(t *testing.T, sessions []models.WorkoutSession) string {
	t.Helper()
	data, err := json.Marshal(ExportFile{Sessions: sessions})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func exportSession(id string, day int, weightKg float64, reps int) models.WorkoutSession {
	started := time.Date(2026, 7, day, 18, 0, 0, 0, time.UTC)
	completed := started.Add(time.Hour)
	return models.WorkoutSession{
		ID:        id,
		ProgramID: "strength-101",
		StartedAt: started, CompletedAt: &completed,
		DurationSeconds: 3600,
		Exercises: []models.LoggedExercise{
			{ExerciseID: "barbell-squat", Sets: []models.LoggedSet{
				{SetNumber: 1, WeightKg: weightKg, Reps: reps, Completed: true, CompletedAt: &completed},
			}},
		},
	}
}

func testImporter(t *testing.T, store *localstore.Store, dryRun bool) *Importer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, log, dryRun)
}

// TestImportNewSessions verifies sessions land in the store with recomputed
// volume and detected records.
func TestImportNewSessions(t *testing.T) {
	store := openTestStore(t)
	path := writeExport(t, []models.WorkoutSession{
		exportSession("import-1", 1, 100, 5),
		exportSession("import-2", 8, 110, 5),
	})

	stats, err := testImporter(t, store, false).Import(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if stats.SessionsImported != 2 {
		t.Errorf("imported = %d, want 2", stats.SessionsImported)
	}
	if stats.RecordsDetected != 2 {
		t.Errorf("records detected = %d, want 2 (initial plus improvement)", stats.RecordsDetected)
	}

	history, err := store.ReadHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(history.Sessions) != 2 {
		t.Fatalf("stored sessions = %d, want 2", len(history.Sessions))
	}
	if got := history.Sessions[0].TotalVolumeKg; got != 500 {
		t.Errorf("volume = %f, want 500", got)
	}

	pr, ok := history.Records["barbell-squat"]
	if !ok {
		t.Fatal("no squat record after import")
	}
	if pr.WeightKg != 110 || pr.SessionID != "import-2" {
		t.Errorf("record = %+v, want 110kg from import-2", pr)
	}
}

// TestImportSkipsExisting verifies a re-run of the same export imports nothing.
func TestImportSkipsExisting(t *testing.T) {
	store := openTestStore(t)
	path := writeExport(t, []models.WorkoutSession{
		exportSession("import-1", 1, 100, 5),
	})

	imp := testImporter(t, store, false)
	if _, err := imp.Import(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	stats, err := testImporter(t, store, false).Import(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SessionsImported != 0 {
		t.Errorf("imported = %d, want 0 on re-run", stats.SessionsImported)
	}
	if stats.SessionsSkipped != 1 {
		t.Errorf("skipped = %d, want 1", stats.SessionsSkipped)
	}
}

// TestImportDryRun verifies dry run counts work but writes nothing.
func TestImportDryRun(t *testing.T) {
	store := openTestStore(t)
	path := writeExport(t, []models.WorkoutSession{
		exportSession("import-1", 1, 100, 5),
	})

	stats, err := testImporter(t, store, true).Import(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SessionsImported != 1 {
		t.Errorf("imported = %d, want 1 counted in dry run", stats.SessionsImported)
	}

	history, err := store.ReadHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(history.Sessions) != 0 {
		t.Errorf("stored sessions = %d, want 0 after dry run", len(history.Sessions))
	}
}

// TestImportInvalidSessions verifies sessions without an ID or completion
// time are counted and skipped.
func TestImportInvalidSessions(t *testing.T) {
	store := openTestStore(t)
	incomplete := exportSession("import-1", 1, 100, 5)
	incomplete.CompletedAt = nil
	noID := exportSession("", 2, 80, 5)
	path := writeExport(t, []models.WorkoutSession{incomplete, noID})

	stats, err := testImporter(t, store, false).Import(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SessionsInvalid != 2 {
		t.Errorf("invalid = %d, want 2", stats.SessionsInvalid)
	}
	if stats.SessionsImported != 0 {
		t.Errorf("imported = %d, want 0", stats.SessionsImported)
	}
}

// TestImportOrdersChronologically verifies record detection sees sessions in
// completion order regardless of file order.
func TestImportOrdersChronologically(t *testing.T) {
	store := openTestStore(t)
	// Newest first in the file: the 120kg session happened after the 100kg one.
	path := writeExport(t, []models.WorkoutSession{
		exportSession("import-late", 20, 120, 5),
		exportSession("import-early", 5, 100, 5),
	})

	if _, err := testImporter(t, store, false).Import(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	history, err := store.ReadHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	pr := history.Records["barbell-squat"]
	if pr.SessionID != "import-late" || pr.WeightKg != 120 {
		t.Errorf("record = %+v, want 120kg from import-late", pr)
	}
}

// TestImportMissingFile verifies a missing export file returns a clear error.
func TestImportMissingFile(t *testing.T) {
	store := openTestStore(t)
	if _, err := testImporter(t, store, false).Import(context.Background(), "/nonexistent/export.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
