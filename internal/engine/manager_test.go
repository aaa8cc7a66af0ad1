package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// fakeHistory is an in-memory HistoryRepository for manager tests.
type fakeHistory struct {
	history models.WorkoutHistory
	cursors map[string]models.Cursor
	draft   *models.WorkoutSession

	appendCalls int
	draftSaves  int
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{
		history: models.WorkoutHistory{Records: map[string]models.PersonalRecord{}},
		cursors: map[string]models.Cursor{},
	}
}

func (f *fakeHistory) ReadHistory(ctx context.Context) (*models.WorkoutHistory, error) {
	h := f.history
	return &h, nil
}

func (f *fakeHistory) AppendCompletion(ctx context.Context, s *models.WorkoutSession, records []models.PersonalRecord) error {
	f.appendCalls++
	f.history.Sessions = append(f.history.Sessions, *s)
	for _, pr := range records {
		f.history.Records[pr.ExerciseID] = pr
	}
	f.draft = nil
	return nil
}

func (f *fakeHistory) ReadCursor(ctx context.Context, programID string) (models.Cursor, error) {
	if c, ok := f.cursors[programID]; ok {
		return c, nil
	}
	return models.NewCursor(programID), nil
}

func (f *fakeHistory) WriteCursor(ctx context.Context, c models.Cursor) error {
	f.cursors[c.ProgramID] = c
	return nil
}

func (f *fakeHistory) SaveDraft(ctx context.Context, s *models.WorkoutSession) error {
	f.draftSaves++
	f.draft = s
	return nil
}

func (f *fakeHistory) LoadDraft(ctx context.Context) (*models.WorkoutSession, error) {
	return f.draft, nil
}

func (f *fakeHistory) ClearDraft(ctx context.Context) error {
	f.draft = nil
	return nil
}

// fakeMissions is an in-memory MissionRepository.
type fakeMissions struct {
	active  []models.BlockMission
	updated []models.BlockMission
}

func (f *fakeMissions) ActiveMissions(ctx context.Context, programID string) ([]models.BlockMission, error) {
	if programID == models.QuickSessionProgramID {
		return nil, nil
	}
	return f.active, nil
}

func (f *fakeMissions) UpdateMission(ctx context.Context, m models.BlockMission) error {
	f.updated = append(f.updated, m)
	return nil
}

type countingDispatcher struct{ calls atomic.Int32 }

func (d *countingDispatcher) Dispatch(ctx context.Context) { d.calls.Add(1) }

func testProgram() *models.Program {
	return &models.Program{
		ID:   "strength-101",
		Name: "Strength 101",
		Days: []models.TrainingDay{
			{Name: "Day A", Exercises: []models.ProgramExercise{
				{ExerciseID: "squat", Scheme: models.SetScheme{Sets: 3, Reps: "5", RestSeconds: 180}},
				{ExerciseID: "bench-press", Scheme: models.SetScheme{Sets: 3, Reps: "8-12", RestSeconds: 120}},
			}},
			{Name: "Day B", Exercises: []models.ProgramExercise{
				{ExerciseID: "deadlift", Scheme: models.SetScheme{Sets: 2, Reps: "5", RestSeconds: 240}},
			}},
		},
	}
}

func testManager(h *fakeHistory, ms *fakeMissions, d Dispatcher) *Manager {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	// A nil *fakeMissions must become a nil interface, not a typed nil,
	// so the manager's missions == nil guard still applies.
	var missions MissionRepository
	if ms != nil {
		missions = ms
	}
	m := NewManager(h, missions, d, log)
	m.newID = func() string { return "session-1" }
	return m
}

func ptr[T any](v T) *T { return &v }

// TestStartMirrorsPrescription verifies Start builds one empty, incomplete
// set per prescribed scheme.Sets, numbered from 1, and persists the draft.
func TestStartMirrorsPrescription(t *testing.T) {
	h := newFakeHistory()
	m := testManager(h, nil, nil)
	ctx := context.Background()

	session := m.Start(ctx, testProgram(), 0)
	if session == nil {
		t.Fatal("Start returned nil")
	}
	if len(session.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(session.Exercises))
	}
	if got := len(session.Exercises[0].Sets); got != 3 {
		t.Errorf("squat sets = %d, want 3", got)
	}
	for i, set := range session.Exercises[0].Sets {
		if set.SetNumber != i+1 || set.Completed || set.WeightKg != 0 {
			t.Errorf("set %d = %+v, want empty incomplete set numbered %d", i, set, i+1)
		}
	}
	if h.draft == nil {
		t.Error("draft not persisted on start")
	}
}

// TestStartInvalidDay verifies a missing training day declines the start.
func TestStartInvalidDay(t *testing.T) {
	m := testManager(newFakeHistory(), nil, nil)
	if s := m.Start(context.Background(), testProgram(), 7); s != nil {
		t.Error("Start with out-of-range day should decline")
	}
	if m.Active() != nil {
		t.Error("no session should be active")
	}
}

// TestStartAdHoc verifies quick sessions get the sentinel program ID and
// three sets per exercise.
func TestStartAdHoc(t *testing.T) {
	m := testManager(newFakeHistory(), nil, nil)
	session := m.StartAdHoc(context.Background(), []string{"curl", "dip"})
	if session == nil {
		t.Fatal("StartAdHoc returned nil")
	}
	if !session.IsQuick() {
		t.Errorf("ProgramID = %q, want quick sentinel", session.ProgramID)
	}
	for _, ex := range session.Exercises {
		if len(ex.Sets) != 3 {
			t.Errorf("%s sets = %d, want 3", ex.ExerciseID, len(ex.Sets))
		}
	}
}

// TestUpdateSetRecomputesVolume verifies edits recompute the cached volume
// and completion stamps a timestamp.
func TestUpdateSetRecomputesVolume(t *testing.T) {
	h := newFakeHistory()
	m := testManager(h, nil, nil)
	ctx := context.Background()
	m.Start(ctx, testProgram(), 0)

	m.UpdateSet(ctx, 0, 0, SetPatch{WeightKg: ptr(140.0), Reps: ptr(5), Completed: ptr(true)})

	session := m.Active()
	if session.TotalVolumeKg != 700 {
		t.Errorf("TotalVolumeKg = %v, want 700", session.TotalVolumeKg)
	}
	if session.Exercises[0].Sets[0].CompletedAt == nil {
		t.Error("completing a set must stamp its timestamp")
	}

	// Un-completing removes the set from the volume again.
	m.UpdateSet(ctx, 0, 0, SetPatch{Completed: ptr(false)})
	if m.Active().TotalVolumeKg != 0 {
		t.Errorf("TotalVolumeKg = %v after uncomplete, want 0", m.Active().TotalVolumeKg)
	}
}

// TestUpdateSetOutOfRange verifies out-of-range indices are silent no-ops.
func TestUpdateSetOutOfRange(t *testing.T) {
	h := newFakeHistory()
	m := testManager(h, nil, nil)
	ctx := context.Background()
	m.Start(ctx, testProgram(), 0)
	saves := h.draftSaves

	m.UpdateSet(ctx, 9, 0, SetPatch{WeightKg: ptr(100.0)})
	m.UpdateSet(ctx, 0, 9, SetPatch{WeightKg: ptr(100.0)})
	m.UpdateSet(ctx, -1, -1, SetPatch{WeightKg: ptr(100.0)})

	if h.draftSaves != saves {
		t.Error("invalid updates must not persist anything")
	}
}

// TestAddRemoveSetRenumbers verifies add/remove keep set numbers contiguous
// from 1 and the last set cannot be removed.
func TestAddRemoveSetRenumbers(t *testing.T) {
	m := testManager(newFakeHistory(), nil, nil)
	ctx := context.Background()
	m.Start(ctx, testProgram(), 1) // deadlift, 2 sets

	m.AddSet(ctx, 0)
	sets := m.Active().Exercises[0].Sets
	if len(sets) != 3 || sets[2].SetNumber != 3 {
		t.Fatalf("after add: %d sets, last numbered %d; want 3/3", len(sets), sets[len(sets)-1].SetNumber)
	}

	m.RemoveSet(ctx, 0, 1)
	sets = m.Active().Exercises[0].Sets
	if len(sets) != 2 {
		t.Fatalf("after remove: %d sets, want 2", len(sets))
	}
	for i, s := range sets {
		if s.SetNumber != i+1 {
			t.Errorf("set %d numbered %d, want %d", i, s.SetNumber, i+1)
		}
	}

	m.RemoveSet(ctx, 0, 0)
	m.RemoveSet(ctx, 0, 0)
	if got := len(m.Active().Exercises[0].Sets); got != 1 {
		t.Errorf("last set removed: %d sets remain, want 1", got)
	}
}

// TestAddExercise verifies ad-hoc exercises join the session with one empty set.
func TestAddExercise(t *testing.T) {
	m := testManager(newFakeHistory(), nil, nil)
	ctx := context.Background()
	m.Start(ctx, testProgram(), 1)

	m.AddExercise(ctx, "barbell-row")
	session := m.Active()
	last := session.Exercises[len(session.Exercises)-1]
	if last.ExerciseID != "barbell-row" || len(last.Sets) != 1 || last.Sets[0].SetNumber != 1 {
		t.Errorf("added exercise = %+v, want barbell-row with one set numbered 1", last)
	}
}

// TestCompleteFullFlow verifies completion stamps duration, commits history
// atomically, detects records, advances the cursor, applies missions, clears
// the active session, and dispatches sync.
func TestCompleteFullFlow(t *testing.T) {
	h := newFakeHistory()
	ms := &fakeMissions{active: []models.BlockMission{
		mission("m1", models.MissionConsistency, 10, 0),
		mission("m2", models.MissionVolume, 100000, 0),
	}}
	d := &countingDispatcher{}
	m := testManager(h, ms, d)

	started := time.Date(2026, 8, 29, 17, 0, 0, 0, time.UTC)
	finished := started.Add(55 * time.Minute)
	m.now = func() time.Time { return started }

	ctx := context.Background()
	program := testProgram()
	m.Start(ctx, program, 0)
	m.UpdateSet(ctx, 0, 0, SetPatch{WeightKg: ptr(140.0), Reps: ptr(5), Completed: ptr(true)})

	m.now = func() time.Time { return finished }
	result, err := m.Complete(ctx, program)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if result.Session.DurationSeconds != 55*60 {
		t.Errorf("duration = %d, want %d", result.Session.DurationSeconds, 55*60)
	}
	if result.Session.CompletedAt == nil || !result.Session.CompletedAt.Equal(finished) {
		t.Errorf("CompletedAt = %v, want %v", result.Session.CompletedAt, finished)
	}
	if result.Session.TotalVolumeKg != 700 {
		t.Errorf("final volume = %v, want 700", result.Session.TotalVolumeKg)
	}

	if len(result.Records) != 1 || result.Records[0].ExerciseID != "squat" {
		t.Fatalf("records = %+v, want one squat record", result.Records)
	}
	if !result.Session.Exercises[0].Sets[0].IsPersonalRecord {
		t.Error("record set not annotated")
	}

	if h.appendCalls != 1 {
		t.Errorf("appendCalls = %d, want 1", h.appendCalls)
	}
	if result.Cursor == nil || result.Cursor.DayIndex != 1 || result.Cursor.Week != 1 {
		t.Errorf("cursor = %+v, want day 1 week 1", result.Cursor)
	}
	if len(result.MissionUpdates) != 2 {
		t.Errorf("mission updates = %d, want 2 (consistency + volume)", len(result.MissionUpdates))
	}
	if m.Active() != nil {
		t.Error("active session must be cleared")
	}

	deadline := time.After(time.Second)
	for d.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("dispatcher never invoked")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

// TestCompleteNoActiveSession verifies the one observable failure.
func TestCompleteNoActiveSession(t *testing.T) {
	m := testManager(newFakeHistory(), nil, nil)
	if _, err := m.Complete(context.Background(), testProgram()); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("err = %v, want ErrNoActiveSession", err)
	}
}

// TestCompleteQuickSessionSkipsCursor verifies ad-hoc sessions never advance
// a program cursor.
func TestCompleteQuickSessionSkipsCursor(t *testing.T) {
	h := newFakeHistory()
	m := testManager(h, &fakeMissions{}, nil)
	ctx := context.Background()

	m.StartAdHoc(ctx, []string{"curl"})
	m.UpdateSet(ctx, 0, 0, SetPatch{WeightKg: ptr(20.0), Reps: ptr(12), Completed: ptr(true)})

	result, err := m.Complete(ctx, testProgram())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if result.Cursor != nil {
		t.Error("quick session must not advance any cursor")
	}
	if len(h.cursors) != 0 {
		t.Errorf("cursors written = %v, want none", h.cursors)
	}
}

// TestCompleteExcludesOwnSession verifies record detection runs against
// history excluding the session being completed: repeating the same best set
// in the next session yields no second record.
func TestCompleteExcludesOwnSession(t *testing.T) {
	h := newFakeHistory()
	m := testManager(h, nil, nil)
	ctx := context.Background()
	program := testProgram()

	m.Start(ctx, program, 0)
	m.UpdateSet(ctx, 0, 0, SetPatch{WeightKg: ptr(140.0), Reps: ptr(5), Completed: ptr(true)})
	first, err := m.Complete(ctx, program)
	if err != nil {
		t.Fatalf("first Complete: %v", err)
	}
	if len(first.Records) != 1 {
		t.Fatalf("first session records = %d, want 1", len(first.Records))
	}

	m.newID = func() string { return "session-2" }
	m.Start(ctx, program, 0)
	m.UpdateSet(ctx, 0, 0, SetPatch{WeightKg: ptr(140.0), Reps: ptr(5), Completed: ptr(true)})
	second, err := m.Complete(ctx, program)
	if err != nil {
		t.Fatalf("second Complete: %v", err)
	}
	if len(second.Records) != 0 {
		t.Errorf("second session records = %d, want 0 (tie with own history)", len(second.Records))
	}
}

// TestDiscard verifies abandonment clears the draft without touching history.
func TestDiscard(t *testing.T) {
	h := newFakeHistory()
	m := testManager(h, nil, nil)
	ctx := context.Background()

	m.Start(ctx, testProgram(), 0)
	m.Discard(ctx)

	if m.Active() != nil {
		t.Error("active session not cleared")
	}
	if h.draft != nil {
		t.Error("draft not cleared")
	}
	if len(h.history.Sessions) != 0 {
		t.Error("discard must not append to history")
	}
}

// TestResume verifies a saved draft becomes the active session again.
func TestResume(t *testing.T) {
	h := newFakeHistory()
	h.draft = &models.WorkoutSession{ID: "draft-1", ProgramID: "strength-101"}
	m := testManager(h, nil, nil)

	if err := m.Resume(context.Background()); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if m.Active() == nil || m.Active().ID != "draft-1" {
		t.Errorf("active = %+v, want draft-1", m.Active())
	}
}
