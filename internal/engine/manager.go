package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// ErrNoActiveSession is returned when Complete is called with nothing to
// complete. It is the only failure a caller can meaningfully observe; all
// other invalid inputs are silent no-ops.
var ErrNoActiveSession = errors.New("no active session")

// adHocSetCount is how many empty sets an ad-hoc session prescribes per
// exercise, matching the default a lifter would otherwise add by hand.
const adHocSetCount = 3

// Manager owns the active session and orchestrates the engine on completion:
// final volume, record detection, cursor advancement, mission progress, the
// atomic local commit, and the fire-and-forget remote dispatch.
//
// All mutating methods must be invoked sequentially; there is exactly one
// active session and no concurrent writer.
type Manager struct {
	history    HistoryRepository
	missions   MissionRepository
	dispatcher Dispatcher
	log        *slog.Logger

	now   func() time.Time
	newID func() string

	active *models.WorkoutSession
}

// NewManager creates a Manager. dispatcher may be nil when no remote mirror
// is configured.
func NewManager(history HistoryRepository, missions MissionRepository, dispatcher Dispatcher, log *slog.Logger) *Manager {
	return &Manager{
		history:    history,
		missions:   missions,
		dispatcher: dispatcher,
		log:        log,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

// Active returns the session being logged, or nil when none is active.
func (m *Manager) Active() *models.WorkoutSession {
	return m.active
}

// Resume loads a previously saved draft as the active session, so an
// interrupted workout picks up where it left off. No-op when a session is
// already active or no draft exists.
func (m *Manager) Resume(ctx context.Context) error {
	if m.active != nil {
		return nil
	}
	draft, err := m.history.LoadDraft(ctx)
	if err != nil {
		return err
	}
	m.active = draft
	return nil
}

// Start begins a session mirroring the prescription of one training day:
// each exercise gets exactly scheme.Sets empty, incomplete sets numbered
// from 1. Declines when the day does not exist or a session is already
// active. The draft is persisted immediately.
func (m *Manager) Start(ctx context.Context, program *models.Program, dayIndex int) *models.WorkoutSession {
	if m.active != nil {
		m.log.Warn("start declined: session already active", "session_id", m.active.ID)
		return nil
	}
	day := program.Day(dayIndex)
	if day == nil {
		m.log.Warn("start declined: no such training day", "program_id", program.ID, "day_index", dayIndex)
		return nil
	}

	session := &models.WorkoutSession{
		ID:               m.newID(),
		ProgramID:        program.ID,
		TrainingDayIndex: dayIndex,
		StartedAt:        m.now(),
	}
	for _, pe := range day.Exercises {
		session.Exercises = append(session.Exercises, models.LoggedExercise{
			ExerciseID: pe.ExerciseID,
			Sets:       emptySets(pe.Scheme.Sets),
		})
	}

	m.active = session
	m.persistDraft(ctx)
	return session
}

// StartAdHoc begins a quick session outside any program, with a default of
// three empty sets per exercise.
func (m *Manager) StartAdHoc(ctx context.Context, exerciseIDs []string) *models.WorkoutSession {
	if m.active != nil {
		m.log.Warn("start declined: session already active", "session_id", m.active.ID)
		return nil
	}

	session := &models.WorkoutSession{
		ID:        m.newID(),
		ProgramID: models.QuickSessionProgramID,
		StartedAt: m.now(),
	}
	for _, id := range exerciseIDs {
		session.Exercises = append(session.Exercises, models.LoggedExercise{
			ExerciseID: id,
			Sets:       emptySets(adHocSetCount),
		})
	}

	m.active = session
	m.persistDraft(ctx)
	return session
}

// SetPatch carries the fields UpdateSet applies. Nil fields are untouched.
type SetPatch struct {
	WeightKg  *float64
	Reps      *int
	RPE       *float64
	Completed *bool
}

// UpdateSet applies a patch to one set of the active session. Marking a set
// completed stamps its completion time. The cached session volume is
// recomputed and the draft persisted. Out-of-range indices are no-ops.
func (m *Manager) UpdateSet(ctx context.Context, exerciseIndex, setIndex int, patch SetPatch) {
	set := m.targetSet(exerciseIndex, setIndex)
	if set == nil {
		return
	}

	if patch.WeightKg != nil {
		set.WeightKg = *patch.WeightKg
	}
	if patch.Reps != nil {
		set.Reps = *patch.Reps
	}
	if patch.RPE != nil {
		set.RPE = *patch.RPE
	}
	if patch.Completed != nil {
		set.Completed = *patch.Completed
		if *patch.Completed {
			ts := m.now()
			set.CompletedAt = &ts
		} else {
			set.CompletedAt = nil
		}
	}

	m.active.TotalVolumeKg = TotalVolume(m.active)
	m.persistDraft(ctx)
}

// AddSet appends one empty set to an exercise, numbered after the last.
func (m *Manager) AddSet(ctx context.Context, exerciseIndex int) {
	if m.active == nil {
		return
	}
	ex := m.active.Exercise(exerciseIndex)
	if ex == nil {
		return
	}
	ex.Sets = append(ex.Sets, models.LoggedSet{SetNumber: len(ex.Sets) + 1})
	m.persistDraft(ctx)
}

// RemoveSet removes one set and renumbers the remainder contiguously from 1.
// An exercise's last remaining set cannot be removed.
func (m *Manager) RemoveSet(ctx context.Context, exerciseIndex, setIndex int) {
	if m.active == nil {
		return
	}
	ex := m.active.Exercise(exerciseIndex)
	if ex == nil || setIndex < 0 || setIndex >= len(ex.Sets) || len(ex.Sets) == 1 {
		return
	}
	ex.Sets = append(ex.Sets[:setIndex], ex.Sets[setIndex+1:]...)
	for i := range ex.Sets {
		ex.Sets[i].SetNumber = i + 1
	}
	m.active.TotalVolumeKg = TotalVolume(m.active)
	m.persistDraft(ctx)
}

// AddExercise appends an ad-hoc exercise with a single empty set.
func (m *Manager) AddExercise(ctx context.Context, exerciseID string) {
	if m.active == nil {
		return
	}
	m.active.Exercises = append(m.active.Exercises, models.LoggedExercise{
		ExerciseID: exerciseID,
		Sets:       emptySets(1),
	})
	m.persistDraft(ctx)
}

// Discard abandons the active session without touching history, cursor, or
// missions.
func (m *Manager) Discard(ctx context.Context) {
	if m.active == nil {
		return
	}
	if err := m.history.ClearDraft(ctx); err != nil {
		m.log.Warn("clearing draft failed", "error", err)
	}
	m.active = nil
}

// Completion is everything a finished workout produced.
type Completion struct {
	Session        models.WorkoutSession   `json:"session"`
	Records        []models.PersonalRecord `json:"records"`
	MissionUpdates []MissionUpdate         `json:"mission_updates,omitempty"`
	Cursor         *models.Cursor          `json:"cursor,omitempty"`
}

// Complete finalizes the active session: stamps completion time and duration,
// recomputes the final volume, detects and annotates personal records against
// history excluding this session, commits session and records atomically to
// the local store, advances the program cursor (real programs only), applies
// mission progress, clears the active state, and dispatches remote sync
// without waiting on it.
func (m *Manager) Complete(ctx context.Context, program *models.Program) (*Completion, error) {
	if m.active == nil {
		return nil, ErrNoActiveSession
	}
	session := m.active

	now := m.now()
	session.CompletedAt = &now
	session.DurationSeconds = int(now.Sub(session.StartedAt).Seconds())
	session.TotalVolumeKg = TotalVolume(session)

	history, err := m.history.ReadHistory(ctx)
	if err != nil {
		return nil, err
	}

	records := DetectRecords(session, history.Sessions, now)
	AnnotateRecordSets(session, records)

	if err := m.history.AppendCompletion(ctx, session, records); err != nil {
		return nil, err
	}

	result := &Completion{Session: *session, Records: records}

	// The workout is committed locally from here on; nothing below may
	// unwind it. Cursor, missions, and remote sync are best-effort.
	if !session.IsQuick() && program != nil && program.ID == session.ProgramID {
		if c, err := m.advanceCursor(ctx, program); err != nil {
			m.log.Warn("cursor advance failed", "program_id", program.ID, "error", err)
		} else {
			result.Cursor = c
		}
	}

	result.MissionUpdates = m.applyMissions(ctx, session, records, now)

	m.active = nil

	if m.dispatcher != nil {
		go m.dispatcher.Dispatch(context.WithoutCancel(ctx))
	}

	return result, nil
}

func (m *Manager) advanceCursor(ctx context.Context, program *models.Program) (*models.Cursor, error) {
	cursor, err := m.history.ReadCursor(ctx, program.ID)
	if err != nil {
		return nil, err
	}
	cursor = AdvanceCursor(cursor, program.ScheduleLength())
	if err := m.history.WriteCursor(ctx, cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

func (m *Manager) applyMissions(ctx context.Context, session *models.WorkoutSession, records []models.PersonalRecord, now time.Time) []MissionUpdate {
	if m.missions == nil {
		return nil
	}
	active, err := m.missions.ActiveMissions(ctx, session.ProgramID)
	if err != nil {
		m.log.Warn("listing missions failed", "program_id", session.ProgramID, "error", err)
		return nil
	}

	updates := UpdateMissions(active, session, records, now)
	var applied []MissionUpdate
	for _, u := range updates {
		if !u.Applied {
			continue
		}
		if err := m.missions.UpdateMission(ctx, u.Mission); err != nil {
			m.log.Warn("mission update failed", "mission_id", u.Mission.ID, "error", err)
			continue
		}
		applied = append(applied, u)
	}
	return applied
}

func (m *Manager) targetSet(exerciseIndex, setIndex int) *models.LoggedSet {
	if m.active == nil {
		return nil
	}
	ex := m.active.Exercise(exerciseIndex)
	if ex == nil || setIndex < 0 || setIndex >= len(ex.Sets) {
		return nil
	}
	return &ex.Sets[setIndex]
}

func (m *Manager) persistDraft(ctx context.Context) {
	if err := m.history.SaveDraft(ctx, m.active); err != nil {
		m.log.Warn("saving draft failed", "error", err)
	}
}

func emptySets(n int) []models.LoggedSet {
	sets := make([]models.LoggedSet, n)
	for i := range sets {
		sets[i].SetNumber = i + 1
	}
	return sets
}
