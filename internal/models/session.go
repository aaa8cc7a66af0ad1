package models

import "time"

// QuickSessionProgramID is the sentinel program ID for ad-hoc sessions not
// tied to any program. Quick sessions never advance a program cursor.
const QuickSessionProgramID = "quick"

// LoggedSet is one set within an active or completed session. Weight and reps
// of an incomplete set carry no statistical meaning; they are placeholders
// until the lifter marks the set completed.
type LoggedSet struct {
	SetNumber        int        `json:"set_number"`
	WeightKg         float64    `json:"weight_kg"`
	Reps             int        `json:"reps"`
	Completed        bool       `json:"completed"`
	RPE              float64    `json:"rpe,omitempty"`
	IsPersonalRecord bool       `json:"is_personal_record,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// LoggedExercise is an exercise within a session with its ordered sets.
// Set numbers are contiguous from 1; removal renumbers the remainder.
type LoggedExercise struct {
	ExerciseID string      `json:"exercise_id"`
	Sets       []LoggedSet `json:"sets"`
}

// WorkoutSession is a single workout. It is mutable while active and becomes
// an immutable history record once CompletedAt is set.
//
// TotalVolumeKg is derived: it always equals the sum of weight*reps over
// completed sets and is recomputed after every set mutation, never hand-set.
type WorkoutSession struct {
	ID               string           `json:"id"`
	ProgramID        string           `json:"program_id"`
	TrainingDayIndex int              `json:"training_day_index"`
	StartedAt        time.Time        `json:"started_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	DurationSeconds  int              `json:"duration_seconds,omitempty"`
	Exercises        []LoggedExercise `json:"exercises"`
	TotalVolumeKg    float64          `json:"total_volume_kg"`
}

// IsQuick reports whether the session is an ad-hoc session outside any program.
func (s *WorkoutSession) IsQuick() bool {
	return s.ProgramID == QuickSessionProgramID
}

// Exercise returns the logged exercise at index i, or nil if out of range.
func (s *WorkoutSession) Exercise(i int) *LoggedExercise {
	if i < 0 || i >= len(s.Exercises) {
		return nil
	}
	return &s.Exercises[i]
}

// PersonalRecord is the current best (weight, reps) for one exercise. At most
// one record exists per exercise; a new record replaces the old one.
type PersonalRecord struct {
	ExerciseID string    `json:"exercise_id"`
	WeightKg   float64   `json:"weight_kg"`
	Reps       int       `json:"reps"`
	AchievedAt time.Time `json:"achieved_at"`
	SessionID  string    `json:"session_id"`
}

// Cursor tracks which training day and week is next for a program.
// DayIndex is zero-based; Week starts at 1.
type Cursor struct {
	ProgramID string `json:"program_id"`
	DayIndex  int    `json:"day_index"`
	Week      int    `json:"week"`
}

// NewCursor returns the initial cursor for a freshly activated program.
func NewCursor(programID string) Cursor {
	return Cursor{ProgramID: programID, DayIndex: 0, Week: 1}
}

// WorkoutHistory is a user's completed sessions in completion order plus the
// current personal-record map keyed by exercise ID.
type WorkoutHistory struct {
	Sessions []WorkoutSession          `json:"sessions"`
	Records  map[string]PersonalRecord `json:"records"`
}
