package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Program is an immutable multi-week training template. Users reference one
// by ID as their active program; the engine never mutates it.
type Program struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Goal          string        `json:"goal" yaml:"goal"`
	Experience    string        `json:"experience" yaml:"experience"`
	DaysPerWeek   int           `json:"days_per_week" yaml:"days_per_week"`
	DurationWeeks int           `json:"duration_weeks" yaml:"duration_weeks"`
	Days          []TrainingDay `json:"days" yaml:"days"`
}

// TrainingDay is one workout template within a program's schedule.
type TrainingDay struct {
	Name      string            `json:"name" yaml:"name"`
	Exercises []ProgramExercise `json:"exercises" yaml:"exercises"`
}

// ProgramExercise prescribes one exercise within a training day.
type ProgramExercise struct {
	ExerciseID string    `json:"exercise_id" yaml:"exercise_id"`
	Scheme     SetScheme `json:"scheme" yaml:"scheme"`
}

// SetScheme is the prescription for an exercise: how many sets, a rep range
// (literal "5" or range "8-12"), rest between sets, and an optional RPE target.
type SetScheme struct {
	Sets        int     `json:"sets" yaml:"sets"`
	Reps        string  `json:"reps" yaml:"reps"`
	RestSeconds int     `json:"rest_seconds" yaml:"rest_seconds"`
	TargetRPE   float64 `json:"target_rpe,omitempty" yaml:"target_rpe,omitempty"`
}

// RepRange parses the scheme's reps string into a min/max pair.
// A literal like "5" yields (5, 5); a range like "8-12" yields (8, 12).
func (s SetScheme) RepRange() (min, max int, err error) {
	raw := strings.TrimSpace(s.Reps)
	if lo, hi, ok := strings.Cut(raw, "-"); ok {
		min, err = strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return 0, 0, fmt.Errorf("parsing rep range %q: %w", s.Reps, err)
		}
		max, err = strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return 0, 0, fmt.Errorf("parsing rep range %q: %w", s.Reps, err)
		}
		if max < min {
			return 0, 0, fmt.Errorf("rep range %q: max below min", s.Reps)
		}
		return min, max, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing reps %q: %w", s.Reps, err)
	}
	return n, n, nil
}

// Day returns the training day at index i, or nil if out of range.
func (p *Program) Day(i int) *TrainingDay {
	if i < 0 || i >= len(p.Days) {
		return nil
	}
	return &p.Days[i]
}

// ScheduleLength returns the number of training days in the program.
func (p *Program) ScheduleLength() int {
	return len(p.Days)
}
