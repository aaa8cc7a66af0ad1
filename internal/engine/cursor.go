package engine

import "github.com/claude/liftlog/internal/models"

// AdvanceCursor moves the cursor one training day forward, wrapping to day 0
// and the next week when the schedule's last day is passed. Called exactly
// once per completed session; never on partial progress.
func AdvanceCursor(c models.Cursor, scheduleLength int) models.Cursor {
	if scheduleLength <= 0 {
		return c
	}
	c.DayIndex++
	if c.DayIndex >= scheduleLength {
		c.DayIndex = 0
		c.Week++
	}
	return c
}

// NextWorkout resolves the training day the cursor points at. A stored
// DayIndex can go stale when a program is edited to have fewer days, so it is
// clamped to the last valid index rather than indexing out of bounds.
func NextWorkout(program *models.Program, c models.Cursor) (dayIndex int, day *models.TrainingDay) {
	n := program.ScheduleLength()
	if n == 0 {
		return 0, nil
	}
	dayIndex = c.DayIndex
	if dayIndex >= n {
		dayIndex = n - 1
	}
	if dayIndex < 0 {
		dayIndex = 0
	}
	return dayIndex, program.Day(dayIndex)
}
