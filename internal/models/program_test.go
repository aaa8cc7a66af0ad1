package models

import "testing"

// TestRepRange verifies parsing of literal and ranged rep prescriptions.
func TestRepRange(t *testing.T) {
	tests := []struct {
		name    string
		reps    string
		wantMin int
		wantMax int
		wantErr bool
	}{
		{name: "literal", reps: "5", wantMin: 5, wantMax: 5},
		{name: "range", reps: "8-12", wantMin: 8, wantMax: 12},
		{name: "range with spaces", reps: " 6 - 10 ", wantMin: 6, wantMax: 10},
		{name: "inverted range", reps: "12-8", wantErr: true},
		{name: "garbage", reps: "amrap", wantErr: true},
		{name: "empty", reps: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max, err := SetScheme{Reps: tt.reps}.RepRange()
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got (%d, %d)", min, max)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if min != tt.wantMin || max != tt.wantMax {
				t.Errorf("got (%d, %d), want (%d, %d)", min, max, tt.wantMin, tt.wantMax)
			}
		})
	}
}

// TestProgramDay verifies day lookup returns nil outside the schedule.
func TestProgramDay(t *testing.T) {
	p := &Program{Days: []TrainingDay{{Name: "Upper"}, {Name: "Lower"}}}

	if d := p.Day(0); d == nil || d.Name != "Upper" {
		t.Errorf("Day(0) = %v, want Upper", d)
	}
	if d := p.Day(1); d == nil || d.Name != "Lower" {
		t.Errorf("Day(1) = %v, want Lower", d)
	}
	if d := p.Day(2); d != nil {
		t.Errorf("Day(2) = %v, want nil", d)
	}
	if d := p.Day(-1); d != nil {
		t.Errorf("Day(-1) = %v, want nil", d)
	}
	if got := p.ScheduleLength(); got != 2 {
		t.Errorf("ScheduleLength() = %d, want 2", got)
	}
}

// TestNewCursor verifies the initial cursor position.
func TestNewCursor(t *testing.T) {
	c := NewCursor("strength-101")
	if c.ProgramID != "strength-101" {
		t.Errorf("program = %q", c.ProgramID)
	}
	if c.DayIndex != 0 || c.Week != 1 {
		t.Errorf("cursor = (%d, %d), want (0, 1)", c.DayIndex, c.Week)
	}
}

// TestIsQuick verifies the ad-hoc session sentinel.
func TestIsQuick(t *testing.T) {
	quick := WorkoutSession{ProgramID: QuickSessionProgramID}
	if !quick.IsQuick() {
		t.Error("quick session not detected")
	}
	programmed := WorkoutSession{ProgramID: "strength-101"}
	if programmed.IsQuick() {
		t.Error("programmed session misdetected as quick")
	}
}
