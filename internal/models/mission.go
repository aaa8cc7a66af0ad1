package models

import "time"

// Mission types. Each type accrues progress from completed sessions in its
// own way; see the engine's mission updater.
const (
	MissionPR          = "pr"
	MissionConsistency = "consistency"
	MissionVolume      = "volume"
	MissionRPE         = "rpe"
)

// Mission statuses. A mission moves active -> completed exactly once, when
// progress first reaches the target, and never reverts.
const (
	MissionActive    = "active"
	MissionCompleted = "completed"
)

// ProgressEntry is one dated delta in a mission's append-only history.
type ProgressEntry struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MissionProgress accumulates a mission's progress. Current is monotonically
// non-decreasing; History records every applied delta.
type MissionProgress struct {
	Current float64         `json:"current"`
	History []ProgressEntry `json:"history"`
}

// MissionTarget is the goal a mission counts toward. For RPE missions the
// value is a ceiling on acceptable average exertion rather than a floor.
type MissionTarget struct {
	Value float64 `json:"value"`
}

// BlockMission is a time-boxed challenge tied to a program block.
type BlockMission struct {
	ID        string          `json:"id"`
	ProgramID string          `json:"program_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Target    MissionTarget   `json:"target"`
	Progress  MissionProgress `json:"progress"`
	Status    string          `json:"status"`
}
