package repository

import "time"

// Session represents one engine run.
type Session struct {
	ID        string
	Workspace string
	FileCount int
	StartedAt time.Time
	EndedAt   *time.Time
	EndReason *string
	Cycles    int
}

// ActivityEvent represents one completed sequencer step.
type ActivityEvent struct {
	ID        string
	SessionID string
	Cycle     int
	Step      string
	File      string
	StartLine int
	EndLine   int
	CreatedAt time.Time
}

// StepCount is a per-step aggregate for the sessions view.
type StepCount struct {
	Step  string
	Count int
}
