package engine

import "time"

// Timings holds every pause and window size of the activity cycle.
type Timings struct {
	SelectPause  time.Duration
	SwitchPause  time.Duration
	CopyPause    time.Duration
	PastePause   time.Duration
	DiscardPause time.Duration

	SelectionLines int
	CopyLines      int

	ScrollBudget   time.Duration
	ScrollInterval time.Duration
	ScrollStride   int
}

// DefaultTimings returns the stock cadence.
func DefaultTimings() Timings {
	return Timings{
		SelectPause:    2 * time.Second,
		SwitchPause:    3 * time.Second,
		CopyPause:      500 * time.Millisecond,
		PastePause:     6 * time.Second,
		DiscardPause:   500 * time.Millisecond,
		SelectionLines: 3,
		CopyLines:      5,
		ScrollBudget:   5 * time.Second,
		ScrollInterval: 200 * time.Millisecond,
		ScrollStride:   10,
	}
}

// normalized fills zero or negative fields from the defaults.
func (t Timings) normalized() Timings {
	def := DefaultTimings()
	if t.SelectPause <= 0 {
		t.SelectPause = def.SelectPause
	}
	if t.SwitchPause <= 0 {
		t.SwitchPause = def.SwitchPause
	}
	if t.CopyPause <= 0 {
		t.CopyPause = def.CopyPause
	}
	if t.PastePause <= 0 {
		t.PastePause = def.PastePause
	}
	if t.DiscardPause <= 0 {
		t.DiscardPause = def.DiscardPause
	}
	if t.SelectionLines < 1 {
		t.SelectionLines = def.SelectionLines
	}
	if t.CopyLines < 1 {
		t.CopyLines = def.CopyLines
	}
	if t.ScrollBudget <= 0 {
		t.ScrollBudget = def.ScrollBudget
	}
	if t.ScrollInterval <= 0 {
		t.ScrollInterval = def.ScrollInterval
	}
	if t.ScrollStride < 1 {
		t.ScrollStride = def.ScrollStride
	}
	return t
}
