package engine

import "github.com/mako34/Hagate/internal/editor"

// Step identifies one phase of the activity cycle.
type Step string

const (
	StepSelect  Step = "select"
	StepSwitch  Step = "switch"
	StepCopy    Step = "copy"
	StepPaste   Step = "paste"
	StepDiscard Step = "discard"
	StepScroll  Step = "scroll"
)

// StopReason records why a run ended.
type StopReason string

const (
	ReasonStopped   StopReason = "stopped"
	ReasonExhausted StopReason = "exhausted"
	ReasonError     StopReason = "error"
	ReasonTeardown  StopReason = "teardown"
)

// StepEvent describes one executed step.
type StepEvent struct {
	Cycle int
	Step  Step
	File  string
	Range editor.Range
}

// Observer receives run lifecycle and step notifications. Calls arrive on
// the engine goroutine; implementations must not block for long.
type Observer interface {
	RunStarted(sessionID, workspace string, files int)
	StepDone(sessionID string, ev StepEvent)
	RunEnded(sessionID string, reason StopReason, cycles int)
}
