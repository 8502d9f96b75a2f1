// Package engine runs the simulated coding activity: a background loop that
// opens random workspace files, selects and copies random line windows,
// pastes them into a scratch document and scrolls around, on a fixed
// cadence, until asked to stop.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mako34/Hagate/internal/editor"
	"github.com/mako34/Hagate/internal/randsel"
)

// RunState is the controller lifecycle state.
type RunState string

const (
	StateStopped RunState = "stopped"
	StateRunning RunState = "running"
)

// FileLister produces the snapshot of candidate files a run works from.
type FileLister interface {
	ListFiles(ctx context.Context) ([]string, error)
}

// Deps are the collaborators a Controller drives.
type Deps struct {
	Host      editor.Host
	Files     FileLister
	Workspace string

	Clock     Clock           // nil means the system clock
	Rand      *randsel.Source // nil means time-seeded
	Log       *slog.Logger    // nil means slog.Default()
	Observers []Observer
}

// Controller owns the run state and the activity loop. All methods are safe
// for concurrent use.
type Controller struct {
	host      editor.Host
	files     FileLister
	workspace string
	clock     Clock
	rand      *randsel.Source
	log       *slog.Logger
	observers []Observer
	timings   Timings

	mu      sync.Mutex
	state   RunState
	cancel  context.CancelFunc
	done    chan struct{}
	pending StopReason
}

// New returns a stopped controller.
func New(deps Deps, t Timings) *Controller {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Rand == nil {
		deps.Rand = randsel.New(0)
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Controller{
		host:      deps.Host,
		files:     deps.Files,
		workspace: deps.Workspace,
		clock:     deps.Clock,
		rand:      deps.Rand,
		log:       deps.Log,
		observers: deps.Observers,
		timings:   t.normalized(),
		state:     StateStopped,
	}
}

// State reports the current run state.
func (c *Controller) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start snapshots the workspace and launches the activity loop. Calling it
// while a run is active is a no-op. An empty workspace leaves the controller
// stopped.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateRunning {
		c.mu.Unlock()
		c.host.Info("hagate is already running")
		return
	}

	files, err := c.files.ListFiles(ctx)
	if err != nil {
		c.mu.Unlock()
		c.log.Error("workspace scan failed", "err", err)
		c.host.Warn("workspace scan failed: " + err.Error())
		return
	}
	if len(files) == 0 {
		c.mu.Unlock()
		c.log.Warn("no candidate files in workspace")
		c.host.Warn("nothing to do: the workspace has no files to work on")
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	session := uuid.NewString()
	c.state = StateRunning
	c.cancel = cancel
	c.done = done
	c.pending = ""
	c.mu.Unlock()

	c.log.Info("run started", "session", session, "files", len(files))
	for _, o := range c.observers {
		o.RunStarted(session, c.workspace, len(files))
	}
	go c.run(runCtx, files, session, done)
}

// Stop asks the running loop to halt. The loop observes the request at its
// next checkpoint, including mid-pause. Calling Stop while stopped is a
// no-op.
func (c *Controller) Stop() {
	c.stopWith(ReasonStopped)
}

// Shutdown stops any active run and waits for the loop to wind down. Used on
// application teardown.
func (c *Controller) Shutdown() {
	c.stopWith(ReasonTeardown)
	c.Wait()
}

// Wait blocks until the current run loop exits. It returns immediately when
// nothing is running.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (c *Controller) stopWith(reason StopReason) {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		if reason == ReasonStopped {
			c.host.Info("hagate is not running")
		}
		return
	}
	c.pending = reason
	cancel := c.cancel
	c.mu.Unlock()
	cancel()
}

func (c *Controller) run(ctx context.Context, files []string, session string, done chan struct{}) {
	defer close(done)

	reason := ReasonStopped
	cycles := 0
	for {
		err := c.runCycle(ctx, files, session, cycles)
		if err == nil {
			cycles++
			continue
		}
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			reason = c.takePending()
		case errors.Is(err, errNoCandidates):
			// Nothing left to work on; wind down without ceremony.
			reason = ReasonExhausted
		default:
			reason = ReasonError
			c.log.Error("activity cycle failed", "session", session, "cycle", cycles, "err", err)
		}
		break
	}

	c.mu.Lock()
	c.state = StateStopped
	c.cancel = nil
	c.mu.Unlock()

	c.log.Info("run ended", "session", session, "reason", reason, "cycles", cycles)
	for _, o := range c.observers {
		o.RunEnded(session, reason, cycles)
	}
}

// takePending maps a cancellation back to the Stop call that caused it. A
// cancel arriving from the parent context counts as teardown.
func (c *Controller) takePending() StopReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == "" {
		return ReasonTeardown
	}
	return c.pending
}

func (c *Controller) emit(session string, ev StepEvent) {
	c.log.Debug("step", "session", session, "cycle", ev.Cycle, "step", ev.Step, "file", ev.File)
	for _, o := range c.observers {
		o.StepDone(session, ev)
	}
}
