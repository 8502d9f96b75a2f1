package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mako34/Hagate/internal/database"
	"github.com/mako34/Hagate/internal/database/repository"
	"github.com/mako34/Hagate/internal/engine"
)

// ActivityRecorder persists engine runs as session and event history.
type ActivityRecorder struct {
	Sessions *repository.SessionRepo
	Events   *repository.EventRepo
	Log      *slog.Logger
}

// BeginSession records the start of a run.
func (r *ActivityRecorder) BeginSession(ctx context.Context, id, workspace string, files int) error {
	return r.Sessions.Insert(ctx, repository.Session{
		ID:        id,
		Workspace: workspace,
		FileCount: files,
		StartedAt: database.Now(),
	})
}

// RecordStep records one completed sequencer step.
func (r *ActivityRecorder) RecordStep(ctx context.Context, sessionID string, ev engine.StepEvent) error {
	return r.Events.Insert(ctx, repository.ActivityEvent{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Cycle:     ev.Cycle,
		Step:      string(ev.Step),
		File:      ev.File,
		StartLine: ev.Range.Start,
		EndLine:   ev.Range.End,
		CreatedAt: database.Now(),
	})
}

// EndSession stamps the run's outcome.
func (r *ActivityRecorder) EndSession(ctx context.Context, sessionID string, reason engine.StopReason, cycles int) error {
	return r.Sessions.End(ctx, sessionID, string(reason), cycles, database.Now())
}

// The engine drives the recorder through its observer interface. Writes use
// a detached context so the final records survive run cancellation, and
// failures are logged rather than propagated into the run.

func (r *ActivityRecorder) RunStarted(sessionID, workspace string, files int) {
	ctx, cancel := recorderContext()
	defer cancel()
	if err := r.BeginSession(ctx, sessionID, workspace, files); err != nil {
		r.Log.Error("record session start", "session", sessionID, "err", err)
	}
}

func (r *ActivityRecorder) StepDone(sessionID string, ev engine.StepEvent) {
	ctx, cancel := recorderContext()
	defer cancel()
	if err := r.RecordStep(ctx, sessionID, ev); err != nil {
		r.Log.Error("record step", "session", sessionID, "step", ev.Step, "err", err)
	}
}

func (r *ActivityRecorder) RunEnded(sessionID string, reason engine.StopReason, cycles int) {
	ctx, cancel := recorderContext()
	defer cancel()
	if err := r.EndSession(ctx, sessionID, reason, cycles); err != nil {
		r.Log.Error("record session end", "session", sessionID, "err", err)
	}
}

func recorderContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
