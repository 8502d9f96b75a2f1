package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mako34/Hagate/internal/database"
	"github.com/mako34/Hagate/internal/database/repository"
	"github.com/mako34/Hagate/internal/editor"
	"github.com/mako34/Hagate/internal/engine"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorderPersistsRunLifecycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	sessions := repository.NewSessionRepo(db)
	events := repository.NewEventRepo(db)
	rec := &ActivityRecorder{Sessions: sessions, Events: events, Log: quietLogger()}

	sessionID := uuid.NewString()
	rec.RunStarted(sessionID, "/ws", 9)

	got, err := sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "/ws", got.Workspace)
	require.Equal(t, 9, got.FileCount)
	require.Nil(t, got.EndedAt)
	t.Log("session row created")

	rec.StepDone(sessionID, engine.StepEvent{
		Cycle: 0, Step: engine.StepSelect, File: "a.ts",
		Range: editor.Range{Start: 3, End: 5},
	})
	rec.StepDone(sessionID, engine.StepEvent{Cycle: 0, Step: engine.StepSwitch, File: "b.ts"})

	evs, err := events.ListBySession(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	require.Equal(t, "select", evs[0].Step)
	require.Equal(t, 3, evs[0].StartLine)
	require.Equal(t, 5, evs[0].EndLine)
	require.Equal(t, "switch", evs[1].Step)
	require.Equal(t, "b.ts", evs[1].File)
	t.Log("step events recorded in order")

	rec.RunEnded(sessionID, engine.ReasonStopped, 1)

	got, err = sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.EndedAt)
	require.NotNil(t, got.EndReason)
	require.Equal(t, "stopped", *got.EndReason)
	require.Equal(t, 1, got.Cycles)
	t.Log("outcome stamped")
}

func TestRecorderSurvivesPersistenceFailure(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	rec := &ActivityRecorder{
		Sessions: repository.NewSessionRepo(db),
		Events:   repository.NewEventRepo(db),
		Log:      quietLogger(),
	}

	// no session row exists, so the FK rejects the event; the observer
	// callback must swallow it
	rec.StepDone("missing", engine.StepEvent{Step: engine.StepSelect, File: "a.ts"})
}
