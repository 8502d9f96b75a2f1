package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mako34/Hagate/internal/database"
)

func seedSession(t *testing.T, ctx context.Context, repo *SessionRepo) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, repo.Insert(ctx, Session{
		ID:        id,
		Workspace: "/ws",
		FileCount: 3,
		StartedAt: database.Now(),
	}))
	return id
}

func TestEventInsertAndListOrder(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	sessions := NewSessionRepo(db)
	events := NewEventRepo(db)
	sessionID := seedSession(t, ctx, sessions)

	base := database.Now()
	steps := []string{"select", "switch", "copy"}
	for i, step := range steps {
		require.NoError(t, events.Insert(ctx, ActivityEvent{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Cycle:     0,
			Step:      step,
			File:      "main.ts",
			StartLine: i,
			EndLine:   i + 2,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	t.Log("events inserted")

	got, err := events.ListBySession(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, step := range steps {
		require.Equal(t, step, got[i].Step)
		require.Equal(t, i, got[i].StartLine)
		require.Equal(t, i+2, got[i].EndLine)
		require.Equal(t, sessionID, got[i].SessionID)
	}

	n, err := events.CountBySession(ctx, sessionID)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestEventCountByStep(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	sessions := NewSessionRepo(db)
	events := NewEventRepo(db)
	sessionID := seedSession(t, ctx, sessions)

	base := database.Now()
	for i, step := range []string{"select", "select", "scroll"} {
		require.NoError(t, events.Insert(ctx, ActivityEvent{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Cycle:     i,
			Step:      step,
			File:      "a.md",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	counts, err := events.CountByStep(ctx, sessionID)
	require.NoError(t, err)
	require.Equal(t, []StepCount{{Step: "select", Count: 2}, {Step: "scroll", Count: 1}}, counts)

	// a different session sees nothing
	other := seedSession(t, ctx, sessions)
	counts, err = events.CountByStep(ctx, other)
	require.NoError(t, err)
	require.Empty(t, counts)
}

func TestEventInsertRequiresSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	events := NewEventRepo(db)

	err := events.Insert(ctx, ActivityEvent{
		ID:        uuid.NewString(),
		SessionID: "missing",
		Step:      "select",
		File:      "a.ts",
		CreatedAt: database.Now(),
	})
	require.Error(t, err)
}
