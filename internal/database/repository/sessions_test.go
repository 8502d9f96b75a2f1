package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mako34/Hagate/internal/database"
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

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	repo := NewSessionRepo(db)

	started := database.Now()
	s := Session{
		ID:        uuid.NewString(),
		Workspace: "/home/mako/proj",
		FileCount: 42,
		StartedAt: started,
	}
	require.NoError(t, repo.Insert(ctx, s))
	t.Log("session inserted")

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, s.ID, got.ID)
	require.Equal(t, "/home/mako/proj", got.Workspace)
	require.Equal(t, 42, got.FileCount)
	require.WithinDuration(t, started, got.StartedAt, time.Second)
	require.Nil(t, got.EndedAt)
	require.Nil(t, got.EndReason)
	require.Equal(t, 0, got.Cycles)

	ended := started.Add(90 * time.Second)
	require.NoError(t, repo.End(ctx, s.ID, "stopped", 5, ended))

	got, err = repo.Get(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.EndedAt)
	require.WithinDuration(t, ended, *got.EndedAt, time.Second)
	require.NotNil(t, got.EndReason)
	require.Equal(t, "stopped", *got.EndReason)
	require.Equal(t, 5, got.Cycles)
	t.Log("session ended with outcome")
}

func TestSessionGetMissingReturnsNil(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSessionRepo(db)

	got, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSessionListFiltersAndOrders(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	repo := NewSessionRepo(db)

	base := database.Now()
	ids := make([]string, 3)
	for i, ws := range []string{"/a", "/a", "/b"} {
		ids[i] = uuid.NewString()
		require.NoError(t, repo.Insert(ctx, Session{
			ID:        ids[i],
			Workspace: ws,
			FileCount: i,
			StartedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	all, err := repo.List(ctx, SessionFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// newest first
	require.Equal(t, ids[2], all[0].ID)
	require.Equal(t, ids[0], all[2].ID)

	onlyA, err := repo.List(ctx, SessionFilters{Workspace: "/a"})
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	for _, s := range onlyA {
		require.Equal(t, "/a", s.Workspace)
	}

	limited, err := repo.List(ctx, SessionFilters{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, ids[2], limited[0].ID)
}
