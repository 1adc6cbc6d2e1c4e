package replica

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/intervals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE replica_timers (
  id TEXT PRIMARY KEY,
  deleted INTEGER NOT NULL DEFAULT 0,
  updated_at INTEGER NOT NULL,
  payload TEXT NOT NULL
);
CREATE TABLE replica_history (
  id TEXT PRIMARY KEY,
  deleted INTEGER NOT NULL DEFAULT 0,
  updated_at INTEGER NOT NULL,
  payload TEXT NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func timer(id, name string, updatedAt time.Time) models.Timer {
	return models.Timer{
		ID: id, Name: name, Rounds: 3,
		Intervals: []models.Interval{{ID: id + "-i1", Name: "work", Duration: 30, Position: 0}},
		UpdatedAt: updatedAt,
	}
}

func TestSaveAndListTimers(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, r.SaveTimers(ctx, []models.Timer{
		timer("t1", "old", now.Add(-time.Hour)),
		timer("t2", "new", now),
	}))

	timers, err := r.Timers(ctx)
	require.NoError(t, err)
	require.Len(t, timers, 2)
	assert.Equal(t, "t2", timers[0].ID)
	assert.Equal(t, "t1", timers[1].ID)
	assert.Equal(t, "work", timers[0].Intervals[0].Name)
	assert.Equal(t, now, timers[0].UpdatedAt)
}

func TestSaveTimers_ReplacesById(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, r.SaveTimers(ctx, []models.Timer{timer("t1", "before", now)}))
	require.NoError(t, r.SaveTimers(ctx, []models.Timer{timer("t1", "after", now.Add(time.Second))}))

	timers, err := r.Timers(ctx)
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.Equal(t, "after", timers[0].Name)
}

func TestTombstonesSurviveInReplica(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	deleted := timer("t1", "gone", now)
	deleted.DeletedAt = &now
	require.NoError(t, r.SaveTimers(ctx, []models.Timer{deleted}))

	timers, err := r.Timers(ctx)
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.True(t, timers[0].Deleted())
}

func TestHistoryRoundTrip(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, r.SaveHistory(ctx, []models.HistoryEntry{{
		ID: "h1", TimerID: "t1", TimerName: "tabata",
		TotalDuration: 240, ElapsedDuration: 120,
		StartedAt: now, UpdatedAt: now,
	}}))

	entries, err := r.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 120, entries[0].ElapsedDuration)
	assert.Equal(t, now, entries[0].StartedAt)
}

func TestReplaceAll(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, r.SaveTimers(ctx, []models.Timer{timer("t1", "a", now)}))
	require.NoError(t, r.SaveHistory(ctx, []models.HistoryEntry{{ID: "h1", UpdatedAt: now}}))

	require.NoError(t, r.ReplaceAll(ctx,
		[]models.Timer{timer("t2", "b", now)},
		nil))

	timers, err := r.Timers(ctx)
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.Equal(t, "t2", timers[0].ID)

	entries, err := r.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
