package timers

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/intervals/internal/common"
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
CREATE TABLE timers (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  rounds INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  deleted_at INTEGER
);
CREATE TABLE timer_intervals (
  id TEXT PRIMARY KEY,
  timer_id TEXT NOT NULL,
  name TEXT NOT NULL,
  duration INTEGER NOT NULL,
  color TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func sampleTimer(id, userID string, updatedAt time.Time) *models.Timer {
	return &models.Timer{
		ID:     id,
		UserID: userID,
		Name:   "Tabata",
		Rounds: 8,
		Intervals: []models.Interval{
			{ID: id + "-i0", Name: "Work", Duration: 20, Color: "#ff0000", Position: 0},
			{ID: id + "-i1", Name: "Rest", Duration: 10, Color: "#00ff00", Position: 1},
		},
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func intervalCount(t *testing.T, db *sql.DB, timerID string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM timer_intervals WHERE timer_id=?`, timerID).Scan(&n))
	return n
}

func TestUpsert_IdempotentIntervalReplace(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	tm := sampleTimer("t1", "alice", time.Now())
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Upsert(ctx, tm))
	}

	// interval rows after N uploads equal the rows after 1 upload
	assert.Equal(t, 2, intervalCount(t, db, "t1"))

	got, err := r.Get(ctx, "alice", "t1")
	require.NoError(t, err)
	require.Len(t, got.Intervals, 2)
	assert.Equal(t, "Work", got.Intervals[0].Name)
	assert.Equal(t, 1, got.Intervals[1].Position)
}

func TestUpsert_PreservesCreatedAt(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	created := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
	tm := sampleTimer("t1", "alice", created)
	require.NoError(t, r.Upsert(ctx, tm))

	// overwrite with a zero created_at, as a client echoing server state does
	tm2 := sampleTimer("t1", "alice", time.Now())
	tm2.CreatedAt = time.Time{}
	tm2.Name = "Tabata v2"
	require.NoError(t, r.Upsert(ctx, tm2))

	got, err := r.Get(ctx, "alice", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Tabata v2", got.Name)
	assert.Equal(t, created.UnixMilli(), got.CreatedAt.UnixMilli())
}

func TestSoftDelete_Visibility(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	before := time.Now().Add(-time.Minute)
	require.NoError(t, r.Upsert(ctx, sampleTimer("t1", "alice", before)))

	require.NoError(t, r.SoftDelete(ctx, "alice", "t1"))

	// Get excludes tombstones
	_, err := r.Get(ctx, "alice", "t1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// changed-since still carries the tombstone so other devices converge
	changed, err := r.SelectUpdated(ctx, "alice", before.UnixMilli())
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.NotNil(t, changed[0].DeletedAt)
}

func TestSoftDelete_WrongProfileIsNotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleTimer("t1", "alice", time.Now())))

	err := r.SoftDelete(ctx, "bob", "t1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// alice's record untouched
	_, err = r.Get(ctx, "alice", "t1")
	assert.NoError(t, err)
}

func TestSelectUpdated_StrictWatermarkAndOrder(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	t1 := time.Now().Add(-3 * time.Minute).Truncate(time.Millisecond)
	t2 := t1.Add(time.Minute)
	t3 := t2.Add(time.Minute)
	require.NoError(t, r.Upsert(ctx, sampleTimer("a", "alice", t1)))
	require.NoError(t, r.Upsert(ctx, sampleTimer("b", "alice", t2)))
	require.NoError(t, r.Upsert(ctx, sampleTimer("c", "alice", t3)))

	// strictly greater: a record at exactly the watermark is not returned
	got, err := r.SelectUpdated(ctx, "alice", t1.UnixMilli())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID) // most recently updated first
	assert.Equal(t, "b", got[1].ID)

	// watermark 0 returns everything, intervals attached
	all, err := r.SelectUpdated(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, tm := range all {
		assert.Len(t, tm.Intervals, 2)
	}
}

func TestSelectUpdated_CrossProfileIsolation(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleTimer("x", "alice", time.Now())))

	got, err := r.SelectUpdated(ctx, "bob", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpsert_PositionFallsBackToIndex(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	tm := &models.Timer{
		ID:     "t1",
		UserID: "alice",
		Name:   "NoPositions",
		Rounds: 1,
		Intervals: []models.Interval{
			{ID: "i0", Name: "a", Duration: 5, Color: "#fff"},
			{ID: "i1", Name: "b", Duration: 5, Color: "#fff"},
			{ID: "i2", Name: "c", Duration: 5, Color: "#fff"},
		},
	}
	require.NoError(t, r.Upsert(ctx, tm))

	got, err := r.Get(ctx, "alice", "t1")
	require.NoError(t, err)
	require.Len(t, got.Intervals, 3)
	for i, iv := range got.Intervals {
		assert.Equal(t, i, iv.Position)
	}
}

func TestGet_UnknownID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.Get(context.Background(), "alice", "nope")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
