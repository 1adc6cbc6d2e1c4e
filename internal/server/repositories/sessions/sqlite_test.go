package sessions

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/intervals/internal/common"
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
CREATE TABLE sessions (
  token TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestSessionLifecycle(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	s, err := r.Create(ctx, "tok1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", s.UserID)
	assert.False(t, s.CreatedAt.IsZero())

	got, err := r.Verify(ctx, "tok1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)

	require.NoError(t, r.Delete(ctx, "tok1"))

	_, err = r.Verify(ctx, "tok1")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	// revoking twice is not an error
	assert.NoError(t, r.Delete(ctx, "tok1"))
}

func TestVerify_UnknownToken(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.Verify(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
