package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/intervals/internal/common"
	"github.com/dmitrijs2005/intervals/internal/dbx"
	"github.com/dmitrijs2005/intervals/internal/models"
)

// SQLiteRepository implements Repository over a dbx.DBTX using SQLite
// syntax (embedded file and Turso backends).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts or updates one history entry. Immutable fields keep their
// first-insert values on conflict.
func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.HistoryEntry) error {
	now := time.Now()
	startedAt := e.StartedAt
	if startedAt.IsZero() {
		startedAt = now
	}
	updatedAt := e.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO history
		(id, user_id, timer_id, timer_name, total_duration, elapsed_duration, completed, started_at, completed_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			elapsed_duration = excluded.elapsed_duration,
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at
	`, e.ID, e.UserID, e.TimerID, e.TimerName,
		e.TotalDuration, e.ElapsedDuration, e.Completed,
		dbx.Millis(startedAt), dbx.NullMillis(e.CompletedAt),
		dbx.Millis(updatedAt), dbx.NullMillis(e.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert history entry: %w", err)
	}
	return nil
}

// SelectUpdated returns entries changed after sinceMillis, tombstones included.
func (r *SQLiteRepository) SelectUpdated(ctx context.Context, userID string, sinceMillis int64) ([]models.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, timer_id, timer_name, total_duration, elapsed_duration,
		       completed, started_at, completed_at, updated_at, deleted_at
		FROM history
		WHERE user_id = ? AND updated_at > ?
		ORDER BY updated_at DESC
	`, userID, sinceMillis)
	if err != nil {
		return nil, fmt.Errorf("failed to select history: %w", err)
	}
	return scanEntries(rows)
}

// SoftDelete tombstones an entry within the owning profile.
func (r *SQLiteRepository) SoftDelete(ctx context.Context, userID, id string) error {
	now := dbx.Millis(time.Now())
	res, err := r.db.ExecContext(ctx, `
		UPDATE history
		SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`, now, now, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]models.HistoryEntry, error) {
	defer rows.Close()
	var result []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var startedAt, updatedAt int64
		var completedAt, deletedAt sql.NullInt64
		if err := rows.Scan(&e.ID, &e.UserID, &e.TimerID, &e.TimerName,
			&e.TotalDuration, &e.ElapsedDuration, &e.Completed,
			&startedAt, &completedAt, &updatedAt, &deletedAt); err != nil {
			return nil, err
		}
		e.StartedAt = dbx.TimeFromMillis(startedAt)
		e.UpdatedAt = dbx.TimeFromMillis(updatedAt)
		e.CompletedAt = dbx.TimePtrFromNull(completedAt)
		e.DeletedAt = dbx.TimePtrFromNull(deletedAt)
		result = append(result, e)
	}
	return result, rows.Err()
}
