package timers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/intervals/internal/common"
	"github.com/dmitrijs2005/intervals/internal/dbx"
	"github.com/dmitrijs2005/intervals/internal/models"
)

// SQLiteRepository implements Repository over a dbx.DBTX using SQLite
// syntax. The same implementation serves the embedded file backend and the
// remote Turso backend; both speak the libsql dialect.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts or replaces a timer and rewrites its interval list.
// Run it inside a transaction (dbx.WithTx) so a concurrent reader never
// observes a half-replaced interval list.
func (r *SQLiteRepository) Upsert(ctx context.Context, t *models.Timer) error {
	now := time.Now()
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := t.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO timers (id, user_id, name, rounds, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			rounds = excluded.rounds,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at
	`, t.ID, t.UserID, t.Name, t.Rounds,
		dbx.Millis(createdAt), dbx.Millis(updatedAt), dbx.NullMillis(t.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert timer: %w", err)
	}

	// Full replace of the interval list: delete then reinsert.
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timer_intervals WHERE timer_id = ?`, t.ID); err != nil {
		return fmt.Errorf("failed to clear intervals: %w", err)
	}

	for i, iv := range t.Intervals {
		position := iv.Position
		if position == 0 && i > 0 {
			position = i
		}
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO timer_intervals (id, timer_id, name, duration, color, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, iv.ID, t.ID, iv.Name, iv.Duration, iv.Color, position)
		if err != nil {
			return fmt.Errorf("failed to insert interval: %w", err)
		}
	}

	return nil
}

// SelectUpdated returns timers changed after sinceMillis, tombstones included.
func (r *SQLiteRepository) SelectUpdated(ctx context.Context, userID string, sinceMillis int64) ([]models.Timer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, rounds, created_at, updated_at, deleted_at
		FROM timers
		WHERE user_id = ? AND updated_at > ?
		ORDER BY updated_at DESC
	`, userID, sinceMillis)
	if err != nil {
		return nil, fmt.Errorf("failed to select timers: %w", err)
	}

	// Collect timers first, then load intervals: the libsql driver does not
	// tolerate a second query while a result set is open.
	result, err := scanTimers(rows)
	if err != nil {
		return nil, err
	}

	for i := range result {
		intervals, err := r.getIntervals(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Intervals = intervals
	}

	return result, nil
}

// Get returns a single non-deleted timer with intervals attached.
func (r *SQLiteRepository) Get(ctx context.Context, userID, id string) (*models.Timer, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, rounds, created_at, updated_at, deleted_at
		FROM timers
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`, id, userID)

	t, err := scanTimer(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get timer: %w", err)
	}

	intervals, err := r.getIntervals(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Intervals = intervals

	return t, nil
}

// SoftDelete tombstones a timer within the owning profile.
func (r *SQLiteRepository) SoftDelete(ctx context.Context, userID, id string) error {
	now := dbx.Millis(time.Now())
	res, err := r.db.ExecContext(ctx, `
		UPDATE timers
		SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`, now, now, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete timer: %w", err)
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

func (r *SQLiteRepository) getIntervals(ctx context.Context, timerID string) ([]models.Interval, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, duration, color, position
		FROM timer_intervals
		WHERE timer_id = ?
		ORDER BY position ASC
	`, timerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select intervals: %w", err)
	}
	defer rows.Close()

	var intervals []models.Interval
	for rows.Next() {
		var iv models.Interval
		if err := rows.Scan(&iv.ID, &iv.Name, &iv.Duration, &iv.Color, &iv.Position); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

// scanTimer maps one row onto a Timer using any row-shaped Scan function.
func scanTimer(scan func(dest ...any) error) (*models.Timer, error) {
	var t models.Timer
	var createdAt, updatedAt int64
	var deletedAt sql.NullInt64
	if err := scan(&t.ID, &t.UserID, &t.Name, &t.Rounds, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}
	t.CreatedAt = dbx.TimeFromMillis(createdAt)
	t.UpdatedAt = dbx.TimeFromMillis(updatedAt)
	t.DeletedAt = dbx.TimePtrFromNull(deletedAt)
	return &t, nil
}

func scanTimers(rows *sql.Rows) ([]models.Timer, error) {
	defer rows.Close()
	var result []models.Timer
	for rows.Next() {
		t, err := scanTimer(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}
