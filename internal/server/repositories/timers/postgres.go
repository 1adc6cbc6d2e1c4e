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

// PostgresRepository implements Repository over a dbx.DBTX using PostgreSQL
// syntax.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository returns a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or replaces a timer and rewrites its interval list.
// Run it inside a transaction (dbx.WithTx).
func (r *PostgresRepository) Upsert(ctx context.Context, t *models.Timer) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			rounds = EXCLUDED.rounds,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`, t.ID, t.UserID, t.Name, t.Rounds,
		dbx.Millis(createdAt), dbx.Millis(updatedAt), dbx.NullMillis(t.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert timer: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM timer_intervals WHERE timer_id = $1`, t.ID); err != nil {
		return fmt.Errorf("failed to clear intervals: %w", err)
	}

	for i, iv := range t.Intervals {
		position := iv.Position
		if position == 0 && i > 0 {
			position = i
		}
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO timer_intervals (id, timer_id, name, duration, color, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, iv.ID, t.ID, iv.Name, iv.Duration, iv.Color, position)
		if err != nil {
			return fmt.Errorf("failed to insert interval: %w", err)
		}
	}

	return nil
}

// SelectUpdated returns timers changed after sinceMillis, tombstones included.
func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID string, sinceMillis int64) ([]models.Timer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, rounds, created_at, updated_at, deleted_at
		FROM timers
		WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at DESC
	`, userID, sinceMillis)
	if err != nil {
		return nil, fmt.Errorf("failed to select timers: %w", err)
	}

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
func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Timer, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, rounds, created_at, updated_at, deleted_at
		FROM timers
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
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
func (r *PostgresRepository) SoftDelete(ctx context.Context, userID, id string) error {
	now := dbx.Millis(time.Now())
	res, err := r.db.ExecContext(ctx, `
		UPDATE timers
		SET deleted_at = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4 AND deleted_at IS NULL
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

func (r *PostgresRepository) getIntervals(ctx context.Context, timerID string) ([]models.Interval, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, duration, color, position
		FROM timer_intervals
		WHERE timer_id = $1
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
