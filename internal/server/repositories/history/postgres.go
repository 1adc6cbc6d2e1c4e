package history

import (
	"context"
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

// Upsert inserts or updates one history entry. Immutable fields keep their
// first-insert values on conflict.
func (r *PostgresRepository) Upsert(ctx context.Context, e *models.HistoryEntry) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			elapsed_duration = EXCLUDED.elapsed_duration,
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
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
func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID string, sinceMillis int64) ([]models.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, timer_id, timer_name, total_duration, elapsed_duration,
		       completed, started_at, completed_at, updated_at, deleted_at
		FROM history
		WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at DESC
	`, userID, sinceMillis)
	if err != nil {
		return nil, fmt.Errorf("failed to select history: %w", err)
	}
	return scanEntries(rows)
}

// SoftDelete tombstones an entry within the owning profile.
func (r *PostgresRepository) SoftDelete(ctx context.Context, userID, id string) error {
	now := dbx.Millis(time.Now())
	res, err := r.db.ExecContext(ctx, `
		UPDATE history
		SET deleted_at = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4 AND deleted_at IS NULL
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
