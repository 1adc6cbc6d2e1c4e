package syncstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/intervals/internal/dbx"
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

func (r *PostgresRepository) Get(ctx context.Context, userID string) (int64, error) {
	var millis int64
	err := r.db.QueryRowContext(ctx,
		`SELECT last_synced_at FROM sync_state WHERE user_id = $1`, userID).Scan(&millis)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get sync state: %w", err)
	}
	return millis, nil
}

func (r *PostgresRepository) Set(ctx context.Context, userID string, millis int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_state (user_id, last_synced_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			last_synced_at = EXCLUDED.last_synced_at
	`, userID, millis)
	if err != nil {
		return fmt.Errorf("failed to set sync state: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Profiles(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM (
			SELECT user_id FROM timers
			UNION
			SELECT user_id FROM history
			UNION
			SELECT user_id FROM sync_state
		) AS profiles ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
