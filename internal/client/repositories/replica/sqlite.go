package replica

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/intervals/internal/dbx"
	"github.com/dmitrijs2005/intervals/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Timers(ctx context.Context) ([]models.Timer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM replica_timers ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list timers: %w", err)
	}
	defer rows.Close()

	var timers []models.Timer
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan timer row: %w", err)
		}
		var t models.Timer
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, fmt.Errorf("failed to decode timer payload: %w", err)
		}
		timers = append(timers, t)
	}
	return timers, rows.Err()
}

func (r *SQLiteRepository) History(ctx context.Context) ([]models.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM replica_history ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		var e models.HistoryEntry
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to decode history payload: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) SaveTimers(ctx context.Context, timers []models.Timer) error {
	for i := range timers {
		t := &timers[i]
		payload, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode timer %s: %w", t.ID, err)
		}
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO replica_timers (id, deleted, updated_at, payload) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				deleted = excluded.deleted,
				updated_at = excluded.updated_at,
				payload = excluded.payload
		`, t.ID, boolToInt(t.Deleted()), t.UpdatedAt.UnixMilli(), payload)
		if err != nil {
			return fmt.Errorf("failed to save timer %s: %w", t.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) SaveHistory(ctx context.Context, entries []models.HistoryEntry) error {
	for i := range entries {
		e := &entries[i]
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode history entry %s: %w", e.ID, err)
		}
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO replica_history (id, deleted, updated_at, payload) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				deleted = excluded.deleted,
				updated_at = excluded.updated_at,
				payload = excluded.payload
		`, e.ID, boolToInt(e.Deleted()), e.UpdatedAt.UnixMilli(), payload)
		if err != nil {
			return fmt.Errorf("failed to save history entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, timers []models.Timer, entries []models.HistoryEntry) error {
	if err := r.Clear(ctx); err != nil {
		return err
	}
	if err := r.SaveTimers(ctx, timers); err != nil {
		return err
	}
	return r.SaveHistory(ctx, entries)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM replica_timers`); err != nil {
		return fmt.Errorf("failed to clear timers: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM replica_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
