// Package history provides server-side persistence for workout history
// entries, with soft deletes and changed-since queries for the sync
// protocol.
package history

import (
	"context"

	"github.com/dmitrijs2005/intervals/internal/models"
)

// Repository describes storage operations for history entries.
type Repository interface {
	// Upsert inserts or updates an entry by id. On conflict only the
	// mutable fields change (elapsed_duration, completed, completed_at,
	// updated_at, deleted_at); started_at, total_duration and user_id are
	// immutable after creation.
	Upsert(ctx context.Context, entry *models.HistoryEntry) error

	// SelectUpdated returns every entry (tombstones included) for userID
	// whose updated_at strictly exceeds sinceMillis, most recently updated
	// first.
	SelectUpdated(ctx context.Context, userID string, sinceMillis int64) ([]models.HistoryEntry, error)

	// SoftDelete sets deleted_at and bumps updated_at. An id outside the
	// caller's profile yields common.ErrNotFound.
	SoftDelete(ctx context.Context, userID, id string) error
}
