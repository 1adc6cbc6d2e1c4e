// Package timers provides server-side persistence for timer definitions and
// their interval lists, with soft deletes and changed-since queries for the
// sync protocol.
package timers

import (
	"context"

	"github.com/dmitrijs2005/intervals/internal/models"
)

// Repository describes storage operations for timer definitions.
// Implementations are bound to a dbx.DBTX; Upsert touches several rows and
// expects the caller to supply a transactional handle.
type Repository interface {
	// Upsert inserts or fully replaces a timer by id, replacing the entire
	// interval list. CreatedAt is never overwritten once set; a zero
	// CreatedAt on the incoming record is filled with now at first insert.
	Upsert(ctx context.Context, timer *models.Timer) error

	// SelectUpdated returns every timer (tombstones included) for userID
	// whose updated_at strictly exceeds sinceMillis, most recently updated
	// first, each with its ordered interval list attached.
	SelectUpdated(ctx context.Context, userID string, sinceMillis int64) ([]models.Timer, error)

	// Get returns a single non-deleted timer or common.ErrNotFound.
	Get(ctx context.Context, userID, id string) (*models.Timer, error)

	// SoftDelete sets deleted_at and bumps updated_at. An id outside the
	// caller's profile yields common.ErrNotFound.
	SoftDelete(ctx context.Context, userID, id string) error
}
