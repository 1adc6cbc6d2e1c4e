// Package replica stores the client's local copy of the profile's records.
// Records are kept as JSON payloads keyed by id; tombstones stay in the
// replica so they can be re-uploaded until the server confirms them.
package replica

import (
	"context"

	"github.com/dmitrijs2005/intervals/internal/models"
)

type Repository interface {
	// Timers returns every locally known timer, tombstones included,
	// most recently updated first.
	Timers(ctx context.Context) ([]models.Timer, error)

	// History returns every locally known history entry, tombstones
	// included, most recently updated first.
	History(ctx context.Context) ([]models.HistoryEntry, error)

	// SaveTimers upserts the given timers by id.
	SaveTimers(ctx context.Context, timers []models.Timer) error

	// SaveHistory upserts the given entries by id.
	SaveHistory(ctx context.Context, entries []models.HistoryEntry) error

	// ReplaceAll throws away the whole replica and installs the given
	// records. Used when switching profiles.
	ReplaceAll(ctx context.Context, timers []models.Timer, entries []models.HistoryEntry) error

	// Clear empties the replica.
	Clear(ctx context.Context) error
}
