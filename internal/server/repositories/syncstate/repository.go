// Package syncstate keeps the server-side copy of each profile's sync
// watermark and answers profile-listing queries. The server's watermark is
// bookkeeping only; the client's own stored watermark is authoritative for
// the next round trip.
package syncstate

import "context"

// Repository describes watermark storage and profile discovery.
type Repository interface {
	// Get returns the stored watermark for userID in epoch milliseconds,
	// or 0 when none was stored yet.
	Get(ctx context.Context, userID string) (int64, error)

	// Set stores the watermark for userID.
	Set(ctx context.Context, userID string, millis int64) error

	// Profiles returns the distinct profile names across timers, history
	// and sync state, sorted.
	Profiles(ctx context.Context) ([]string, error)
}
