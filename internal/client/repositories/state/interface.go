// Package state persists the client's session state between runs: the
// session token, the active profile and the sync watermark.
package state

import "context"

// Well-known keys.
const (
	KeyToken        = "token"
	KeyProfile      = "profile"
	KeyLastSyncedAt = "last_synced_at"
)

type Repository interface {
	// Get returns the value for key, or "" when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// GetInt64 returns the value for key parsed as int64, or 0 when the
	// key is absent.
	GetInt64(ctx context.Context, key string) (int64, error)

	Set(ctx context.Context, key, value string) error
	SetInt64(ctx context.Context, key string, value int64) error

	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
