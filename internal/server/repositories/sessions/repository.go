// Package sessions persists opaque session tokens bound to profile names.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/intervals/internal/models"
)

// Repository describes session storage. Tokens are opaque and revocable:
// deleting the row is the only invalidation mechanism.
type Repository interface {
	// Create persists a new session for userID under the given token.
	Create(ctx context.Context, token, userID string) (*models.Session, error)

	// Verify returns the session for token, or common.ErrUnauthorized when
	// the token is unknown.
	Verify(ctx context.Context, token string) (*models.Session, error)

	// Delete removes the session row; deleting an unknown token is not an
	// error.
	Delete(ctx context.Context, token string) error
}
