// Package client implements the HTTP transport to the sync backend.
package client

import (
	"context"

	"github.com/dmitrijs2005/intervals/internal/models"
)

type Client interface {
	Close() error

	// Ping hits the unauthenticated health endpoint.
	Ping(ctx context.Context) error

	// TestConnection probes the backend: reachability and whether it
	// expects a password.
	TestConnection(ctx context.Context, passwordHash string) (*models.TestConnectionResponse, error)

	// Login opens a session for the profile and stores the token on the
	// client for subsequent calls.
	Login(ctx context.Context, profile string, passwordHash string) (string, error)

	// Logout revokes the stored token.
	Logout(ctx context.Context) error

	// Profiles lists the profile names known to the backend.
	Profiles(ctx context.Context, passwordHash string) ([]string, error)

	// Sync uploads the full local replica and returns the server delta.
	Sync(ctx context.Context, payload *models.SyncPayload) (*models.SyncPayload, error)

	GetTimer(ctx context.Context, id string) (*models.Timer, error)
	DeleteTimer(ctx context.Context, id string) error
	DeleteHistoryEntry(ctx context.Context, id string) error

	Token() string
	SetToken(token string)
}
