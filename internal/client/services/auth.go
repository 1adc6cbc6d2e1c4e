// Package services contains application services for the sync client:
// session management and the background sync engine with its merge logic.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/intervals/internal/client/client"
	"github.com/dmitrijs2005/intervals/internal/client/repositories/state"
	"github.com/dmitrijs2005/intervals/internal/cryptox"
	"github.com/dmitrijs2005/intervals/internal/models"
)

// AuthService defines session operations for the CLI.
//
// Contract:
//   - TestConnection: probe the server and learn whether it wants a password.
//   - Login: open a session for a profile; reports whether the active
//     profile changed, in which case the caller must run a profile switch
//     before the next regular sync.
//   - Logout: revoke the session locally and remotely.
//   - Profiles: list profile names known to the server.
//   - RestoreSession: load a previously stored session at startup.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Ping(ctx context.Context) error
	TestConnection(ctx context.Context, password string) (*models.TestConnectionResponse, error)
	Login(ctx context.Context, profile string, password string) (switched bool, err error)
	Logout(ctx context.Context) error
	Profiles(ctx context.Context, password string) ([]string, error)
	RestoreSession(ctx context.Context) (profile string, err error)
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	state  state.Repository
}

func NewAuthService(c client.Client, st state.Repository) AuthService {
	return &authService{client: c, state: st}
}

// passwordHash converts a plaintext password to the digest the wire
// protocol expects. An empty password stays empty.
func passwordHash(password string) string {
	if password == "" {
		return ""
	}
	return cryptox.PasswordDigest(password)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) TestConnection(ctx context.Context, password string) (*models.TestConnectionResponse, error) {
	return a.client.TestConnection(ctx, passwordHash(password))
}

func (a *authService) Login(ctx context.Context, profile string, password string) (bool, error) {
	previous, err := a.state.Get(ctx, state.KeyProfile)
	if err != nil {
		return false, err
	}

	token, err := a.client.Login(ctx, profile, passwordHash(password))
	if err != nil {
		return false, fmt.Errorf("login error: %w", err)
	}

	if err := a.state.Set(ctx, state.KeyToken, token); err != nil {
		return false, err
	}
	if err := a.state.Set(ctx, state.KeyProfile, profile); err != nil {
		return false, err
	}

	return previous != "" && previous != profile, nil
}

func (a *authService) Logout(ctx context.Context) error {
	// local state goes first so a dead server cannot keep us logged in
	if err := a.state.Delete(ctx, state.KeyToken); err != nil {
		return err
	}
	return a.client.Logout(ctx)
}

func (a *authService) Profiles(ctx context.Context, password string) ([]string, error) {
	return a.client.Profiles(ctx, passwordHash(password))
}

func (a *authService) RestoreSession(ctx context.Context) (string, error) {
	token, err := a.state.Get(ctx, state.KeyToken)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", nil
	}
	a.client.SetToken(token)
	return a.state.Get(ctx, state.KeyProfile)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
