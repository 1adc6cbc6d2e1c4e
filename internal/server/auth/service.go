// Package auth implements the session authority: the optional shared-secret
// password gate and the lifecycle of opaque session tokens bound to profile
// names.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/intervals/internal/common"
	"github.com/dmitrijs2005/intervals/internal/cryptox"
	"github.com/dmitrijs2005/intervals/internal/models"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/sessions"
	"github.com/google/uuid"
)

// Service issues and validates session tokens. Profile names are accepted as
// supplied, without normalization: case or whitespace variants address
// distinct partitions.
type Service struct {
	sessions       sessions.Repository
	passwordDigest string // SHA-256 hex of the configured password, empty when open
}

// NewService builds a session authority. password may be empty, in which
// case any supplied hash (including an empty one) authenticates.
func NewService(repo sessions.Repository, password string) *Service {
	var digest string
	if password != "" {
		digest = cryptox.PasswordDigest(password)
	}
	return &Service{sessions: repo, passwordDigest: digest}
}

// PasswordRequired reports whether a backend password is configured.
func (s *Service) PasswordRequired() bool {
	return s.passwordDigest != ""
}

// CheckPassword validates a client-supplied password digest against the
// configured one. With no password configured, every value passes.
func (s *Service) CheckPassword(suppliedHash string) error {
	if s.passwordDigest == "" {
		return nil
	}
	if !cryptox.DigestEqual(suppliedHash, s.passwordDigest) {
		return common.ErrUnauthorized
	}
	return nil
}

// Authenticate checks the password gate, mints an opaque token and persists
// the session. The profile name is required but otherwise unvalidated.
func (s *Service) Authenticate(ctx context.Context, profile, suppliedHash string) (*models.Session, error) {
	if err := s.CheckPassword(suppliedHash); err != nil {
		return nil, err
	}
	if profile == "" {
		return nil, fmt.Errorf("%w: profile name is required", common.ErrValidation)
	}

	session, err := s.sessions.Create(ctx, newSessionToken(), profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Verify resolves a token to the profile it is bound to.
func (s *Service) Verify(ctx context.Context, token string) (string, error) {
	session, err := s.sessions.Verify(ctx, token)
	if err != nil {
		return "", err
	}
	return session.UserID, nil
}

// Revoke deletes the session row; revoking twice is not an error.
func (s *Service) Revoke(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// newSessionToken returns an unguessable 64-char opaque token: two UUIDs
// concatenated with hyphens removed.
func newSessionToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
