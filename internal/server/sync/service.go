// Package sync implements the reconciliation engine behind POST /api/sync:
// apply the client's full upload, then answer with everything that changed
// on the server since the client's watermark.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/intervals/internal/dbx"
	"github.com/dmitrijs2005/intervals/internal/logging"
	"github.com/dmitrijs2005/intervals/internal/models"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/repomanager"
)

// Service is the sync reconciler. It is safe for concurrent use; each call
// opens its own transactions against the manager's pool.
type Service struct {
	repos  repomanager.Manager
	logger logging.Logger
}

func NewService(repos repomanager.Manager, logger logging.Logger) *Service {
	return &Service{repos: repos, logger: logger.With("component", "sync")}
}

// Sync applies the uploaded records for userID and returns the delta since
// the request watermark together with a new watermark.
//
// The delta query runs after the upload, so records the client just sent
// come back in the response. That is deliberate: echoed records carry any
// server-side normalization (filled created_at, repaired interval
// positions) back to the uploader.
func (s *Service) Sync(ctx context.Context, userID string, req *models.SyncPayload) (*models.SyncPayload, error) {
	for i := range req.Timers {
		timer := req.Timers[i]
		timer.UserID = userID
		err := dbx.WithTx(ctx, s.repos.DB(), nil, func(ctx context.Context, tx dbx.DBTX) error {
			return s.repos.Timers(tx).Upsert(ctx, &timer)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to store timer %s: %w", timer.ID, err)
		}
	}

	for i := range req.History {
		entry := req.History[i]
		entry.UserID = userID
		if err := s.repos.History(s.repos.DB()).Upsert(ctx, &entry); err != nil {
			return nil, fmt.Errorf("failed to store history entry %s: %w", entry.ID, err)
		}
	}

	timers, err := s.repos.Timers(s.repos.DB()).SelectUpdated(ctx, userID, req.LastSyncedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated timers: %w", err)
	}
	entries, err := s.repos.History(s.repos.DB()).SelectUpdated(ctx, userID, req.LastSyncedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated history: %w", err)
	}

	newWatermark := time.Now().UnixMilli()

	// Server-side watermark is bookkeeping only, a failure here must not
	// fail the round trip the client already paid for.
	if err := s.repos.SyncState(s.repos.DB()).Set(ctx, userID, newWatermark); err != nil {
		s.logger.Warn(ctx, "failed to store sync watermark", "user_id", userID, "error", err)
	}

	if timers == nil {
		timers = []models.Timer{}
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}

	s.logger.Info(ctx, "sync completed", "user_id", userID,
		"uploaded_timers", len(req.Timers), "uploaded_history", len(req.History),
		"returned_timers", len(timers), "returned_history", len(entries))

	return &models.SyncPayload{
		LastSyncedAt: newWatermark,
		Timers:       timers,
		History:      entries,
	}, nil
}

// GetTimer returns a single non-deleted timer for userID.
func (s *Service) GetTimer(ctx context.Context, userID, id string) (*models.Timer, error) {
	return s.repos.Timers(s.repos.DB()).Get(ctx, userID, id)
}

// DeleteTimer soft-deletes a timer; the tombstone propagates to other
// devices on their next sync.
func (s *Service) DeleteTimer(ctx context.Context, userID, id string) error {
	return s.repos.Timers(s.repos.DB()).SoftDelete(ctx, userID, id)
}

// DeleteHistoryEntry soft-deletes a history entry.
func (s *Service) DeleteHistoryEntry(ctx context.Context, userID, id string) error {
	return s.repos.History(s.repos.DB()).SoftDelete(ctx, userID, id)
}

// Profiles lists every profile name known to the backend.
func (s *Service) Profiles(ctx context.Context) ([]string, error) {
	profiles, err := s.repos.SyncState(s.repos.DB()).Profiles(ctx)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []string{}
	}
	return profiles, nil
}
