package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/intervals/internal/client/client"
	"github.com/dmitrijs2005/intervals/internal/client/repositories/replica"
	"github.com/dmitrijs2005/intervals/internal/client/repositories/state"
	"github.com/dmitrijs2005/intervals/internal/logging"
	"github.com/dmitrijs2005/intervals/internal/models"
)

// SyncService runs the client side of the sync protocol: it debounces
// local-change notifications, uploads the full replica, and merges the
// server's delta back in by id.
type SyncService interface {
	// ScheduleSync requests a sync after the debounce interval. Repeated
	// calls within the interval collapse into one sync.
	ScheduleSync()

	// SyncNow cancels any pending debounce and syncs immediately.
	SyncNow(ctx context.Context) error

	// SwitchProfile discards the local replica and installs the server's
	// live records for the newly active profile.
	SwitchProfile(ctx context.Context) error

	// Stop cancels a pending debounced sync.
	Stop()
}

type syncService struct {
	client   client.Client
	replica  replica.Repository
	state    state.Repository
	logger   logging.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending *time.Timer
	syncing bool
	owed    bool
}

func NewSyncService(c client.Client, rep replica.Repository, st state.Repository, logger logging.Logger, debounce time.Duration) SyncService {
	return &syncService{
		client:   c,
		replica:  rep,
		state:    st,
		logger:   logger.With("component", "sync"),
		debounce: debounce,
	}
}

func (s *syncService) ScheduleSync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.Stop()
	}
	s.pending = time.AfterFunc(s.debounce, func() {
		if err := s.run(context.Background()); err != nil {
			s.logger.Warn(context.Background(), "background sync failed", "error", err)
		}
	})
}

func (s *syncService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func (s *syncService) SyncNow(ctx context.Context) error {
	s.Stop()
	return s.run(ctx)
}

// run serializes syncs. A trigger that arrives while a sync is in flight
// marks one more round as owed instead of starting a second request, so
// changes made during the round trip are not lost.
func (s *syncService) run(ctx context.Context) error {
	s.mu.Lock()
	if s.syncing {
		s.owed = true
		s.mu.Unlock()
		return nil
	}
	s.syncing = true
	s.mu.Unlock()

	var err error
	for {
		err = s.sync(ctx)

		s.mu.Lock()
		// the owed round runs even after a transient failure, so a change
		// made during the round trip is not stranded; only a dead session
		// cancels it (the token is gone, a follow-up could not succeed)
		if s.owed && !errors.Is(err, client.ErrUnauthorized) {
			s.owed = false
			s.mu.Unlock()
			continue
		}
		s.owed = false
		s.syncing = false
		s.mu.Unlock()
		return err
	}
}

func (s *syncService) sync(ctx context.Context) error {
	token, err := s.state.Get(ctx, state.KeyToken)
	if err != nil {
		return err
	}
	if token == "" {
		s.logger.Debug(ctx, "not connected, skipping sync")
		return nil
	}
	s.client.SetToken(token)

	watermark, err := s.state.GetInt64(ctx, state.KeyLastSyncedAt)
	if err != nil {
		return err
	}
	timers, err := s.replica.Timers(ctx)
	if err != nil {
		return err
	}
	entries, err := s.replica.History(ctx)
	if err != nil {
		return err
	}

	resp, err := s.client.Sync(ctx, &models.SyncPayload{
		LastSyncedAt: watermark,
		Timers:       timers,
		History:      entries,
	})
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			// session is gone; drop it so the next sync doesn't hammer
			// the server with a dead token
			s.logger.Warn(ctx, "session expired, disconnecting")
			s.client.SetToken("")
			if derr := s.state.Delete(ctx, state.KeyToken); derr != nil {
				return derr
			}
			if derr := s.state.Delete(ctx, state.KeyLastSyncedAt); derr != nil {
				return derr
			}
		}
		return err
	}

	return s.merge(ctx, resp)
}

// merge installs the server delta: records replace local copies wholesale
// by id, and the new watermark is stored only after the replica write
// succeeds.
func (s *syncService) merge(ctx context.Context, resp *models.SyncPayload) error {
	if err := s.replica.SaveTimers(ctx, resp.Timers); err != nil {
		return err
	}
	if err := s.replica.SaveHistory(ctx, resp.History); err != nil {
		return err
	}
	if err := s.state.SetInt64(ctx, state.KeyLastSyncedAt, resp.LastSyncedAt); err != nil {
		return err
	}

	s.logger.Debug(ctx, "sync merged",
		"timers", len(resp.Timers), "history", len(resp.History),
		"watermark", resp.LastSyncedAt)
	return nil
}

func (s *syncService) SwitchProfile(ctx context.Context) error {
	s.Stop()

	// full pull with an empty upload: the old profile's records must not
	// leak into the new one
	resp, err := s.client.Sync(ctx, &models.SyncPayload{
		LastSyncedAt: 0,
		Timers:       []models.Timer{},
		History:      []models.HistoryEntry{},
	})
	if err != nil {
		return err
	}

	timers := make([]models.Timer, 0, len(resp.Timers))
	for _, t := range resp.Timers {
		if !t.Deleted() {
			timers = append(timers, t)
		}
	}
	entries := make([]models.HistoryEntry, 0, len(resp.History))
	for _, e := range resp.History {
		if !e.Deleted() {
			entries = append(entries, e)
		}
	}

	if err := s.replica.ReplaceAll(ctx, timers, entries); err != nil {
		return err
	}
	return s.state.SetInt64(ctx, state.KeyLastSyncedAt, resp.LastSyncedAt)
}
