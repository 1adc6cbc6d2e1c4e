package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/intervals/internal/client/client"
	"github.com/dmitrijs2005/intervals/internal/client/repositories/replica"
	"github.com/dmitrijs2005/intervals/internal/models"
	"github.com/google/uuid"
)

// TimerService is the local editing surface: every mutation lands in the
// replica first and nudges the sync engine, so the UI never waits on the
// network.
type TimerService interface {
	List(ctx context.Context) ([]models.Timer, error)
	Get(ctx context.Context, id string) (*models.Timer, error)
	Save(ctx context.Context, timer *models.Timer) error
	Delete(ctx context.Context, id string) error

	History(ctx context.Context) ([]models.HistoryEntry, error)
	RecordRun(ctx context.Context, entry *models.HistoryEntry) error
	DeleteRun(ctx context.Context, id string) error
}

type timerService struct {
	replica replica.Repository
	sync    SyncService
}

func NewTimerService(rep replica.Repository, sync SyncService) TimerService {
	return &timerService{replica: rep, sync: sync}
}

// List returns the live (non-tombstoned) timers.
func (s *timerService) List(ctx context.Context) ([]models.Timer, error) {
	all, err := s.replica.Timers(ctx)
	if err != nil {
		return nil, err
	}
	timers := make([]models.Timer, 0, len(all))
	for _, t := range all {
		if !t.Deleted() {
			timers = append(timers, t)
		}
	}
	return timers, nil
}

func (s *timerService) Get(ctx context.Context, id string) (*models.Timer, error) {
	all, err := s.replica.Timers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id && !all[i].Deleted() {
			return &all[i], nil
		}
	}
	return nil, client.ErrNotFound
}

// Save stores a new or edited timer. Missing ids are generated, interval
// positions are normalized to array order, and UpdatedAt is stamped so the
// change wins on the server.
func (s *timerService) Save(ctx context.Context, timer *models.Timer) error {
	if timer.Name == "" {
		return fmt.Errorf("timer name is required")
	}
	if timer.ID == "" {
		timer.ID = uuid.NewString()
	}
	if timer.Rounds <= 0 {
		timer.Rounds = 1
	}
	for i := range timer.Intervals {
		if timer.Intervals[i].ID == "" {
			timer.Intervals[i].ID = uuid.NewString()
		}
		timer.Intervals[i].Position = i
	}
	timer.UpdatedAt = time.Now().UTC()
	timer.DeletedAt = nil

	if err := s.replica.SaveTimers(ctx, []models.Timer{*timer}); err != nil {
		return err
	}
	s.sync.ScheduleSync()
	return nil
}

// Delete tombstones a timer locally; the tombstone is uploaded on the next
// sync and propagates to other devices from there.
func (s *timerService) Delete(ctx context.Context, id string) error {
	all, err := s.replica.Timers(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id && !all[i].Deleted() {
			now := time.Now().UTC()
			all[i].DeletedAt = &now
			all[i].UpdatedAt = now
			if err := s.replica.SaveTimers(ctx, []models.Timer{all[i]}); err != nil {
				return err
			}
			s.sync.ScheduleSync()
			return nil
		}
	}
	return client.ErrNotFound
}

func (s *timerService) History(ctx context.Context) ([]models.HistoryEntry, error) {
	all, err := s.replica.History(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]models.HistoryEntry, 0, len(all))
	for _, e := range all {
		if !e.Deleted() {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (s *timerService) RecordRun(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now().UTC()
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := s.replica.SaveHistory(ctx, []models.HistoryEntry{*entry}); err != nil {
		return err
	}
	s.sync.ScheduleSync()
	return nil
}

func (s *timerService) DeleteRun(ctx context.Context, id string) error {
	all, err := s.replica.History(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id && !all[i].Deleted() {
			now := time.Now().UTC()
			all[i].DeletedAt = &now
			all[i].UpdatedAt = now
			if err := s.replica.SaveHistory(ctx, []models.HistoryEntry{all[i]}); err != nil {
				return err
			}
			s.sync.ScheduleSync()
			return nil
		}
	}
	return client.ErrNotFound
}
