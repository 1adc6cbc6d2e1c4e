package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dmitrijs2005/intervals/internal/client/client"
	"github.com/dmitrijs2005/intervals/internal/client/repositories/replica"
	"github.com/dmitrijs2005/intervals/internal/client/repositories/state"
	"github.com/dmitrijs2005/intervals/internal/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// fakeClient records calls and serves canned responses.
type fakeClient struct {
	mu        sync.Mutex
	token     string
	syncCalls []models.SyncPayload
	syncResp  *models.SyncPayload
	syncErr   error
	block     chan struct{} // when set, Sync waits on it before returning

	loginToken string
	loginErr   error
	profiles   []string
	testResp   *models.TestConnectionResponse
}

func (f *fakeClient) Ping(_ context.Context) error { return nil }

func (f *fakeClient) Close() error          { return nil }
func (f *fakeClient) Token() string         { f.mu.Lock(); defer f.mu.Unlock(); return f.token }
func (f *fakeClient) SetToken(token string) { f.mu.Lock(); defer f.mu.Unlock(); f.token = token }

func (f *fakeClient) TestConnection(_ context.Context, _ string) (*models.TestConnectionResponse, error) {
	if f.testResp == nil {
		return &models.TestConnectionResponse{Success: true}, nil
	}
	return f.testResp, nil
}

func (f *fakeClient) Login(_ context.Context, _ string, _ string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = f.loginToken
	return f.loginToken, nil
}

func (f *fakeClient) Logout(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	return nil
}

func (f *fakeClient) Profiles(_ context.Context, _ string) ([]string, error) {
	return f.profiles, nil
}

func (f *fakeClient) Sync(_ context.Context, payload *models.SyncPayload) (*models.SyncPayload, error) {
	f.mu.Lock()
	f.syncCalls = append(f.syncCalls, *payload)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	if f.syncErr != nil {
		return nil, f.syncErr
	}
	if f.syncResp != nil {
		return f.syncResp, nil
	}
	return &models.SyncPayload{LastSyncedAt: 1, Timers: []models.Timer{}, History: []models.HistoryEntry{}}, nil
}

func (f *fakeClient) GetTimer(_ context.Context, _ string) (*models.Timer, error) {
	return nil, client.ErrNotFound
}
func (f *fakeClient) DeleteTimer(_ context.Context, _ string) error        { return nil }
func (f *fakeClient) DeleteHistoryEntry(_ context.Context, _ string) error { return nil }

func (f *fakeClient) syncCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.syncCalls)
}

func (f *fakeClient) lastSyncCall() models.SyncPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncCalls[len(f.syncCalls)-1]
}

// setupLocal opens an in-memory replica database with the client schema.
func setupLocal(t *testing.T) (replica.Repository, state.Repository) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE state (key TEXT PRIMARY KEY, value TEXT NOT NULL);
CREATE TABLE replica_timers (
  id TEXT PRIMARY KEY,
  deleted INTEGER NOT NULL DEFAULT 0,
  updated_at INTEGER NOT NULL,
  payload TEXT NOT NULL
);
CREATE TABLE replica_history (
  id TEXT PRIMARY KEY,
  deleted INTEGER NOT NULL DEFAULT 0,
  updated_at INTEGER NOT NULL,
  payload TEXT NOT NULL
);
`)
	require.NoError(t, err)

	return replica.NewSQLiteRepository(db), state.NewSQLiteRepository(db)
}
