package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/intervals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_StoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/init", r.URL.Path)
		var req models.AuthRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.ProfileName)
		_ = json.NewEncoder(w).Encode(models.AuthResponse{Token: "tok123"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	token, err := c.Login(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)
	assert.Equal(t, "tok123", c.Token())
}

func TestSync_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(models.SyncPayload{
			LastSyncedAt: 42,
			Timers:       []models.Timer{},
			History:      []models.HistoryEntry{},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	c.SetToken("tok123")

	resp, err := c.Sync(context.Background(), &models.SyncPayload{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, int64(42), resp.LastSyncedAt)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"not found", http.StatusNotFound, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: tt.name})
			}))
			defer srv.Close()

			c := NewHTTPClient(srv.URL, 0)
			_, err := c.Sync(context.Background(), &models.SyncPayload{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnreachableServer(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := c.Sync(ctx, &models.SyncPayload{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLogout_ClearsTokenEvenOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	c.SetToken("tok123")

	err := c.Logout(context.Background())
	assert.Error(t, err)
	assert.Empty(t, c.Token())
}

func TestLogout_NoToken(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", 0)
	assert.NoError(t, c.Logout(context.Background()))
}

func TestTestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/test", r.URL.Path)
		_ = json.NewEncoder(w).Encode(models.TestConnectionResponse{Success: true, PasswordRequired: true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	resp, err := c.TestConnection(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.PasswordRequired)
}

func TestNewHTTPClient_Timeout(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", 3*time.Second)
	assert.Equal(t, 3*time.Second, c.http.Timeout)

	// zero falls back to the default
	c = NewHTTPClient("http://127.0.0.1:1", 0)
	assert.Equal(t, 30*time.Second, c.http.Timeout)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestDeleteTimer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/timers/t1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	assert.NoError(t, c.DeleteTimer(context.Background(), "t1"))
}
