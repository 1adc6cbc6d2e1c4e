// Package models defines the record types shared by the server and the
// client: the same structs are persisted, sent over the wire, and held in
// the client's local replica, so that a record survives a sync round trip
// byte-for-byte (modulo timestamp precision, which is millisecond on both
// sides).
package models

import "time"

// Session represents an authenticated session bound to a profile.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"` // plaintext profile name
	CreatedAt time.Time `json:"created_at"`
}

// Timer is an interval-timer definition. The interval list is owned by the
// timer: replacing it is always a full replace, never a diff.
type Timer struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Rounds    int        `json:"rounds"`
	Intervals []Interval `json:"intervals"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the timer is a tombstone.
func (t *Timer) Deleted() bool { return t.DeletedAt != nil }

// Interval is a single step within a timer. Position is the 0-based order
// within the parent; positions are dense and match array order.
type Interval struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"` // whole seconds
	Color    string `json:"color"`
	Position int    `json:"position"`
}

// HistoryEntry records one run of a timer. StartedAt, TotalDuration and
// UserID are immutable once created; the remaining mutable fields exist to
// support pause/stop before natural completion.
type HistoryEntry struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	TimerID         string     `json:"timer_id"` // may dangle if the timer was deleted
	TimerName       string     `json:"timer_name"`
	TotalDuration   int        `json:"total_duration"`   // seconds
	ElapsedDuration int        `json:"elapsed_duration"` // seconds
	Completed       bool       `json:"completed"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the entry is a tombstone.
func (h *HistoryEntry) Deleted() bool { return h.DeletedAt != nil }

// SyncPayload is both the request and the response of POST /api/sync.
// LastSyncedAt is the watermark in epoch milliseconds: in a request it is
// the point up to which the client already holds server state; in a
// response it is the new watermark the client should store.
type SyncPayload struct {
	LastSyncedAt int64          `json:"last_synced_at"`
	Timers       []Timer        `json:"timers"`
	History      []HistoryEntry `json:"history"`
}

// AuthRequest initializes a session for a profile.
type AuthRequest struct {
	ProfileName  string `json:"profile_name"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// AuthResponse is returned after successful authentication.
type AuthResponse struct {
	Token string `json:"token"`
}

// TestConnectionRequest probes the backend before full authentication.
type TestConnectionRequest struct {
	PasswordHash string `json:"password_hash"`
}

// TestConnectionResponse tells the client whether the backend is reachable
// and whether it expects a password, so the UI can prompt correctly.
type TestConnectionResponse struct {
	Success          bool `json:"success"`
	PasswordRequired bool `json:"password_required"`
}

// ProfilesRequest asks for the profile list; gated like auth.
type ProfilesRequest struct {
	PasswordHash string `json:"password_hash"`
}

// ProfilesResponse lists the distinct profile names known to the backend.
type ProfilesResponse struct {
	Profiles []string `json:"profiles"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
