package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/intervals/internal/common"
	"github.com/dmitrijs2005/intervals/internal/models"
)

type ctxKey string

const userIDKey ctxKey = "userID"

var (
	errRateLimited  = fmt.Errorf("%w: too many requests", common.ErrRateLimited)
	errMissingToken = fmt.Errorf("%w: missing token", common.ErrUnauthorized)
)

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func userIDFromCtx(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// extractToken reads the session token from the Authorization header, with
// a query-parameter fallback for clients that cannot set headers.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (s *HTTPServer) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(ctx, "error writing response", "error", err)
	}
}

func (s *HTTPServer) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	default:
		s.logger.Error(ctx, "internal error", "error", err)
		s.writeJSON(ctx, w, http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}
	s.writeJSON(ctx, w, status, models.ErrorResponse{Error: err.Error()})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAuthTest lets a client probe the backend before committing to a
// profile: is it reachable, and does it expect a password. Any mismatch,
// an empty hash against a configured password included, is reported as 401
// so the UI knows to prompt.
func (s *HTTPServer) handleAuthTest(w http.ResponseWriter, r *http.Request) {
	var req models.TestConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(r.Context(), w, fmt.Errorf("%w: invalid request body", common.ErrValidation))
		return
	}

	if err := s.auth.CheckPassword(req.PasswordHash); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, models.TestConnectionResponse{
		Success:          true,
		PasswordRequired: s.auth.PasswordRequired(),
	})
}

func (s *HTTPServer) handleAuthInit(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(r.Context(), w, fmt.Errorf("%w: invalid request body", common.ErrValidation))
		return
	}

	session, err := s.auth.Authenticate(r.Context(), req.ProfileName, req.PasswordHash)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "session initialized", "user_id", session.UserID)
	s.writeJSON(r.Context(), w, http.StatusOK, models.AuthResponse{Token: session.Token})
}

func (s *HTTPServer) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		s.writeError(r.Context(), w, errMissingToken)
		return
	}

	if err := s.auth.Revoke(r.Context(), token); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"success": true})
}

func (s *HTTPServer) handleProfiles(w http.ResponseWriter, r *http.Request) {
	var req models.ProfilesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(r.Context(), w, fmt.Errorf("%w: invalid request body", common.ErrValidation))
		return
	}

	if err := s.auth.CheckPassword(req.PasswordHash); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	profiles, err := s.sync.Profiles(r.Context())
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, models.ProfilesResponse{Profiles: profiles})
}

func (s *HTTPServer) handleSync(w http.ResponseWriter, r *http.Request) {
	var req models.SyncPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(r.Context(), w, fmt.Errorf("%w: invalid request body", common.ErrValidation))
		return
	}

	resp, err := s.sync.Sync(r.Context(), userIDFromCtx(r.Context()), &req)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *HTTPServer) handleGetTimer(w http.ResponseWriter, r *http.Request) {
	timer, err := s.sync.GetTimer(r.Context(), userIDFromCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, timer)
}

func (s *HTTPServer) handleDeleteTimer(w http.ResponseWriter, r *http.Request) {
	if err := s.sync.DeleteTimer(r.Context(), userIDFromCtx(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"success": true})
}

func (s *HTTPServer) handleDeleteHistoryEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.sync.DeleteHistoryEntry(r.Context(), userIDFromCtx(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"success": true})
}
