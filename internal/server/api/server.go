// Package api exposes the sync backend over HTTP with JSON bodies: session
// management, the sync endpoint, single-record reads and deletes, profile
// discovery and a health probe.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/intervals/internal/logging"
	"github.com/dmitrijs2005/intervals/internal/server/auth"
	syncsvc "github.com/dmitrijs2005/intervals/internal/server/sync"
)

type HTTPServer struct {
	address string
	auth    *auth.Service
	sync    *syncsvc.Service
	limiter *RateLimiter
	logger  logging.Logger
}

func NewHTTPServer(address string, l logging.Logger, as *auth.Service, ss *syncsvc.Service) *HTTPServer {
	return &HTTPServer{
		address: address,
		auth:    as,
		sync:    ss,
		limiter: NewRateLimiter(),
		logger:  l.With("module", "http_server"),
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.limiter.Cleanup(15 * time.Minute)
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "error shutting down HTTP server", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Routes builds the router. Exposed separately so tests can drive the full
// middleware chain through httptest.
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.requestLogger)

	// bare probe for load balancers that cannot be told a path prefix
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(LoginClass))
			r.Post("/auth/test", s.handleAuthTest)
			r.Post("/auth/init", s.handleAuthInit)
			r.Post("/profiles", s.handleProfiles)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(SyncClass))
			// logout stays outside requireAuth: revoking an already
			// invalid token must still succeed.
			r.Post("/auth/logout", s.handleAuthLogout)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/sync", s.handleSync)
				r.Get("/timers/{id}", s.handleGetTimer)
				r.Delete("/timers/{id}", s.handleDeleteTimer)
				r.Delete("/history/{id}", s.handleDeleteHistoryEntry)
			})
		})
	})

	return r
}

func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start).String())
	})
}

func (s *HTTPServer) rateLimit(c Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.limiter.Allow(clientIP(r), c) {
				s.writeError(r.Context(), w, errRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *HTTPServer) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			s.writeError(r.Context(), w, errMissingToken)
			return
		}
		userID, err := s.auth.Verify(r.Context(), token)
		if err != nil {
			s.writeError(r.Context(), w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

// clientIP prefers the first X-Forwarded-For hop so per-address buckets
// still work behind a reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
