// Package server initializes and runs the sync backend. It selects the
// storage backend, runs migrations, wires the services together and starts
// the HTTP server with graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/intervals/internal/logging"
	"github.com/dmitrijs2005/intervals/internal/server/api"
	"github.com/dmitrijs2005/intervals/internal/server/auth"
	"github.com/dmitrijs2005/intervals/internal/server/config"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/repomanager"
	syncsvc "github.com/dmitrijs2005/intervals/internal/server/sync"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       repomanager.Manager
	authService *auth.Service
	syncService *syncsvc.Service
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout)

	repos, err := repomanager.New(ctx, &repomanager.Config{
		SQLitePath:     cfg.SQLitePath,
		TursoURL:       cfg.TursoURL,
		TursoAuthToken: cfg.TursoAuthToken,
		PostgresDSN:    cfg.DatabaseDSN,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if cfg.SyncPassword == "" {
		logger.Warn(ctx, "no sync password configured, backend is open")
	}

	as := auth.NewService(repos.Sessions(repos.DB()), cfg.SyncPassword)
	ss := syncsvc.NewService(repos, logger)

	return &App{config: cfg, logger: logger, repos: repos, authService: as, syncService: ss}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := api.NewHTTPServer(app.config.Address, app.logger, app.authService, app.syncService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}
}
