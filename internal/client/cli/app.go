// Package cli implements the interactive terminal client: a REPL over the
// local replica with background sync to the backend.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/intervals/internal/client/client"
	"github.com/dmitrijs2005/intervals/internal/client/config"
	"github.com/dmitrijs2005/intervals/internal/client/services"
	"github.com/dmitrijs2005/intervals/internal/logging"
)

type App struct {
	config       *config.Config
	authService  services.AuthService
	timerService services.TimerService
	syncService  services.SyncService
	profile      string
	reader       *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := client.InitDatabase(ctx, c.DBFile)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerAddr, c.RequestTimeout)
	logger := logging.NewJSONLogger(os.Stderr)

	sync := services.NewSyncService(apiClient, db.Replica, db.State, logger, c.DebounceInterval)
	as := services.NewAuthService(apiClient, db.State)
	ts := services.NewTimerService(db.Replica, sync)

	return &App{
		config:       c,
		authService:  as,
		timerService: ts,
		syncService:  sync,
		reader:       bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.profile != ""
}

func (a *App) Run(ctx context.Context) {
	defer a.syncService.Stop()
	defer a.authService.Close(ctx)

	// pick up the session from the previous run, if any
	profile, err := a.authService.RestoreSession(ctx)
	if err != nil {
		log.Printf("error restoring session: %v", err)
	}
	a.profile = profile
	if a.isLoggedIn() {
		a.syncService.ScheduleSync()
	}

	a.Root(ctx)
}
