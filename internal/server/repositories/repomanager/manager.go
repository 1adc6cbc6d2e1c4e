// Package repomanager wires repository constructors to a concrete database
// backend and owns schema migrations (via goose). Three backends are
// supported: an embedded SQLite file, a remote Turso database (both through
// the libsql driver, same dialect) and PostgreSQL.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/intervals/internal/dbx"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/history"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/syncstate"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/timers"
)

// Manager vends repository implementations bound to an arbitrary DBTX, so
// callers can run an operation either directly on the pool or inside a
// transaction (dbx.WithTx) with the same repository code.
type Manager interface {
	Timers(db dbx.DBTX) timers.Repository
	History(db dbx.DBTX) history.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	SyncState(db dbx.DBTX) syncstate.Repository

	// DB returns the underlying pool for transaction control.
	DB() *sql.DB
	Close() error
}

// Config selects and parameterizes the storage backend.
// Selection order: PostgresDSN, then TursoURL, then SQLitePath.
type Config struct {
	// SQLitePath is the path of the embedded database file.
	SQLitePath string
	// TursoURL is the libsql URL of a remote Turso database.
	TursoURL string
	// TursoAuthToken authenticates against Turso.
	TursoAuthToken string
	// PostgresDSN is a pgx-compatible PostgreSQL DSN.
	PostgresDSN string
}

// New creates a Manager for the backend selected by cfg and runs pending
// migrations.
func New(ctx context.Context, cfg *Config) (Manager, error) {
	switch {
	case cfg.PostgresDSN != "":
		return NewPostgresManager(ctx, cfg.PostgresDSN)
	case cfg.TursoURL != "":
		return NewSQLiteManager(ctx, tursoDSN(cfg.TursoURL, cfg.TursoAuthToken), false)
	case cfg.SQLitePath != "":
		return NewSQLiteManager(ctx, "file:"+cfg.SQLitePath+"?_foreign_keys=on", true)
	default:
		return nil, fmt.Errorf("no storage backend configured")
	}
}

func tursoDSN(url, authToken string) string {
	if authToken == "" {
		return url
	}
	return url + "?authToken=" + authToken
}
