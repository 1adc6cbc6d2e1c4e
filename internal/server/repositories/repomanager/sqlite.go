package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/intervals/internal/dbx"
	sqlitemigrations "github.com/dmitrijs2005/intervals/internal/server/migrations/sqlite"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/history"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/syncstate"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/timers"
	"github.com/pressly/goose/v3"

	_ "github.com/tursodatabase/go-libsql"
)

// SQLiteManager serves both the embedded file backend and remote Turso
// databases; the libsql driver speaks the same dialect for both.
type SQLiteManager struct {
	db *sql.DB
}

// NewSQLiteManager opens the database, applies concurrency pragmas for
// file-backed databases, and runs pending migrations.
func NewSQLiteManager(ctx context.Context, dsn string, local bool) (*SQLiteManager, error) {
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if local && !strings.Contains(dsn, ":memory:") {
		// Retry for up to a second when another writer holds the lock.
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 1000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
		}
		// WAL allows concurrent readers while writing.
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if local {
		// A single connection avoids SQLITE_BUSY contention on the file.
		db.SetMaxOpenConns(1)
	}

	m := &SQLiteManager{db: db}
	if err := m.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

func (m *SQLiteManager) migrate(ctx context.Context) error {
	goose.SetBaseFS(sqlitemigrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (m *SQLiteManager) Timers(db dbx.DBTX) timers.Repository {
	return timers.NewSQLiteRepository(db)
}

func (m *SQLiteManager) History(db dbx.DBTX) history.Repository {
	return history.NewSQLiteRepository(db)
}

func (m *SQLiteManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewSQLiteRepository(db)
}

func (m *SQLiteManager) SyncState(db dbx.DBTX) syncstate.Repository {
	return syncstate.NewSQLiteRepository(db)
}

func (m *SQLiteManager) DB() *sql.DB { return m.db }

func (m *SQLiteManager) Close() error { return m.db.Close() }
