package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/intervals/internal/dbx"
	pgmigrations "github.com/dmitrijs2005/intervals/internal/server/migrations/postgres"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/history"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/syncstate"
	"github.com/dmitrijs2005/intervals/internal/server/repositories/timers"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresManager vends PostgreSQL-backed repositories.
type PostgresManager struct {
	db *sql.DB
}

// NewPostgresManager opens a pgx pool and runs pending migrations.
func NewPostgresManager(ctx context.Context, dsn string) (*PostgresManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	m := &PostgresManager{db: db}
	if err := m.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

func (m *PostgresManager) migrate(ctx context.Context) error {
	goose.SetBaseFS(pgmigrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (m *PostgresManager) Timers(db dbx.DBTX) timers.Repository {
	return timers.NewPostgresRepository(db)
}

func (m *PostgresManager) History(db dbx.DBTX) history.Repository {
	return history.NewPostgresRepository(db)
}

func (m *PostgresManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresManager) SyncState(db dbx.DBTX) syncstate.Repository {
	return syncstate.NewPostgresRepository(db)
}

func (m *PostgresManager) DB() *sql.DB { return m.db }

func (m *PostgresManager) Close() error { return m.db.Close() }
