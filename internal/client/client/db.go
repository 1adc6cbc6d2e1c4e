package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/intervals/internal/client/migrations"
	"github.com/dmitrijs2005/intervals/internal/client/repositories/replica"
	"github.com/dmitrijs2005/intervals/internal/client/repositories/state"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles the local stores the client works with.
type Repositories struct {
	State   state.Repository
	Replica replica.Repository
	DB      *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating when needed) the local replica database and
// applies pending migrations.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		State:   state.NewSQLiteRepository(db),
		Replica: replica.NewSQLiteRepository(db),
		DB:      db,
	}, nil
}
