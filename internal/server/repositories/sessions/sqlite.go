package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/intervals/internal/common"
	"github.com/dmitrijs2005/intervals/internal/dbx"
	"github.com/dmitrijs2005/intervals/internal/models"
)

// SQLiteRepository implements Repository over a dbx.DBTX using SQLite
// syntax (embedded file and Turso backends).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, token, userID string) (*models.Session, error) {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, dbx.Millis(now))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &models.Session{Token: token, UserID: userID, CreatedAt: now}, nil
}

func (r *SQLiteRepository) Verify(ctx context.Context, token string) (*models.Session, error) {
	var s models.Session
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, created_at FROM sessions WHERE token = ?`,
		token).Scan(&s.Token, &s.UserID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to verify session: %w", err)
	}
	s.CreatedAt = dbx.TimeFromMillis(createdAt)
	return &s, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
