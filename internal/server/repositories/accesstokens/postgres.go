// Package accesstokens provides a PostgreSQL-backed repository for the rows
// that back issued API tokens.
package accesstokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nobs/internal/common"
	"github.com/dmitrijs2005/nobs/internal/dbx"
	"github.com/dmitrijs2005/nobs/internal/server/models"
)

// nowFn is a seam for tests.
var nowFn = time.Now

// PostgresRepository implements token storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, tokenID string, userID int64, validity time.Duration) (*models.AccessToken, error) {
	query := `
		INSERT INTO access_tokens (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	t := &models.AccessToken{ID: tokenID, UserID: userID, ExpiresAt: nowFn().Add(validity).UTC()}
	if err := r.db.QueryRowContext(ctx, query, tokenID, userID, t.ExpiresAt).Scan(&t.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Find(ctx context.Context, tokenID string) (*models.AccessToken, error) {
	query := `
		SELECT id, user_id, expires_at, created_at
		FROM access_tokens
		WHERE id = $1
	`
	t := &models.AccessToken{}
	if err := r.db.QueryRowContext(ctx, query, tokenID).Scan(&t.ID, &t.UserID, &t.ExpiresAt, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, tokenID string) error {
	query := `
		DELETE FROM access_tokens
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, tokenID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM access_tokens
		WHERE expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
