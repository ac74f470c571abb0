package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nobs/internal/common"
	"github.com/dmitrijs2005/nobs/internal/cryptox"
	"github.com/dmitrijs2005/nobs/internal/dbx"
	"github.com/dmitrijs2005/nobs/internal/server/models"
)

// PostgresRepository stores users; ORCID tokens pass through cipher on the
// way in and out, so the columns only ever hold ciphertext.
type PostgresRepository struct {
	db     dbx.DBTX
	cipher *cryptox.TokenCipher
}

func NewPostgresRepository(db dbx.DBTX, cipher *cryptox.TokenCipher) *PostgresRepository {
	return &PostgresRepository{db: db, cipher: cipher}
}

const selectUser = `SELECT id, orcid, name, email, institution, access_token, refresh_token, token_expires_at, created_at, updated_at
		 FROM users`

func (r *PostgresRepository) GetByOrcid(ctx context.Context, orcid string) (*models.User, error) {
	query := selectUser + `
		 WHERE orcid = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, orcid))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := selectUser + `
		 WHERE id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	access, refresh, err := r.encryptTokens(user.AccessToken, user.RefreshToken)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO users (orcid, name, email, institution, access_token, refresh_token, token_expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (orcid) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			institution = EXCLUDED.institution,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = now()
		 RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		user.Orcid, user.Name, user.Email, user.Institution, access, refresh, user.TokenExpiresAt,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) UpdateOrcidTokens(ctx context.Context, userID int64, accessToken, refreshToken *string, expiresAt *time.Time) error {
	access, refresh, err := r.encryptTokens(accessToken, refreshToken)
	if err != nil {
		return err
	}

	query :=
		`UPDATE users
		 SET access_token = $1, refresh_token = $2, token_expires_at = $3, updated_at = now()
		 WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, access, refresh, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) encryptTokens(access, refresh *string) (*string, *string, error) {
	a, err := r.cipher.EncryptPtr(access)
	if err != nil {
		return nil, nil, fmt.Errorf("encrypt access token: %w", err)
	}
	rt, err := r.cipher.EncryptPtr(refresh)
	if err != nil {
		return nil, nil, fmt.Errorf("encrypt refresh token: %w", err)
	}
	return a, rt, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var access, refresh sql.NullString
	var expires sql.NullTime

	err := row.Scan(&user.ID, &user.Orcid, &user.Name, &user.Email, &user.Institution,
		&access, &refresh, &expires, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if user.AccessToken, err = r.cipher.DecryptPtr(nullString(access)); err != nil {
		return nil, fmt.Errorf("decrypt access token for user %d: %w", user.ID, err)
	}
	if user.RefreshToken, err = r.cipher.DecryptPtr(nullString(refresh)); err != nil {
		return nil, fmt.Errorf("decrypt refresh token for user %d: %w", user.ID, err)
	}
	if expires.Valid {
		t := expires.Time
		user.TokenExpiresAt = &t
	}

	return user, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
