// Package entries provides the PostgreSQL-backed repository for compound
// entries. Authors, molecule and MassBank file lists live in JSONB columns;
// they are encoded here on write and decoded into typed values on read.
package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nobs/internal/common"
	"github.com/dmitrijs2005/nobs/internal/dbx"
	"github.com/dmitrijs2005/nobs/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectEntry = `SELECT id, entry_id, user_id, title, description, authors, molecule, nmr_archive_path, massbank_files, status, created_at, updated_at
		FROM entries`

// Create inserts entry and fills in the surrogate id and timestamps.
// An empty Status defaults to "submitted".
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	authors, molecule, files, err := encodeColumns(entry)
	if err != nil {
		return nil, err
	}
	if entry.Status == "" {
		entry.Status = models.StatusSubmitted
	}

	query := `
		INSERT INTO entries (entry_id, user_id, title, description, authors, molecule, nmr_archive_path, massbank_files, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		entry.EntryID, entry.UserID, entry.Title, entry.Description,
		authors, molecule, entry.NmrArchivePath, files, entry.Status,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrAlreadyExists, dbx.ConstraintName(err))
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) ExistsByEntryID(ctx context.Context, entryID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM entries WHERE entry_id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, entryID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Entry, error) {
	query := selectEntry + `
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByEntryIDForUser(ctx context.Context, entryID string, userID int64) (*models.Entry, error) {
	query := selectEntry + `
		WHERE entry_id = $1 AND user_id = $2`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, entryID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidText(err) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) DeleteByEntryIDForUser(ctx context.Context, entryID string, userID int64) error {
	query := `DELETE FROM entries WHERE entry_id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, entryID, userID)
	if err != nil {
		if dbx.IsInvalidText(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	e := &models.Entry{}
	var authors, molecule, files []byte

	err := s.Scan(&e.ID, &e.EntryID, &e.UserID, &e.Title, &e.Description,
		&authors, &molecule, &e.NmrArchivePath, &files, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(authors, &e.Authors); err != nil {
		return nil, fmt.Errorf("%w: entry %s: decode authors: %v", common.ErrorInternal, e.EntryID, err)
	}
	if e.Authors == nil {
		e.Authors = []models.Author{}
	}
	if len(molecule) > 0 && string(molecule) != "null" {
		e.Molecule = &models.Molecule{}
		if err := json.Unmarshal(molecule, e.Molecule); err != nil {
			return nil, fmt.Errorf("%w: entry %s: decode molecule: %v", common.ErrorInternal, e.EntryID, err)
		}
	}
	e.MassbankFiles = []models.StoredFile{}
	if len(files) > 0 {
		if err := json.Unmarshal(files, &e.MassbankFiles); err != nil {
			return nil, fmt.Errorf("%w: entry %s: decode massbank files: %v", common.ErrorInternal, e.EntryID, err)
		}
		if e.MassbankFiles == nil {
			e.MassbankFiles = []models.StoredFile{}
		}
	}
	return e, nil
}

// encodeColumns renders the JSONB columns. Authors are never NULL; an absent
// molecule or an empty file list is stored as NULL.
func encodeColumns(e *models.Entry) (authors string, molecule, files any, err error) {
	list := e.Authors
	if list == nil {
		list = []models.Author{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", nil, nil, fmt.Errorf("encode authors: %w", err)
	}
	authors = string(b)

	if e.Molecule != nil {
		b, err := json.Marshal(e.Molecule)
		if err != nil {
			return "", nil, nil, fmt.Errorf("encode molecule: %w", err)
		}
		molecule = string(b)
	}

	if len(e.MassbankFiles) > 0 {
		b, err := json.Marshal(e.MassbankFiles)
		if err != nil {
			return "", nil, nil, fmt.Errorf("encode massbank files: %w", err)
		}
		files = string(b)
	}
	return authors, molecule, files, nil
}
