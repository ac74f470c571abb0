package entries

import (
	"context"

	"github.com/dmitrijs2005/nobs/internal/server/models"
)

type Repository interface {
	// Create inserts a new entry; a duplicate entry id yields common.ErrAlreadyExists.
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	ExistsByEntryID(ctx context.Context, entryID string) (bool, error)
	// ListByUser returns the user's entries, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*models.Entry, error)
	// GetByEntryIDForUser returns common.ErrorNotFound for missing and foreign entries alike.
	GetByEntryIDForUser(ctx context.Context, entryID string, userID int64) (*models.Entry, error)
	DeleteByEntryIDForUser(ctx context.Context, entryID string, userID int64) error
}
