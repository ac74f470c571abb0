// Package accesstokens declares the server-side repository contract for the
// rows that back issued API tokens.
package accesstokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/nobs/internal/server/models"
)

// Repository defines operations for issuing, retrieving and revoking API tokens.
type Repository interface {
	// Create stores a token row with id tokenID for userID expiring at now+validity.
	Create(ctx context.Context, tokenID string, userID int64, validity time.Duration) (*models.AccessToken, error)

	// Find looks up a token row by id; a missing row is common.ErrorNotFound.
	Find(ctx context.Context, tokenID string) (*models.AccessToken, error)

	// Delete removes a token row by id. Deleting a missing row is not an error.
	Delete(ctx context.Context, tokenID string) error

	// DeleteExpired removes every row whose expiry is before now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
