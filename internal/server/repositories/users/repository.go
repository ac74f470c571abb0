package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/nobs/internal/server/models"
)

type Repository interface {
	GetByOrcid(ctx context.Context, orcid string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// Upsert creates the user or, when the ORCID iD is already known,
	// replaces its profile and tokens. The returned user carries the id and
	// timestamps assigned by the database.
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	UpdateOrcidTokens(ctx context.Context, userID int64, accessToken, refreshToken *string, expiresAt *time.Time) error
}
