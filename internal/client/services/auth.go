// Package services contains the application services behind the nobs CLI:
// the ORCID session, entry submission and entry management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nobs/internal/client/client"
	"github.com/dmitrijs2005/nobs/internal/client/models"
	"github.com/dmitrijs2005/nobs/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/nobs/internal/dbx"
	"github.com/dmitrijs2005/nobs/internal/logging"
)

const (
	TokenKey   = "nobs_access_token"
	ProfileKey = "nobs_user_profile"
)

var ErrNoSession = errors.New("not logged in")

// AuthService manages the locally stored session.
//
// Contract:
//   - Login: exchange an ORCID authorization code and persist token + profile.
//   - Logout: revoke on the server when possible; local data is always cleared.
//   - Restore: load a stored session into the API client.
//   - CheckSession: verify the token; only an explicit 401 ends the session.
type AuthService interface {
	Login(ctx context.Context, code string) (*models.UserProfile, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (*models.UserProfile, error)
	CheckSession(ctx context.Context) (*models.UserProfile, error)
	CurrentUser(ctx context.Context) (*models.UserProfile, error)
	RefreshOrcidToken(ctx context.Context) (time.Time, error)
}

type authService struct {
	client client.Client
	db     *sql.DB
	logger logging.Logger
}

func NewAuthService(c client.Client, db *sql.DB, l logging.Logger) AuthService {
	return &authService{client: c, db: db, logger: l.With("module", "session")}
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

func (a *authService) Login(ctx context.Context, code string) (*models.UserProfile, error) {
	res, err := a.client.Login(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if err := a.saveSession(ctx, res.Token, &res.User); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	a.client.SetToken(res.Token)
	a.logger.Info(ctx, "logged in", "orcid", res.User.Orcid)
	return &res.User, nil
}

// saveSession writes token and profile in one transaction.
func (a *authService) saveSession(ctx context.Context, token string, u *models.UserProfile) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, TokenKey, []byte(token)); err != nil {
			return err
		}
		return metadata.SetJSON(ctx, repo, ProfileKey, u)
	})
}

func (a *authService) clearSession(ctx context.Context) error {
	a.client.SetToken("")
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, TokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, ProfileKey)
	})
}

// Logout ignores server failures: the local session is cleared regardless.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		a.logger.Warn(ctx, "server logout failed", "error", err)
	}
	return a.clearSession(ctx)
}

func (a *authService) Restore(ctx context.Context) (*models.UserProfile, error) {
	token, err := a.getMetadataRepo().Get(ctx, TokenKey)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 {
		return nil, ErrNoSession
	}
	a.client.SetToken(string(token))
	return a.CurrentUser(ctx)
}

// CheckSession asks the server whether the stored token is still valid. A
// 401 clears the session and returns ErrNoSession. A network failure keeps
// the session and returns the cached profile with the error.
func (a *authService) CheckSession(ctx context.Context) (*models.UserProfile, error) {
	if _, err := a.Restore(ctx); err != nil {
		return nil, err
	}

	u, err := a.client.Check(ctx)
	switch {
	case err == nil:
		if err := metadata.SetJSON(ctx, a.getMetadataRepo(), ProfileKey, u); err != nil {
			return nil, err
		}
		return u, nil
	case errors.Is(err, client.ErrUnauthorized):
		a.logger.Info(ctx, "session rejected by server, clearing")
		if cerr := a.clearSession(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, ErrNoSession
	default:
		a.logger.Warn(ctx, "session check failed, keeping session", "error", err)
		cached, cerr := a.CurrentUser(ctx)
		if cerr != nil {
			return nil, cerr
		}
		return cached, err
	}
}

// CurrentUser returns the cached profile, or ErrNoSession.
func (a *authService) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	var u models.UserProfile
	found, err := metadata.GetJSON(ctx, a.getMetadataRepo(), ProfileKey, &u)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSession
	}
	return &u, nil
}

func (a *authService) RefreshOrcidToken(ctx context.Context) (time.Time, error) {
	return a.client.RefreshOrcidToken(ctx)
}
