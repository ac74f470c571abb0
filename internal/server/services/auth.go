// Package services contains server-side business logic. This file implements
// AuthService: ORCID login, API token authentication and revocation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nobs/internal/common"
	"github.com/dmitrijs2005/nobs/internal/dbx"
	"github.com/dmitrijs2005/nobs/internal/logging"
	"github.com/dmitrijs2005/nobs/internal/server/auth"
	"github.com/dmitrijs2005/nobs/internal/server/config"
	"github.com/dmitrijs2005/nobs/internal/server/models"
	"github.com/dmitrijs2005/nobs/internal/server/orcid"
	"github.com/dmitrijs2005/nobs/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// OrcidProvider is the part of the ORCID client the login flow needs.
type OrcidProvider interface {
	ExchangeCode(ctx context.Context, code string) (*orcid.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*orcid.TokenResponse, error)
	FetchProfile(ctx context.Context, orcidID, accessToken string) (*orcid.Profile, error)
}

type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Principal is the authenticated caller of a request.
type Principal struct {
	User    *models.User
	TokenID string
}

// nowFn is a seam for tests.
var nowFn = time.Now

type AuthService struct {
	db                  *sql.DB
	repomanager         repomanager.RepositoryManager
	orcid               OrcidProvider
	jwtSecret           []byte
	tokenValidity       time.Duration
	log                 logging.Logger
	logins, loginErrors Counter
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, provider OrcidProvider, cfg *config.Config, log logging.Logger) *AuthService {
	return &AuthService{
		db:            db,
		repomanager:   m,
		orcid:         provider,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.AccessTokenValidityDuration,
		log:           log.With("module", "services.auth"),
		logins:        nopCounter{},
		loginErrors:   nopCounter{},
	}
}

// SetLoginCounters installs counters for successful and failed logins.
func (s *AuthService) SetLoginCounters(success, failure Counter) {
	s.logins, s.loginErrors = success, failure
}

// Login runs the ORCID authorization-code flow: exchange the code, read the
// researcher's record, upsert the user and mint an API token. Nothing is
// retried; the first failure ends the flow.
func (s *AuthService) Login(ctx context.Context, code string) (*LoginResult, error) {
	res, err := s.login(ctx, code)
	if err != nil {
		s.loginErrors.Inc()
		return nil, err
	}
	s.logins.Inc()
	return res, nil
}

func (s *AuthService) login(ctx context.Context, code string) (*LoginResult, error) {
	if err := orcid.ValidateCode(code); err != nil {
		return nil, err
	}

	tok, err := s.orcid.ExchangeCode(ctx, code)
	if err != nil {
		s.log.Warn(ctx, "token exchange failed", "error", err)
		return nil, err
	}
	if !models.ValidOrcid(tok.Orcid) {
		return nil, &common.UpstreamError{Message: "Failed to exchange code for tokens", Err: fmt.Errorf("malformed orcid %q", tok.Orcid)}
	}
	s.log.Info(ctx, "token exchange successful", "orcid", tok.Orcid)

	profile, err := s.orcid.FetchProfile(ctx, tok.Orcid, tok.AccessToken)
	if err != nil {
		s.log.Warn(ctx, "profile fetch failed", "orcid", tok.Orcid, "error", err)
		return nil, err
	}

	user := &models.User{
		Orcid:        tok.Orcid,
		Name:         common.StringPtr(profile.Name),
		Email:        profile.Email,
		Institution:  profile.Institution,
		AccessToken:  common.StringPtr(tok.AccessToken),
		RefreshToken: nonEmpty(tok.RefreshToken),
	}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry
		user.TokenExpiresAt = &exp
	}

	var result *LoginResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Upsert(ctx, user)
		if err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		token, expiresAt, err := s.issueToken(ctx, tx, u.ID)
		if err != nil {
			return err
		}
		result = &LoginResult{User: u, Token: token, ExpiresAt: expiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "orcid", user.Orcid, "user_id", result.User.ID)
	return result, nil
}

func (s *AuthService) issueToken(ctx context.Context, tx dbx.DBTX, userID int64) (string, time.Time, error) {
	tokenID := uuid.NewString()
	row, err := s.repomanager.AccessTokens(tx).Create(ctx, tokenID, userID, s.tokenValidity)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("store access token: %w", err)
	}
	token, err := auth.GenerateToken(userID, tokenID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return token, row.ExpiresAt, nil
}

// Authenticate resolves a bearer token to its caller. The token must carry a
// valid signature and its backing row must still exist and be unexpired.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	row, err := s.repomanager.AccessTokens(s.db).Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrTokenRevoked
		}
		return nil, err
	}
	if row.UserID != claims.UserID {
		return nil, common.ErrInvalidToken
	}
	if !row.ExpiresAt.After(nowFn()) {
		return nil, common.ErrTokenExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return &Principal{User: user, TokenID: row.ID}, nil
}

// Logout revokes exactly the token identified by tokenID.
func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	return s.repomanager.AccessTokens(s.db).Delete(ctx, tokenID)
}

// RefreshOrcidToken renews the stored ORCID access token of userID and
// returns its new expiry.
func (s *AuthService) RefreshOrcidToken(ctx context.Context, userID int64) (*time.Time, error) {
	users := s.repomanager.Users(s.db)

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.RefreshToken == nil || *user.RefreshToken == "" {
		return nil, common.NewValidationError("No refresh token available")
	}

	tok, err := s.orcid.RefreshToken(ctx, *user.RefreshToken)
	if err != nil {
		s.log.Warn(ctx, "orcid token refresh failed", "user_id", userID, "error", err)
		return nil, err
	}

	refresh := user.RefreshToken
	if tok.RefreshToken != "" {
		refresh = common.StringPtr(tok.RefreshToken)
	}
	var expiresAt *time.Time
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry
		expiresAt = &exp
	}

	if err := users.UpdateOrcidTokens(ctx, userID, common.StringPtr(tok.AccessToken), refresh, expiresAt); err != nil {
		return nil, err
	}
	return expiresAt, nil
}

// PurgeExpiredTokens removes token rows that can no longer authenticate.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repomanager.AccessTokens(s.db).DeleteExpired(ctx, nowFn())
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
