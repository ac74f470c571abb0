package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/nobs/internal/client/client"
	"github.com/dmitrijs2005/nobs/internal/client/config"
	"github.com/dmitrijs2005/nobs/internal/client/services"
)

var errOrcidNotConfigured = errors.New("ORCID sign-in is not configured (client id, redirect URI and authorize URL are required)")

// authorizeURL builds the ORCID sign-in link. The researcher opens it in a
// browser and pastes the code from the redirect into `login`.
func authorizeURL(cfg *config.Config) (string, error) {
	if cfg.OrcidClientID == "" || cfg.OrcidRedirectURI == "" || cfg.OrcidAuthorizeURL == "" {
		return "", errOrcidNotConfigured
	}
	v := url.Values{}
	v.Set("client_id", cfg.OrcidClientID)
	v.Set("response_type", "code")
	v.Set("scope", "/authenticate")
	v.Set("redirect_uri", cfg.OrcidRedirectURI)
	return cfg.OrcidAuthorizeURL + "?" + v.Encode(), nil
}

func (a *App) login(ctx context.Context, args []string) error {
	var code string
	if len(args) > 0 {
		code = args[0]
	} else {
		link, err := authorizeURL(a.config)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Open this link to sign in with ORCID:\n  %s\n", link)
		code, err = GetSimpleText(a.in, "Paste the code from the redirect", a.out)
		if err != nil {
			return err
		}
	}
	if code == "" {
		return errors.New("authorization code is required")
	}

	u, err := a.auth.Login(ctx, code)
	if err != nil {
		return describeRequestError(err, "Login failed")
	}
	a.setUser(u)
	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", displayName(u), u.Orcid)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.setUser(nil)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	u := a.currentUser()
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s\n  ORCID: %s\n", displayName(u), u.Orcid)
	if u.Email != nil && *u.Email != "" {
		fmt.Fprintf(a.out, "  Email: %s\n", *u.Email)
	}
	if u.Institution != nil && *u.Institution != "" {
		fmt.Fprintf(a.out, "  Institution: %s\n", *u.Institution)
	}
	return nil
}

func (a *App) check(ctx context.Context, _ []string) error {
	a.checkStatus(ctx)

	a.mu.RLock()
	mode, u := a.mode, a.user
	a.mu.RUnlock()

	switch {
	case mode == ModeOffline:
		fmt.Fprintln(a.out, "Server unavailable, working offline")
	case u == nil:
		fmt.Fprintln(a.out, "Not signed in")
	default:
		fmt.Fprintf(a.out, "Session valid for %s\n", displayName(u))
	}
	return nil
}

func (a *App) refreshOrcid(ctx context.Context, _ []string) error {
	exp, err := a.auth.RefreshOrcidToken(ctx)
	if err != nil {
		return describeRequestError(err, "Failed to refresh ORCID token")
	}
	fmt.Fprintf(a.out, "ORCID token valid until %s\n", exp.Local().Format("2006-01-02 15:04"))
	return nil
}

// describeRequestError turns an API client error into a message for the
// terminal.
func describeRequestError(err error, fallback string) error {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return errors.New(apiErr.Message)
	case errors.Is(err, client.ErrUnauthorized):
		return errors.New("Unauthorized access")
	case errors.Is(err, client.ErrUnavailable):
		return errors.New("Server unavailable, try again later")
	case errors.Is(err, services.ErrNoSession):
		return errors.New("Not signed in")
	}
	return fmt.Errorf("%s: %w", fallback, err)
}
