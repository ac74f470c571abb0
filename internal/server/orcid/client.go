// Package orcid talks to the ORCID identity provider: authorization code
// exchange, token refresh and public record lookup.
package orcid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/nobs/internal/common"
	sc "github.com/dmitrijs2005/nobs/internal/server/config"
	"golang.org/x/oauth2"
)

const (
	msgExchangeFailed = "Failed to exchange code for tokens"
	msgRefreshFailed  = "Failed to refresh token"
	msgProfileFailed  = "Failed to fetch ORCID profile"
)

var codeRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateCode checks the shape of an authorization code before it is sent
// to the provider.
func ValidateCode(code string) error {
	if code == "" {
		return common.NewValidationError("Authorization code is required")
	}
	if len(code) < 6 || len(code) > 100 || !codeRe.MatchString(code) {
		return common.NewValidationError("Invalid authorization code format")
	}
	return nil
}

// TokenResponse is the provider's answer to a code exchange or refresh.
type TokenResponse struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Orcid        string
	Name         string
}

type Client struct {
	oauth      *oauth2.Config
	apiURL     string
	httpClient *http.Client
}

// NewClient validates cfg and builds a client. httpClient may be nil, in
// which case http.DefaultClient is used.
func NewClient(cfg sc.OrcidConfig, httpClient *http.Client) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"/authenticate"},
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		httpClient: httpClient,
	}, nil
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// ExchangeCode trades an authorization code for tokens. Provider failures
// carry the provider's error_description when it sent one.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	tok, err := c.oauth.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		msg := msgExchangeFailed
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorDescription != "" {
			msg = re.ErrorDescription
		}
		return nil, &common.UpstreamError{Message: msg, Err: err}
	}

	resp := toResponse(tok)
	if resp.Orcid == "" {
		return nil, &common.UpstreamError{Message: msgExchangeFailed, Err: errors.New("token response has no orcid")}
	}
	return resp, nil
}

// RefreshToken obtains a new access token. When the provider does not issue
// a new refresh token the old one is returned.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	ts := c.oauth.TokenSource(c.withHTTPClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := ts.Token()
	if err != nil {
		return nil, &common.UpstreamError{Message: msgRefreshFailed, Err: err}
	}
	resp := toResponse(tok)
	if resp.RefreshToken == "" {
		resp.RefreshToken = refreshToken
	}
	return resp, nil
}

func toResponse(tok *oauth2.Token) *TokenResponse {
	resp := &TokenResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if v, ok := tok.Extra("orcid").(string); ok {
		resp.Orcid = v
	}
	if v, ok := tok.Extra("name").(string); ok {
		resp.Name = v
	}
	return resp
}

// FetchRecord loads the public record of orcidID using accessToken.
func (c *Client) FetchRecord(ctx context.Context, orcidID, accessToken string) (*Record, error) {
	httpClient := oauth2.NewClient(c.withHTTPClient(ctx), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	url := fmt.Sprintf("%s/%s/record", c.apiURL, orcidID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, &common.UpstreamError{Message: msgProfileFailed, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &common.UpstreamError{Message: msgProfileFailed, Err: fmt.Errorf("status %d", res.StatusCode)}
	}

	rec := &Record{}
	if err := json.NewDecoder(res.Body).Decode(rec); err != nil {
		return nil, &common.UpstreamError{Message: msgProfileFailed, Err: err}
	}
	return rec, nil
}

// FetchProfile is FetchRecord followed by ExtractProfile.
func (c *Client) FetchProfile(ctx context.Context, orcidID, accessToken string) (*Profile, error) {
	rec, err := c.FetchRecord(ctx, orcidID, accessToken)
	if err != nil {
		return nil, err
	}
	p := ExtractProfile(rec)
	return &p, nil
}
