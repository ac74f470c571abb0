package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/nobs/internal/client/models"
	"github.com/dmitrijs2005/nobs/internal/netx"
)

const defaultTimeout = 60 * time.Second

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPClient returns a client for the API rooted at baseURL. A nil hc
// means a client with a 60s timeout.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) Login(ctx context.Context, code string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, err
	}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "application/json", bytes.NewReader(body), "Authentication failed", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", "", nil, "Logout failed", nil)
}

// Check returns the profile behind the current token, or ErrUnauthorized.
func (c *HTTPClient) Check(ctx context.Context) (*models.UserProfile, error) {
	var out struct {
		Authenticated bool                `json:"authenticated"`
		User          *models.UserProfile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/check", "", nil, "Session check failed", &out); err != nil {
		return nil, err
	}
	if !out.Authenticated || out.User == nil {
		return nil, ErrUnauthorized
	}
	return out.User, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.UserProfile, error) {
	var out struct {
		User models.UserProfile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", "", nil, "Failed to load profile", &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *HTTPClient) RefreshOrcidToken(ctx context.Context) (time.Time, error) {
	var out struct {
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh-orcid-token", "", nil, "Failed to refresh token", &out); err != nil {
		return time.Time{}, err
	}
	return out.ExpiresAt, nil
}

// SubmitEntry uploads p as multipart form data. Title, description, authors
// and molecule travel as JSON text; a missing molecule is sent as "null".
func (c *HTTPClient) SubmitEntry(ctx context.Context, p *SubmitPayload) (*models.Entry, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := writeSubmitForm(mw, p); err != nil {
		return nil, fmt.Errorf("build submit form: %w", err)
	}

	var out struct {
		Entry models.Entry `json:"entry"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/entries", mw.FormDataContentType(), &buf, "Failed to submit entry", &out); err != nil {
		return nil, err
	}
	return &out.Entry, nil
}

func writeSubmitForm(mw *multipart.Writer, p *SubmitPayload) error {
	if err := mw.WriteField("entryId", p.EntryID); err != nil {
		return err
	}

	jsonFields := []struct {
		name  string
		value any
	}{
		{"title", richOrNull(p.Title)},
		{"description", richOrNull(p.Description)},
		{"authors", nonNilAuthors(p.Authors)},
		{"molecule", p.Molecule},
	}
	for _, f := range jsonFields {
		b, err := json.Marshal(f.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := mw.WriteField(f.name, string(b)); err != nil {
			return err
		}
	}

	if p.Nmr != nil {
		if err := writeFile(mw, "nmrArchive", p.Nmr.FileName, p.Nmr.Archive); err != nil {
			return err
		}
	}
	for i, f := range p.MassSpec {
		if err := writeFile(mw, "massSpecFile_"+strconv.Itoa(i), f.OriginalName, []byte(f.Content)); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writeFile(mw *multipart.Writer, field, name string, data []byte) error {
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		return err
	}
	_, err = fw.Write(data)
	return err
}

func richOrNull(rt models.RichText) any {
	if len(rt) == 0 {
		return nil
	}
	return rt
}

func nonNilAuthors(a []models.Author) []models.Author {
	if a == nil {
		return []models.Author{}
	}
	return a
}

func (c *HTTPClient) ListEntries(ctx context.Context) ([]models.Entry, error) {
	var out struct {
		Entries []models.Entry `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/entries", "", nil, "Failed to load entries", &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

func (c *HTTPClient) GetEntry(ctx context.Context, entryID string) (*models.Entry, error) {
	var out struct {
		Entry models.Entry `json:"entry"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/entries/"+url.PathEscape(entryID), "", nil, "Failed to load entry", &out); err != nil {
		return nil, err
	}
	return &out.Entry, nil
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, entryID string) error {
	return c.do(ctx, http.MethodDelete, "/api/entries/"+url.PathEscape(entryID), "", nil, "Failed to delete entry", nil)
}

// do sends one request and decodes a 2xx JSON body into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path, contentType string, body io.Reader, fallback string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	netx.SetBearer(req, c.currentToken())

	resp, err := c.http.Do(req)
	if err != nil {
		if netx.IsNetworkError(err) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		return &APIError{Status: resp.StatusCode, Message: netx.ErrorMessage(resp.Body, fallback)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
