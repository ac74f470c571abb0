package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/nobs/internal/client/client"
	"github.com/dmitrijs2005/nobs/internal/client/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

var testUser = models.UserProfile{
	ID:          7,
	Orcid:       "0000-0002-1825-0097",
	Name:        strPtr("Josiah Carberry"),
	Institution: strPtr("Brown University"),
}

// fakeClient is a scripted client.Client.
type fakeClient struct {
	mu sync.Mutex

	token string

	loginRes *client.LoginResult
	loginErr error

	logoutErr   error
	logoutCalls int

	checkUser *models.UserProfile
	checkErr  error

	submitFn    func(*client.SubmitPayload) (*models.Entry, error)
	submitCalls int
	submitted   *client.SubmitPayload

	entries   []models.Entry
	deleted   []string
	expiresAt time.Time
}

func (f *fakeClient) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeClient) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeClient) Login(context.Context, string) (*client.LoginResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeClient) Logout(context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeClient) Check(context.Context) (*models.UserProfile, error) {
	return f.checkUser, f.checkErr
}

func (f *fakeClient) Me(context.Context) (*models.UserProfile, error) {
	return f.checkUser, f.checkErr
}

func (f *fakeClient) RefreshOrcidToken(context.Context) (time.Time, error) {
	return f.expiresAt, nil
}

func (f *fakeClient) SubmitEntry(_ context.Context, p *client.SubmitPayload) (*models.Entry, error) {
	f.submitCalls++
	f.submitted = p
	if f.submitFn != nil {
		return f.submitFn(p)
	}
	return &models.Entry{ID: 1, EntryID: p.EntryID, Status: "submitted"}, nil
}

func (f *fakeClient) ListEntries(context.Context) ([]models.Entry, error) {
	return f.entries, nil
}

func (f *fakeClient) GetEntry(_ context.Context, id string) (*models.Entry, error) {
	for _, e := range f.entries {
		if e.EntryID == id {
			return &e, nil
		}
	}
	return nil, &client.APIError{Status: 404, Message: "Entry not found"}
}

func (f *fakeClient) DeleteEntry(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}
