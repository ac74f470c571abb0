package rest

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/nobs/internal/common"
	"github.com/dmitrijs2005/nobs/internal/server/models"
	"github.com/dmitrijs2005/nobs/internal/server/services"
)

const validToken = "good-token"

var testUser = &models.User{
	ID:          42,
	Orcid:       "0000-0002-1825-0097",
	Name:        common.StringPtr("Josiah Carberry"),
	AccessToken: common.StringPtr("orcid-secret"),
	CreatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	UpdatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
}

type fakeAuth struct {
	loginRes *services.LoginResult
	loginErr error

	refreshExp *time.Time
	refreshErr error

	loggedOut []string
}

func (f *fakeAuth) Login(ctx context.Context, code string) (*services.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginRes, nil
}

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*services.Principal, error) {
	switch token {
	case validToken:
		return &services.Principal{User: testUser, TokenID: "tok-1"}, nil
	case "":
		return nil, common.ErrorUnauthorized
	default:
		return nil, common.ErrTokenRevoked
	}
}

func (f *fakeAuth) Logout(ctx context.Context, tokenID string) error {
	f.loggedOut = append(f.loggedOut, tokenID)
	return nil
}

func (f *fakeAuth) RefreshOrcidToken(ctx context.Context, userID int64) (*time.Time, error) {
	return f.refreshExp, f.refreshErr
}

type receivedUpload struct {
	Filename string
	Body     string
}

type fakeEntries struct {
	in       services.CreateEntryInput
	uploads  []receivedUpload
	createFn func(services.CreateEntryInput) (*models.Entry, error)

	rows      map[string]*models.Entry
	deleted   []string
	deleteErr error
}

func (f *fakeEntries) Create(ctx context.Context, userID int64, in services.CreateEntryInput) (*models.Entry, error) {
	f.in = in
	if in.NmrArchive != nil {
		f.uploads = append(f.uploads, readUpload(*in.NmrArchive))
	}
	for _, u := range in.MassbankFiles {
		f.uploads = append(f.uploads, readUpload(u))
	}
	if f.createFn != nil {
		return f.createFn(in)
	}
	return &models.Entry{ID: 1, EntryID: in.EntryID, UserID: userID, Title: in.Title, Status: models.StatusSubmitted}, nil
}

func readUpload(u services.Upload) receivedUpload {
	rc, err := u.Open()
	if err != nil {
		return receivedUpload{Filename: u.Filename}
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	return receivedUpload{Filename: u.Filename, Body: string(b)}
}

func (f *fakeEntries) List(ctx context.Context, userID int64) ([]*models.Entry, error) {
	out := []*models.Entry{}
	for _, e := range f.rows {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntries) Get(ctx context.Context, userID int64, entryID string) (*models.Entry, error) {
	e, ok := f.rows[entryID]
	if !ok || e.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return e, nil
}

func (f *fakeEntries) Delete(ctx context.Context, userID int64, entryID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, err := f.Get(ctx, userID, entryID); err != nil {
		return err
	}
	f.deleted = append(f.deleted, entryID)
	delete(f.rows, entryID)
	return nil
}
