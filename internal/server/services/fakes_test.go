package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/nobs/internal/common"
	"github.com/dmitrijs2005/nobs/internal/dbx"
	"github.com/dmitrijs2005/nobs/internal/server/models"
	"github.com/dmitrijs2005/nobs/internal/server/orcid"
	"github.com/dmitrijs2005/nobs/internal/server/repositories/accesstokens"
	"github.com/dmitrijs2005/nobs/internal/server/repositories/entries"
	"github.com/dmitrijs2005/nobs/internal/server/repositories/users"
)

// --- users ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[int64]*models.User
	nextID int64

	upsertErr error
	updateErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}, nextID: 1}
}

func (f *fakeUsersRepo) GetByOrcid(ctx context.Context, orcid string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Orcid == orcid {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsersRepo) Upsert(ctx context.Context, u *models.User) (*models.User, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.byID {
		if existing.Orcid == u.Orcid {
			u.ID = id
			u.CreatedAt = existing.CreatedAt
			u.UpdatedAt = time.Now()
			c := *u
			f.byID[id] = &c
			return u, nil
		}
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	c := *u
	f.byID[u.ID] = &c
	return u, nil
}

func (f *fakeUsersRepo) UpdateOrcidTokens(ctx context.Context, userID int64, access, refresh *string, expiresAt *time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.AccessToken, u.RefreshToken, u.TokenExpiresAt = access, refresh, expiresAt
	return nil
}

// --- access tokens ---

type fakeTokensRepo struct {
	mu   sync.Mutex
	rows map[string]*models.AccessToken

	createErr error
	deleteErr error
}

func newFakeTokensRepo() *fakeTokensRepo {
	return &fakeTokensRepo{rows: map[string]*models.AccessToken{}}
}

func (f *fakeTokensRepo) Create(ctx context.Context, id string, userID int64, validity time.Duration) (*models.AccessToken, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &models.AccessToken{ID: id, UserID: userID, ExpiresAt: time.Now().Add(validity), CreatedAt: time.Now()}
	f.rows[id] = t
	return t, nil
}

func (f *fakeTokensRepo) Find(ctx context.Context, id string) (*models.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeTokensRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeTokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, t := range f.rows {
		if t.ExpiresAt.Before(now) {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

// --- entries ---

type fakeEntriesRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Entry
	next int64

	createErr error
	deleteErr error
	creates   int
}

func newFakeEntriesRepo() *fakeEntriesRepo {
	return &fakeEntriesRepo{rows: map[string]*models.Entry{}, next: 1}
}

func (f *fakeEntriesRepo) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.rows[e.EntryID]; ok {
		return nil, common.ErrAlreadyExists
	}
	e.ID = f.next
	f.next++
	e.CreatedAt, e.UpdatedAt = time.Now(), time.Now()
	c := *e
	f.rows[e.EntryID] = &c
	return e, nil
}

func (f *fakeEntriesRepo) ExistsByEntryID(ctx context.Context, entryID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[entryID]
	return ok, nil
}

func (f *fakeEntriesRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Entry, 0)
	for _, e := range f.rows {
		if e.UserID == userID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeEntriesRepo) GetByEntryIDForUser(ctx context.Context, entryID string, userID int64) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[entryID]
	if !ok || e.UserID != userID {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEntriesRepo) DeleteByEntryIDForUser(ctx context.Context, entryID string, userID int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[entryID]
	if !ok || e.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.rows, entryID)
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTokensRepo
	e *fakeEntriesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), t: newFakeTokensRepo(), e: newFakeEntriesRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error     { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository               { return m.u }
func (m *fakeRepoManager) AccessTokens(db dbx.DBTX) accesstokens.Repository { return m.t }
func (m *fakeRepoManager) Entries(db dbx.DBTX) entries.Repository           { return m.e }

// --- orcid ---

type fakeOrcid struct {
	exchangeOut *orcid.TokenResponse
	exchangeErr error
	refreshOut  *orcid.TokenResponse
	refreshErr  error
	profileOut  *orcid.Profile
	profileErr  error

	exchangeCalls int
	refreshedWith string
}

func (f *fakeOrcid) ExchangeCode(ctx context.Context, code string) (*orcid.TokenResponse, error) {
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangeOut, nil
}

func (f *fakeOrcid) RefreshToken(ctx context.Context, rt string) (*orcid.TokenResponse, error) {
	f.refreshedWith = rt
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshOut, nil
}

func (f *fakeOrcid) FetchProfile(ctx context.Context, orcidID, accessToken string) (*orcid.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profileOut, nil
}

type countingCounter struct{ n int }

func (c *countingCounter) Inc() { c.n++ }
