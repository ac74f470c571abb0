package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/nobs/internal/client/client"
	"github.com/dmitrijs2005/nobs/internal/client/config"
	"github.com/dmitrijs2005/nobs/internal/client/drafts"
	"github.com/dmitrijs2005/nobs/internal/client/form"
	"github.com/dmitrijs2005/nobs/internal/client/models"
	"github.com/dmitrijs2005/nobs/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/nobs/internal/client/services"
	"github.com/dmitrijs2005/nobs/internal/logging"
	"golang.org/x/term"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type submitter interface {
	Submit(ctx context.Context) (services.SubmitOutcome, error)
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	out       io.Writer
	in        *bufio.Reader
	store     *form.Store
	auth      services.AuthService
	entries   services.EntryService
	submitter submitter
	drafts    *drafts.Repository
	autosaver *drafts.AutoSaver

	mu   sync.RWMutex
	user *models.UserProfile
	mode Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel).With("module", "cli")

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api := client.NewHTTPClient(c.ServerURL, nil)
	store := form.NewStore()
	dr := drafts.NewRepository(metadata.NewSQLiteRepository(db))
	as := services.NewAuthService(api, db, logger)

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		out:       os.Stdout,
		in:        bufio.NewReader(os.Stdin),
		store:     store,
		auth:      as,
		entries:   services.NewEntryService(api),
		submitter: services.NewSubmitService(api, store, dr, as, logger),
		drafts:    dr,
		autosaver: drafts.NewAutoSaver(store, dr, c.AutosaveDelay, logger),
	}, nil
}

// Run restores the stored session, starts the autosaver and the session
// watcher, and blocks in the REPL until the user exits or stdin closes.
// A dirty form is saved as a draft on the way out.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	printlnFn("Welcome to nobs (type 'help' for commands)")
	a.restoreSession(ctx)

	a.autosaver.Start()
	defer a.shutdownAutosave()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartStatusWatcher(watchCtx, a.config.StatusCheckInterval)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	runREPL(ctx, a, a.getStatus, a.in, interactive)
}

func (a *App) shutdownAutosave() {
	a.autosaver.Stop()
	if !a.store.Snapshot().Dirty {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := a.autosaver.Flush(ctx); err != nil {
		a.logger.Error(ctx, "final draft save failed", "error", err)
	}
}

func (a *App) restoreSession(ctx context.Context) {
	u, err := a.auth.Restore(ctx)
	if err != nil {
		if !errors.Is(err, services.ErrNoSession) {
			a.logger.Warn(ctx, "session restore failed", "error", err)
		}
		return
	}
	a.setUser(u)
	a.checkStatus(ctx)
}

func (a *App) isLoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user != nil
}

func (a *App) currentUser() *models.UserProfile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

func (a *App) setUser(u *models.UserProfile) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = u
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connection mode changed", "mode", mode)
	}
}

func (a *App) getStatus() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := ""
	if a.user != nil {
		s = displayName(a.user) + " "
	}
	if a.mode != "" {
		s = s + string(a.mode)
	}
	if s != "" {
		s = fmt.Sprintf(" (%s)", s)
	}
	return s
}

// checkStatus re-validates the session. A rejected token signs the user
// out; an unreachable server only switches to offline mode.
func (a *App) checkStatus(ctx context.Context) {
	u, err := a.auth.CheckSession(ctx)
	switch {
	case err == nil:
		a.setUser(u)
		a.setMode(ModeOnline)
	case errors.Is(err, services.ErrNoSession):
		if a.isLoggedIn() {
			printlnFn("Your session has expired, please log in again")
		}
		a.setUser(nil)
		a.setMode(ModeOnline)
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
	default:
		a.logger.Warn(ctx, "session check failed", "error", err)
	}
}

func (a *App) StartStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.isLoggedIn() {
				continue
			}
			cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			a.checkStatus(cctx)
			cancel()

		case <-ctx.Done():
			return
		}
	}
}

func displayName(u *models.UserProfile) string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Orcid
}
