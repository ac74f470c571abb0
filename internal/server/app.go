// Package server initializes and runs the nobs API server.
// It opens the database, applies migrations, selects the storage backend,
// starts the REST server and purges expired API tokens until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/nobs/internal/cryptox"
	"github.com/dmitrijs2005/nobs/internal/logging"
	"github.com/dmitrijs2005/nobs/internal/server/config"
	"github.com/dmitrijs2005/nobs/internal/server/metrics"
	"github.com/dmitrijs2005/nobs/internal/server/orcid"
	"github.com/dmitrijs2005/nobs/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/nobs/internal/server/rest"
	"github.com/dmitrijs2005/nobs/internal/server/services"
	"github.com/dmitrijs2005/nobs/internal/server/storage"
)

const tokenPurgeInterval = time.Hour

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	metrics      *metrics.Metrics
	authService  *services.AuthService
	entryService *services.EntryService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	cipher, err := cryptox.NewTokenCipher([]byte(c.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("token cipher: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(cipher)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := newStore(ctx, c, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	oc, err := orcid.NewClient(c.Orcid, nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	m := metrics.New()

	as := services.NewAuthService(db, rm, oc, c, logger)
	as.SetLoginCounters(m.LoginCounters())

	es := services.NewEntryService(db, rm, store, c, logger)
	es.SetCounters(m.EntriesCreated, m.EntriesDeleted)

	return &App{config: c, logger: logger, db: db, metrics: m, authService: as, entryService: es}, nil
}

func newStore(ctx context.Context, c *config.Config, logger logging.Logger) (storage.Store, error) {
	local, err := storage.NewLocalStore(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if c.StorageBackend != config.StorageS3 {
		return local, nil
	}
	s3, err := storage.NewS3Store(ctx, local, c, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	return s3, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config, app.logger, app.authService, app.entryService, app.metrics)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeTokens deletes expired API token rows every interval until ctx ends.
func (app *App) purgeTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.authService.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "token purge failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "purged expired tokens", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeTokens(ctx, tokenPurgeInterval)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close failed", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
