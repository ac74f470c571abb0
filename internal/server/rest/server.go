// Package rest is the HTTP surface of the server: a chi router exposing the
// auth and entry endpoints as JSON.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/nobs/internal/logging"
	"github.com/dmitrijs2005/nobs/internal/server/config"
	"github.com/dmitrijs2005/nobs/internal/server/metrics"
	"github.com/dmitrijs2005/nobs/internal/server/models"
	"github.com/dmitrijs2005/nobs/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	serviceName    = "noBS Backend API"
	serviceVersion = "1.0.0"

	shutdownTimeout = 10 * time.Second

	// multipartMemory is how much of a multipart body is held in memory
	// before spilling files to disk.
	multipartMemory = 32 << 20

	maxMassbankFiles = 64
)

type AuthService interface {
	Login(ctx context.Context, code string) (*services.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*services.Principal, error)
	Logout(ctx context.Context, tokenID string) error
	RefreshOrcidToken(ctx context.Context, userID int64) (*time.Time, error)
}

type EntryService interface {
	Create(ctx context.Context, userID int64, in services.CreateEntryInput) (*models.Entry, error)
	List(ctx context.Context, userID int64) ([]*models.Entry, error)
	Get(ctx context.Context, userID int64, entryID string) (*models.Entry, error)
	Delete(ctx context.Context, userID int64, entryID string) error
}

type Server struct {
	address     string
	auth        AuthService
	entries     EntryService
	metrics     *metrics.Metrics
	logger      logging.Logger
	development bool
	corsOrigins []string
	maxBody     int64
}

func NewServer(cfg *config.Config, l logging.Logger, as AuthService, es EntryService, m *metrics.Metrics) *Server {
	return &Server{
		address:     cfg.HTTPAddr,
		auth:        as,
		entries:     es,
		metrics:     m,
		logger:      l.With("module", "rest_server"),
		development: cfg.Development,
		corsOrigins: cfg.CORSOrigins,
		maxBody:     cfg.MaxNmrArchiveSize + maxMassbankFiles*cfg.MaxMassbankFileSize,
	}
}

// Router builds the handler tree. It is exported for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           90,
	}))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/", s.handleBanner)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Get("/check", s.handleCheck)
		r.With(s.optionalAuth).Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleMe)
			r.Post("/refresh-orcid-token", s.handleRefreshOrcidToken)
		})
	})

	r.Route("/api/entries", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleListEntries)
		r.Post("/", s.handleCreateEntry)
		r.Get("/{id}", s.handleGetEntry)
		r.Delete("/{id}", s.handleDeleteEntry)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})

	return r
}

// Run serves until ctx is cancelled and then shuts the server down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    serviceName,
		"version": serviceVersion,
		"status":  "running",
		"auth":    "/api/auth/login",
	})
}
