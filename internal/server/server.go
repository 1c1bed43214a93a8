// Package server is the composition root: it opens the store, builds the
// services and handlers from the configuration and mounts them on a chi
// router.
//
// DEPENDENCY FLOW:
//
//	config.Config
//	  → store (sqlite or postgres)          repository.Store
//	  → metrics.Metrics                     private Prometheus registry
//	  → provider.Fetcher                    one http.Client, observed by metrics
//	  → service.ClientFactory               per-user GitHub clients
//	  → service.StatsService, AuthService
//	  → handler.*
//
// Handlers never see the store and services never see HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/gitstats/internal/auth"
	"github.com/sakif/gitstats/internal/config"
	"github.com/sakif/gitstats/internal/handler"
	"github.com/sakif/gitstats/internal/metrics"
	"github.com/sakif/gitstats/internal/middleware"
	"github.com/sakif/gitstats/internal/provider"
	"github.com/sakif/gitstats/internal/repository"
	"github.com/sakif/gitstats/internal/repository/postgres"
	sqliteRepo "github.com/sakif/gitstats/internal/repository/sqlite"
	"github.com/sakif/gitstats/internal/service"
)

// Server is the HTTP server and everything it owns.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	store   repository.Store
	metrics *metrics.Metrics
}

// OpenStore opens the store the configuration selects: PostgreSQL when
// DATABASE_URL is set, the SQLite file at DB_PATH otherwise.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.UsePostgres() {
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("server: opening postgres store: %w", err)
		}
		return store, nil
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("server: creating database directory: %w", err)
		}
	}
	store, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("server: opening sqlite store: %w", err)
	}
	return store, nil
}

// New opens the configured store and builds the server around it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s, err := NewWithStore(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// NewWithStore builds the server on an already opened store. The server
// takes ownership of store and closes it when Start returns.
func NewWithStore(cfg *config.Config, store repository.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		store:   store,
		metrics: metrics.New(),
	}
	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("server: setting up routes: %w", err)
	}
	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// authStack is what exists only when GitHub login is configured.
type authStack struct {
	tokens  *auth.TokenService
	sealer  *auth.Sealer
	service *service.AuthService
	handler *handler.AuthHandler
}

func (s *Server) buildAuth() (*authStack, error) {
	if !s.config.AuthEnabled() {
		s.logger.Warn("GitHub login disabled: JWT_SECRET, GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET are all required")
		return nil, nil
	}

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	sealer, err := auth.NewSealer(s.config.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token sealer: %w", err)
	}

	callback := s.config.GitHubCallbackURL
	if callback == "" {
		callback = fmt.Sprintf("http://localhost:%d/auth/github/callback", s.config.Port)
	}
	github := auth.NewGitHubProvider(auth.OAuthConfig{
		ClientID:     s.config.GitHubClientID,
		ClientSecret: s.config.GitHubClientSecret,
		CallbackURL:  callback,
		APIBaseURL:   s.config.GitHubAPIBaseURL,
	})

	authService := service.NewAuthService(s.store, tokens, sealer, s.logger)
	return &authStack{
		tokens:  tokens,
		sealer:  sealer,
		service: authService,
		handler: handler.NewAuthHandler(github, authService, tokens.TTL(), s.logger),
	}, nil
}

// setupRoutes mounts every route.
//
// ROUTE STRUCTURE:
// GET  /                      → index page (login link or profile)
// GET  /stats                 → statistics page (HTML)
// GET  /static/*              → CSS
// GET  /healthz               → store ping
// GET  /metrics               → Prometheus scrape
// GET  /auth/github/login     → redirect to GitHub        [login enabled]
// GET  /auth/github/callback  → finish login              [login enabled]
// POST /auth/logout           → clear session (JSON)      [login enabled]
// GET  /logout                → clear session, go home    [login enabled]
// GET  /api/stats             → statistics (JSON)
// GET  /api/me                → profile (JSON)            [session required]
// POST /api/stats/refresh     → drop cached statistics    [session required]
//
// MIDDLEWARE ORDER:
// RequestID runs first so the logger can print it; Recoverer runs inside
// Logger and Metrics so a panic is still logged and counted as a 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(s.metrics, "/metrics", "/healthz"))
	s.router.Use(chimiddleware.Recoverer)

	authn, err := s.buildAuth()
	if err != nil {
		return err
	}

	// Without login every visitor is anonymous.
	optionalAuth := func(next http.Handler) http.Handler { return next }
	var (
		users  handler.UserLookup
		sealer service.TokenOpener
	)
	if authn != nil {
		optionalAuth = auth.OptionalAuth(authn.tokens)
		users = authn.service
		sealer = authn.sealer
	}

	fetcher := provider.NewFetcher(&http.Client{Timeout: s.config.ProviderTimeout}, s.logger, s.metrics)
	sources := service.NewClientFactory(
		fetcher,
		provider.Config{BaseURL: s.config.GitHubAPIBaseURL, Policy: s.config.Policy()},
		s.config.CredentialMode,
		provider.AppCredentials{ClientID: s.config.GitHubClientID, ClientSecret: s.config.GitHubClientSecret},
		sealer,
	)
	statsService := service.NewStatsService(s.store, sources, s.metrics, s.logger)

	pages, err := handler.NewPages(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating page renderer: %w", err)
	}
	indexHandler := handler.NewIndexHandler(pages, users, s.logger)
	statsHandler := handler.NewStatsHandler(statsService, pages, s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.logger)

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", indexHandler.HandleIndex)
		r.Get("/stats", statsHandler.HandleStatsPage)
		r.Get("/api/stats", statsHandler.HandleStatsJSON)
	})

	if authn != nil {
		s.router.Get("/auth/github/login", authn.handler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authn.handler.HandleGitHubCallback)
		s.router.Post("/auth/logout", authn.handler.HandleLogout)
		s.router.Get("/logout", authn.handler.HandleLogoutRedirect)

		s.router.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authn.tokens))
			r.Get("/api/me", authn.handler.HandleMe)
			r.Post("/api/stats/refresh", statsHandler.HandleRefresh)
		})
	}

	return nil
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests and
// closes the store.
//
// WriteTimeout covers a full cache miss, which makes dozens of sequential
// GitHub calls before the first byte is written.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.Bool("postgres", s.config.UsePostgres()),
			slog.Bool("login", s.config.AuthEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
