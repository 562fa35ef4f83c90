// Package server sets up the HTTP server, router, and all route definitions.
//
// ONE PROCESS, TWO SURFACES:
// The same router serves the JSON API under /api and /auth, and the
// server-rendered pages (/, /games/{id}). The pages never touch the services
// directly: they call the API over HTTP through internal/client, exactly as
// a separate front-end would. API_BASE_URL points the pages at this process
// by default, or at another deployment of the API.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → Server.New() creates:
//	  sqlite.DB → services → API handlers
//	  client.Client → gamepage.Page → PageHandler
//
// This is the "composition root": all dependencies are wired here.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/letterplay/internal/auth"
	"github.com/sakif/letterplay/internal/client"
	"github.com/sakif/letterplay/internal/config"
	"github.com/sakif/letterplay/internal/gamepage"
	"github.com/sakif/letterplay/internal/handler"
	"github.com/sakif/letterplay/internal/i18n"
	"github.com/sakif/letterplay/internal/middleware"
	sqliteRepo "github.com/sakif/letterplay/internal/repository/sqlite"
	"github.com/sakif/letterplay/internal/service"
	"github.com/sakif/letterplay/web"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection; Start closes it on shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	tokens *auth.TokenService
}

// New opens the database and wires every layer.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		tokens: tokens,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler returns the root handler. Tests serve it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /                                     → catalog (HTML)
//	GET    /games/{id}                           → "About game" page (HTML)
//	POST   /games/{id}/favorite                  → toggle favorite (form)
//	POST   /games/{id}/reviews                   → post review (form)
//	POST   /games/{id}/reviews/{reviewID}/delete → delete review (form)
//	GET    /static/*                             → CSS
//
//	POST   /auth/register | /auth/login | /auth/logout
//	GET    /auth/github/login | /auth/github/callback
//
//	GET    /api/games, /api/games/{id}, /api/games/{id}/reviews
//	GET    /api/reviews/ranking, /api/users
//	GET    /api/me, /api/me/reviews, /api/me/favorites    [auth]
//	POST   /api/games, /api/games/{id}/reviews            [auth]
//	DELETE /api/games/{id}/reviews/{reviewID}             [auth]
//	POST   /api/games/{id}/favorite                       [auth]
//	DELETE /api/games/{id}/favorite                       [auth]
//	PUT    /api/games/{id}/status                         [auth]
//
// MIDDLEWARE ORDER MATTERS:
// RequestID must run before Logger so every log line carries the ID.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// === Static Files ===
	static := web.Static()
	if s.config.StaticDir != "" {
		static = os.DirFS(s.config.StaticDir)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	// === API ===
	authService := service.NewAuthService(s.db, s.tokens, auth.NewPasswordService(), s.logger)
	gameService := service.NewGameService(s.db, s.db, s.logger)
	reviewService := service.NewReviewService(s.db, s.db, s.logger)
	watchlistService := service.NewWatchlistService(s.db, s.db, s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	gameHandler := handler.NewGameHandler(gameService, s.logger)
	reviewHandler := handler.NewReviewHandler(reviewService, s.logger)
	watchlistHandler := handler.NewWatchlistHandler(watchlistService, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(s.tokens))
			r.Get("/games", gameHandler.HandleList)
			r.Get("/games/{id}", gameHandler.HandleGet)
			r.Get("/games/{id}/reviews", reviewHandler.HandleListByGame)
			r.Get("/reviews/ranking", reviewHandler.HandleRanking)
			r.Get("/users", authHandler.HandleListUsers)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.tokens))
			r.Get("/me", authHandler.HandleMe)
			r.Get("/me/reviews", reviewHandler.HandleListMine)
			r.Get("/me/favorites", watchlistHandler.HandleListFavorites)
			r.Post("/games", gameHandler.HandleCreate)
			r.Post("/games/{id}/reviews", reviewHandler.HandleCreate)
			r.Delete("/games/{id}/reviews/{reviewID}", reviewHandler.HandleDelete)
			r.Post("/games/{id}/favorite", watchlistHandler.HandleAddFavorite)
			r.Delete("/games/{id}/favorite", watchlistHandler.HandleRemoveFavorite)
			r.Put("/games/{id}/status", watchlistHandler.HandleSetStatus)
		})
	})

	// === Pages ===
	pageHandler, err := s.newPageHandler()
	if err != nil {
		return err
	}
	s.router.Get("/", pageHandler.HandleHome)
	s.router.Get("/games/{id}", pageHandler.HandleGame)
	s.router.Post("/games/{id}/favorite", pageHandler.HandleToggleFavorite)
	s.router.Post("/games/{id}/reviews", pageHandler.HandlePostReview)
	s.router.Post("/games/{id}/reviews/{reviewID}/delete", pageHandler.HandleDeleteReview)

	return nil
}

// newPageHandler builds the page stack: an HTTP client for the API, the
// optional external catalog, and the LRU cache of the last good game data.
func (s *Server) newPageHandler() (*handler.PageHandler, error) {
	httpClient := &http.Client{Timeout: s.config.HTTPClientTimeout}
	api := client.New(s.config.APIBaseURL, httpClient)

	var source gamepage.GameSource
	if s.config.ExternalCatalogURL != "" {
		source = client.NewCatalogClient(s.config.ExternalCatalogURL, httpClient)
		s.logger.Info("using external catalog", slog.String("url", s.config.ExternalCatalogURL))
	}

	cache, err := gamepage.NewCache(s.config.PageCacheSize, s.logger)
	if err != nil {
		return nil, fmt.Errorf("creating page cache: %w", err)
	}

	page := gamepage.New(func(token string) gamepage.API {
		return api.WithToken(token)
	}, source, cache, s.logger)

	var templates fs.FS = web.Templates()
	if s.config.TemplateDir != "" {
		templates = os.DirFS(s.config.TemplateDir)
	}

	pageHandler, err := handler.NewPageHandler(
		templates,
		page,
		i18n.NewResolver(s.config.DefaultLang),
		s.config.GitHubEnabled(),
		s.logger,
	)
	if err != nil {
		return nil, fmt.Errorf("creating page handler: %w", err)
	}
	return pageHandler, nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (deferred)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("api", s.config.APIBaseURL),
			slog.String("database", s.config.DBPath),
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
