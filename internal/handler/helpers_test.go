package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/letterplay/internal/auth"
	"github.com/sakif/letterplay/internal/client"
	"github.com/sakif/letterplay/internal/gamepage"
	"github.com/sakif/letterplay/internal/handler"
	"github.com/sakif/letterplay/internal/i18n"
	"github.com/sakif/letterplay/internal/model"
	"github.com/sakif/letterplay/internal/repository"
	sqliteRepo "github.com/sakif/letterplay/internal/repository/sqlite"
	"github.com/sakif/letterplay/internal/service"
	"github.com/sakif/letterplay/web"
)

const testSecret = "handler-test-secret-0123456789"

// testApp is the JSON API and the pages over one in-memory database. The
// pages reach the API through a real HTTP server, like in production.
type testApp struct {
	api    *httptest.Server
	pages  http.Handler
	tokens *auth.TokenService
	auth   *service.AuthService
	games  *service.GameService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithCatalog(t, nil)
}

// newTestAppWithCatalog is newTestApp with game data served by source.
func newTestAppWithCatalog(t *testing.T, source gamepage.GameSource) *testApp {
	t.Helper()
	logger := discardLogger()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)

	authSvc := service.NewAuthService(db, tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), logger)
	gameSvc := service.NewGameService(db, db, logger)
	reviewSvc := service.NewReviewService(db, db, logger)
	watchlistSvc := service.NewWatchlistService(db, db, logger)

	authHandler := handler.NewAuthHandler(authSvc, nil, logger)
	gameHandler := handler.NewGameHandler(gameSvc, logger)
	reviewHandler := handler.NewReviewHandler(reviewSvc, logger)
	watchlistHandler := handler.NewWatchlistHandler(watchlistSvc, logger)

	r := chi.NewRouter()
	r.Post("/auth/register", authHandler.HandleRegister)
	r.Post("/auth/login", authHandler.HandleLogin)
	r.Post("/auth/logout", authHandler.HandleLogout)
	r.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/games", gameHandler.HandleList)
			r.Get("/games/{id}", gameHandler.HandleGet)
			r.Get("/games/{id}/reviews", reviewHandler.HandleListByGame)
			r.Get("/reviews/ranking", reviewHandler.HandleRanking)
			r.Get("/users", authHandler.HandleListUsers)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
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

	api := httptest.NewServer(r)
	t.Cleanup(api.Close)

	apiClient := client.New(api.URL, api.Client())
	cache, err := gamepage.NewCache(16, logger)
	require.NoError(t, err)
	page := gamepage.New(func(token string) gamepage.API {
		return apiClient.WithToken(token)
	}, source, cache, logger)

	pageHandler, err := handler.NewPageHandler(web.Templates(), page, i18n.NewResolver("pt-BR"), false, logger)
	require.NoError(t, err)

	pages := chi.NewRouter()
	pages.Get("/", pageHandler.HandleHome)
	pages.Get("/games/{id}", pageHandler.HandleGame)
	pages.Post("/games/{id}/favorite", pageHandler.HandleToggleFavorite)
	pages.Post("/games/{id}/reviews", pageHandler.HandlePostReview)
	pages.Post("/games/{id}/reviews/{reviewID}/delete", pageHandler.HandleDeleteReview)

	return &testApp{
		api:    api,
		pages:  pages,
		tokens: tokens,
		auth:   authSvc,
		games:  gameSvc,
	}
}

// register creates a user and returns it with a session token.
func (a *testApp) register(t *testing.T, username string) (*model.User, string) {
	t.Helper()
	result, err := a.auth.Register(context.Background(), username, "correct horse battery")
	require.NoError(t, err)
	return result.User, result.Token
}

func (a *testApp) createGame(t *testing.T, title string) *model.CatalogGame {
	t.Helper()
	meta := 91
	game, err := a.games.Create(context.Background(), repository.GameInput{
		Titulo:         title,
		Descricao:      "Uma aventura.",
		CapaURL:        "//images.igdb.com/igdb/image/upload/t_thumb/co1.jpg",
		NotaMetacritic: &meta,
		Generos:        []string{"Aventura", "RPG"},
		Desenvolvedora: "Nintendo EPD",
		Publicadora:    "Nintendo",
	})
	require.NoError(t, err)
	return game
}

// do sends a JSON request to the API. token may be empty.
func (a *testApp) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, a.api.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.api.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
