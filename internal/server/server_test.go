package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/letterplay/internal/auth"
	"github.com/sakif/letterplay/internal/config"
	"github.com/sakif/letterplay/internal/server"
)

// startServer runs the whole application on a random port. The listener is
// opened first so API_BASE_URL can point the pages back at it.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	ts := httptest.NewUnstartedServer(http.NotFoundHandler())
	cfg := config.Config{
		Port:              8080,
		DBPath:            filepath.Join(t.TempDir(), "letterplay.db"),
		JWTSecret:         "server-test-secret-0123456789",
		APIBaseURL:        "http://" + ts.Listener.Addr().String(),
		HTTPClientTimeout: 5 * time.Second,
		PageCacheSize:     8,
		LogLevel:          "error",
		DefaultLang:       "pt-BR",
	}

	srv, err := server.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ts.Config.Handler = srv.Handler()
	ts.Start()
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path, token string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(buf))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, client *http.Client, target string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServer_EndToEnd(t *testing.T) {
	ts := startServer(t)

	resp := postJSON(t, ts, "/auth/register", "", map[string]string{"username": "ana", "password": "correct horse battery"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var registered struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&registered))
	require.NotEmpty(t, registered.Token)

	resp = postJSON(t, ts, "/api/games", registered.Token, map[string]any{
		"titulo":         "Celeste",
		"descricao":      "Suba a montanha.",
		"generos":        []string{"Plataforma"},
		"desenvolvedora": "Maddy Makes Games",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var game struct {
		ID int64 `json:"id_jogo"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&game))

	_, body := get(t, ts.Client(), ts.URL+"/")
	assert.Contains(t, body, "Celeste")

	pageResp, body := get(t, ts.Client(), fmt.Sprintf("%s/games/%d", ts.URL, game.ID))
	assert.Equal(t, http.StatusOK, pageResp.StatusCode)
	assert.Contains(t, body, "Celeste")
	assert.Contains(t, body, "Maddy Makes Games")
	assert.Contains(t, body, "Desconhecido", "missing publisher")

	// A browser session: the cookie is forwarded by the page to the API.
	browser := &http.Client{
		Jar:           &cookieJar{cookies: []*http.Cookie{{Name: auth.CookieName, Value: registered.Token}}},
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	form := url.Values{"nota": {"5"}, "comentario": {"Difícil e lindo"}}
	resp, err := browser.PostForm(fmt.Sprintf("%s/games/%d/reviews", ts.URL, game.ID), form)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "alert=review_posted")

	_, body = get(t, browser, fmt.Sprintf("%s/games/%d", ts.URL, game.ID))
	assert.Contains(t, body, "Difícil e lindo")
	assert.Contains(t, body, "Excluir")
}

func TestServer_Static(t *testing.T) {
	ts := startServer(t)

	resp, body := get(t, ts.Client(), ts.URL+"/static/css/style.css")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, ".metacritic-good")
}

func TestServer_GitHubDisabled(t *testing.T) {
	ts := startServer(t)

	resp, _ := get(t, ts.Client(), ts.URL+"/auth/github/login")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_BadGameID(t *testing.T) {
	ts := startServer(t)

	resp, body := get(t, ts.Client(), ts.URL+"/api/games/abc")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "validation_error")
}

// cookieJar sends a fixed set of cookies with every request.
type cookieJar struct {
	cookies []*http.Cookie
}

func (j *cookieJar) SetCookies(*url.URL, []*http.Cookie) {}

func (j *cookieJar) Cookies(*url.URL) []*http.Cookie {
	return j.cookies
}
