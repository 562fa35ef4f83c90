package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/message"

	"github.com/sakif/letterplay/internal/auth"
	"github.com/sakif/letterplay/internal/gamepage"
	"github.com/sakif/letterplay/internal/i18n"
	"github.com/sakif/letterplay/internal/model"
)

const (
	homePageSize = 40

	// favoriteFlashCookie carries the result of a favorite toggle to the
	// page the toggle redirects to. It is read once.
	favoriteFlashCookie = "lp_fav"
)

// PageHandler renders the server-side pages: the catalog home and the
// "About game" page with its favorite and review forms.
//
// TEMPLATE COMPOSITION:
// base.html defines the layout with a {{template "content" .}} hole. Each
// page is parsed together with base.html into its own set, because both
// pages define "content".
//
// FORMS (POST → redirect → GET):
// Every form posts, applies one action through gamepage, and redirects back
// to the game page with ?alert=<key>. Refreshing the page never re-submits.
// The favorite toggle also leaves a one-shot cookie with its result, used
// only when the game comes from the external catalog, which cannot say
// whether the visitor favorited it. The API's is_favorite always wins.
type PageHandler struct {
	page          *gamepage.Page
	gameTmpl      *template.Template
	homeTmpl      *template.Template
	langs         i18n.Resolver
	githubEnabled bool
	logger        *slog.Logger
}

// NewPageHandler parses base.html, about_game.html and home.html from
// templates.
func NewPageHandler(
	templates fs.FS,
	page *gamepage.Page,
	langs i18n.Resolver,
	githubEnabled bool,
	logger *slog.Logger,
) (*PageHandler, error) {
	funcs := template.FuncMap{
		"metacriticClass": gamepage.MetacriticClass,
		"stars": func(n int) string {
			if n < 0 {
				n = 0
			}
			return strings.Repeat("★", n)
		},
	}

	gameTmpl, err := template.New("").Funcs(funcs).ParseFS(templates, "base.html", "about_game.html")
	if err != nil {
		return nil, fmt.Errorf("parsing game page templates: %w", err)
	}
	homeTmpl, err := template.New("").Funcs(funcs).ParseFS(templates, "base.html", "home.html")
	if err != nil {
		return nil, fmt.Errorf("parsing home page templates: %w", err)
	}

	return &PageHandler{
		page:          page,
		gameTmpl:      gameTmpl,
		homeTmpl:      homeTmpl,
		langs:         langs,
		githubEnabled: githubEnabled,
		logger:        logger,
	}, nil
}

// layout is the data base.html needs.
type layout struct {
	Lang          string
	Title         string
	User          *model.UserSummary
	GitHubEnabled bool

	alert   gamepage.Alert
	printer *message.Printer
}

// T prints a localized message.
func (l layout) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

func (l layout) AlertText() string {
	if l.alert == gamepage.AlertNone {
		return ""
	}
	return l.T("alert." + string(l.alert))
}

type homeView struct {
	layout
	Games []model.Game
}

type gameView struct {
	layout
	*gamepage.State
}

type starOption struct {
	Value   int
	Checked bool
}

// StatusLabel translates the watchlist status. Statuses without a
// translation are shown as sent.
func (v gameView) StatusLabel() string {
	if v.Game == nil || v.Game.UserStatus == nil {
		return ""
	}
	status := *v.Game.UserStatus
	if strings.Contains(status, "%") {
		return status
	}
	key := "status." + status
	if label := v.T(key); label != key {
		return label
	}
	return status
}

func (v gameView) GenreList() string {
	if v.Game == nil {
		return ""
	}
	return strings.Join(v.Game.Genres, ", ")
}

func (v gameView) HasMetacritic() bool {
	return v.Game != nil && v.Game.Metacritic != nil
}

func (v gameView) MetacriticScore() int {
	if !v.HasMetacritic() {
		return 0
	}
	return *v.Game.Metacritic
}

func (v gameView) StarOptions() []starOption {
	opts := make([]starOption, 0, 5)
	for n := 1; n <= 5; n++ {
		opts = append(opts, starOption{Value: n, Checked: n == v.Form.Nota})
	}
	return opts
}

func (v gameView) CommentPlaceholder() string {
	if v.CurrentUser != nil {
		return v.T("reviews.commenting_as", v.CurrentUser.Username)
	}
	return v.T("reviews.placeholder")
}

// newLayout resolves the language (persisting ?lang= as a cookie) and the
// alert carried by the redirect.
func (h *PageHandler) newLayout(w http.ResponseWriter, r *http.Request) layout {
	tag, persist := h.langs.Resolve(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return layout{
		Lang:          tag.String(),
		GitHubEnabled: h.githubEnabled,
		alert:         gamepage.ParseAlert(r.URL.Query().Get("alert")),
		printer:       i18n.Printer(tag),
	}
}

// HandleHome lists the catalog.
//
// HTTP: GET /
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	l := h.newLayout(w, r)
	l.Title = "LetterPlay"

	view := homeView{
		layout: l,
		Games:  h.page.Catalog(r.Context(), sessionToken(r), homePageSize, 0),
	}
	h.render(w, h.homeTmpl, http.StatusOK, view)
}

// HandleGame renders the "About game" page.
//
// HTTP: GET /games/{id}
//
// A game that cannot be loaded from upstream or from the cache renders the
// not-found message with 404.
func (h *PageHandler) HandleGame(w http.ResponseWriter, r *http.Request) {
	l := h.newLayout(w, r)

	gameID, err := pathID(r, "id")
	if err != nil {
		l.Title = l.T("page.title", l.T("page.not_found"))
		h.render(w, h.gameTmpl, http.StatusNotFound, gameView{layout: l, State: &gamepage.State{}})
		return
	}

	st := h.page.Load(r.Context(), sessionToken(r), gameID)
	if fav, ok := takeFavoriteFlash(w, r, gameID); ok && st.External {
		st.IsFavorite = fav
	}

	l.User = st.CurrentUser
	status := http.StatusOK
	if st.Game == nil {
		status = http.StatusNotFound
		l.Title = l.T("page.title", l.T("page.not_found"))
	} else {
		l.Title = l.T("page.title", st.Game.Name)
	}

	h.render(w, h.gameTmpl, status, gameView{layout: l, State: st})
}

// HandleToggleFavorite flips the favorite flag. The form carries the state
// the visitor saw, which is the "previous" value of the toggle.
//
// HTTP: POST /games/{id}/favorite
func (h *PageHandler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.formGameID(w, r)
	if !ok {
		return
	}

	st := h.page.Begin(r.Context(), sessionToken(r), gameID)
	st.IsFavorite, _ = strconv.ParseBool(r.PostFormValue("favorite"))
	h.page.ToggleFavorite(r.Context(), st)

	setFavoriteFlash(w, gameID, st.IsFavorite)
	h.redirectToGame(w, r, gameID, st.Alert)
}

// HandlePostReview submits the review form.
//
// HTTP: POST /games/{id}/reviews
func (h *PageHandler) HandlePostReview(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.formGameID(w, r)
	if !ok {
		return
	}

	nota, err := strconv.Atoi(r.PostFormValue("nota"))
	if err != nil {
		nota = gamepage.DefaultNota
	}

	st := h.page.Begin(r.Context(), sessionToken(r), gameID)
	h.page.PostReview(r.Context(), st, gamepage.ReviewForm{
		Nota:       nota,
		Comentario: r.PostFormValue("comentario"),
	})

	h.redirectToGame(w, r, gameID, st.Alert)
}

// HandleDeleteReview deletes one of the visitor's reviews. The form must
// carry confirm=yes.
//
// HTTP: POST /games/{id}/reviews/{reviewID}/delete
func (h *PageHandler) HandleDeleteReview(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.formGameID(w, r)
	if !ok {
		return
	}
	reviewID, err := pathID(r, "reviewID")
	if err != nil {
		http.Error(w, "invalid review id", http.StatusBadRequest)
		return
	}

	st := h.page.Begin(r.Context(), sessionToken(r), gameID)
	h.page.DeleteReview(r.Context(), st, reviewID, r.PostFormValue("confirm") == "yes")

	h.redirectToGame(w, r, gameID, st.Alert)
}

func (h *PageHandler) formGameID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	gameID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return 0, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return 0, false
	}
	return gameID, true
}

func (h *PageHandler) redirectToGame(w http.ResponseWriter, r *http.Request, gameID int64, alert gamepage.Alert) {
	target := fmt.Sprintf("/games/%d", gameID)
	if alert != gamepage.AlertNone {
		target += "?" + url.Values{"alert": {string(alert)}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// setFavoriteFlash stores "<gameID>:<favorite>" for the next page load.
func setFavoriteFlash(w http.ResponseWriter, gameID int64, favorite bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     favoriteFlashCookie,
		Value:    fmt.Sprintf("%d:%t", gameID, favorite),
		Path:     "/games/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFavoriteFlash reads and clears the flash cookie. ok is false when
// there is none or it belongs to another game.
func takeFavoriteFlash(w http.ResponseWriter, r *http.Request, gameID int64) (favorite, ok bool) {
	c, err := r.Cookie(favoriteFlashCookie)
	if err != nil {
		return false, false
	}
	http.SetCookie(w, &http.Cookie{Name: favoriteFlashCookie, Path: "/games/", MaxAge: -1})

	id, value, found := strings.Cut(c.Value, ":")
	if !found || id != strconv.FormatInt(gameID, 10) {
		return false, false
	}
	favorite, err = strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return favorite, true
}

// render executes into a buffer first so a template error still produces a
// clean 500 instead of half a page.
func (h *PageHandler) render(w http.ResponseWriter, tmpl *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// sessionToken is the raw session cookie. The page forwards it to the API,
// which is the one that validates it.
func sessionToken(r *http.Request) string {
	if token := auth.TokenFromContext(r.Context()); token != "" {
		return token
	}
	if c, err := r.Cookie(auth.CookieName); err == nil {
		return c.Value
	}
	return ""
}
