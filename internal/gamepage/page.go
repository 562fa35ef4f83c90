// Package gamepage holds the state behind the "About game" page.
//
// A State is built per request. Load fills it from the REST API (and, when
// configured, an external catalog); the mutation methods apply one user
// action to it and leave an Alert for the page to show. All network failures
// end up as alerts or empty lists, never as errors returned to the caller.
package gamepage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/letterplay/internal/catalog"
	"github.com/sakif/letterplay/internal/client"
	"github.com/sakif/letterplay/internal/model"
)

// API is the part of the REST client the page uses. Every call is made with
// the visitor's token already attached.
type API interface {
	GetGame(ctx context.Context, gameID int64) ([]byte, error)
	ListGames(ctx context.Context, limit, offset int) ([]byte, error)
	ListReviews(ctx context.Context, gameID int64) (*model.ReviewList, error)
	AddReview(ctx context.Context, gameID int64, nota int, comentario string) (*model.Review, error)
	DeleteReview(ctx context.Context, gameID, reviewID int64) error
	AddFavorite(ctx context.Context, gameID int64) error
	RemoveFavorite(ctx context.Context, gameID int64) error
	ListUsers(ctx context.Context) ([]model.UserSummary, error)
	Me(ctx context.Context) (*model.UserSummary, error)
}

// Connector returns an API bound to a session token. "" means anonymous.
type Connector func(token string) API

// GameSource fetches a raw game document from an external catalog.
type GameSource interface {
	GetGame(ctx context.Context, gameID int64) ([]byte, error)
}

// Alert identifies a message shown to the visitor after an action.
type Alert string

const (
	AlertNone           Alert = ""
	AlertLoginRequired  Alert = "login_required"
	AlertEmptyComment   Alert = "empty_comment"
	AlertReviewPosted   Alert = "review_posted"
	AlertReviewFailed   Alert = "review_failed"
	AlertDeleteFailed   Alert = "delete_failed"
	AlertFavoriteFailed Alert = "favorite_failed"
)

var alerts = map[Alert]bool{
	AlertLoginRequired:  true,
	AlertEmptyComment:   true,
	AlertReviewPosted:   true,
	AlertReviewFailed:   true,
	AlertDeleteFailed:   true,
	AlertFavoriteFailed: true,
}

// ParseAlert maps a query parameter back to a known alert. Unknown values
// are ignored so the URL cannot inject arbitrary text.
func ParseAlert(s string) Alert {
	if alerts[Alert(s)] {
		return Alert(s)
	}
	return AlertNone
}

const (
	DefaultNota        = 5
	MaxScreenshots     = 4
	goodMetacritic     = 75
	averageMetacritic  = 50
	unknownAuthorLabel = "Usuário #%d"
)

// ReviewForm is the "leave your review" form.
type ReviewForm struct {
	Nota       int
	Comentario string
}

func defaultForm() ReviewForm {
	return ReviewForm{Nota: DefaultNota}
}

// State is everything the page renders.
type State struct {
	GameID         int64
	Game           *model.Game
	IsFavorite     bool
	Reviews        []model.Review
	MediaNota      float64
	Form           ReviewForm
	CurrentUser    *model.UserSummary
	Authors        map[int64]string
	Loading        bool
	LoadingReviews bool
	Alert          Alert

	// External is set when Game came from the external catalog, whose
	// documents carry no is_favorite for the visitor.
	External bool

	api API
}

// Page builds and mutates States.
type Page struct {
	connect Connector
	catalog GameSource // nil: games come from the REST API
	cache   *Cache
	logger  *slog.Logger
}

// New returns a Page. source may be nil.
func New(connect Connector, source GameSource, cache *Cache, logger *slog.Logger) *Page {
	return &Page{
		connect: connect,
		catalog: source,
		cache:   cache,
		logger:  logger,
	}
}

func (p *Page) newState(token string, gameID int64) *State {
	return &State{
		GameID:  gameID,
		Reviews: []model.Review{},
		Form:    defaultForm(),
		Authors: map[int64]string{},
		api:     p.connect(token),
	}
}

// Begin returns a State with only the current user resolved. Form posts use
// it so they do not pay for a full page load.
func (p *Page) Begin(ctx context.Context, token string, gameID int64) *State {
	st := p.newState(token, gameID)
	if token != "" {
		st.CurrentUser = p.currentUser(ctx, st.api)
	}
	return st
}

// Load fetches the game, the visitor, the author names and the reviews in
// parallel. A missing game leaves st.Game nil.
func (p *Page) Load(ctx context.Context, token string, gameID int64) *State {
	st := p.newState(token, gameID)
	st.Loading = true

	var g errgroup.Group
	g.Go(func() error {
		st.Game, st.External = p.loadGame(ctx, st.api, gameID)
		return nil
	})
	if token != "" {
		g.Go(func() error {
			st.CurrentUser = p.currentUser(ctx, st.api)
			return nil
		})
	}
	g.Go(func() error {
		st.Authors = p.loadAuthors(ctx, st.api)
		return nil
	})
	g.Go(func() error {
		p.LoadReviews(ctx, st)
		return nil
	})
	_ = g.Wait()

	if st.Game != nil {
		st.IsFavorite = st.Game.IsFavorite
	}
	st.Loading = false
	return st
}

// loadGame reports whether the game came fresh from the external catalog.
func (p *Page) loadGame(ctx context.Context, api API, gameID int64) (*model.Game, bool) {
	var (
		raw []byte
		err error
	)
	if p.catalog != nil {
		raw, err = p.catalog.GetGame(ctx, gameID)
	} else {
		raw, err = api.GetGame(ctx, gameID)
	}
	if err == nil {
		game, nerr := catalog.Normalize(raw)
		if nerr == nil {
			if game.ID == 0 {
				game.ID = gameID
			}
			p.cache.Put(game)
			return game, p.catalog != nil
		}
		err = nerr
	}

	if client.StatusOf(err) != http.StatusNotFound {
		p.logger.Warn("failed to fetch game, falling back to cache",
			slog.Int64("game_id", gameID),
			slog.String("error", err.Error()),
		)
	}
	game, ok := p.cache.Get(gameID)
	if !ok {
		return nil, false
	}
	return game, false
}

func (p *Page) currentUser(ctx context.Context, api API) *model.UserSummary {
	user, err := api.Me(ctx)
	if err != nil {
		if client.StatusOf(err) != http.StatusUnauthorized {
			p.logger.Warn("failed to resolve current user", slog.String("error", err.Error()))
		}
		return nil
	}
	return user
}

func (p *Page) loadAuthors(ctx context.Context, api API) map[int64]string {
	authors := map[int64]string{}
	users, err := api.ListUsers(ctx)
	if err != nil {
		p.logger.Warn("failed to list users", slog.String("error", err.Error()))
		return authors
	}
	for _, u := range users {
		authors[u.ID] = u.Username
	}
	return authors
}

// LoadReviews refreshes st.Reviews. On failure the list is emptied.
func (p *Page) LoadReviews(ctx context.Context, st *State) {
	st.LoadingReviews = true
	defer func() { st.LoadingReviews = false }()

	list, err := st.api.ListReviews(ctx, st.GameID)
	if err != nil {
		p.logger.Warn("failed to list reviews",
			slog.Int64("game_id", st.GameID),
			slog.String("error", err.Error()),
		)
		st.Reviews = []model.Review{}
		st.MediaNota = 0
		return
	}
	st.Reviews = list.Items
	st.MediaNota = list.MediaNota
}

// PostReview submits form for the current user.
func (p *Page) PostReview(ctx context.Context, st *State, form ReviewForm) {
	st.Form = form
	if st.CurrentUser == nil {
		st.Alert = AlertLoginRequired
		return
	}
	if strings.TrimSpace(form.Comentario) == "" {
		st.Alert = AlertEmptyComment
		return
	}

	if _, err := st.api.AddReview(ctx, st.GameID, form.Nota, form.Comentario); err != nil {
		p.logger.Warn("failed to post review",
			slog.Int64("game_id", st.GameID),
			slog.String("error", err.Error()),
		)
		st.Alert = AlertReviewFailed
		return
	}

	st.Form = defaultForm()
	p.LoadReviews(ctx, st)
	st.Alert = AlertReviewPosted
}

// DeleteReview deletes one of the current user's reviews. Nothing happens
// unless the visitor confirmed.
func (p *Page) DeleteReview(ctx context.Context, st *State, reviewID int64, confirmed bool) {
	if !confirmed {
		return
	}
	if err := st.api.DeleteReview(ctx, st.GameID, reviewID); err != nil {
		p.logger.Warn("failed to delete review",
			slog.Int64("game_id", st.GameID),
			slog.Int64("review_id", reviewID),
			slog.String("error", err.Error()),
		)
		st.Alert = AlertDeleteFailed
		return
	}
	p.LoadReviews(ctx, st)
}

// ToggleFavorite flips st.IsFavorite before calling the API and flips it
// back if the call fails.
func (p *Page) ToggleFavorite(ctx context.Context, st *State) {
	if st.GameID == 0 {
		return
	}
	previous := st.IsFavorite
	st.IsFavorite = !previous

	var err error
	if previous {
		err = st.api.RemoveFavorite(ctx, st.GameID)
	} else {
		err = st.api.AddFavorite(ctx, st.GameID)
	}
	if err != nil {
		p.logger.Warn("failed to toggle favorite",
			slog.Int64("game_id", st.GameID),
			slog.Bool("was_favorite", previous),
			slog.String("error", err.Error()),
		)
		st.IsFavorite = previous
		st.Alert = AlertFavoriteFailed
		return
	}
	p.cache.SetFavorite(st.GameID, st.IsFavorite)
}

// Catalog lists games for the home page. Entries the adapter rejects are
// skipped; a failed call yields an empty list.
func (p *Page) Catalog(ctx context.Context, token string, limit, offset int) []model.Game {
	games := []model.Game{}
	raw, err := p.connect(token).ListGames(ctx, limit, offset)
	if err != nil {
		p.logger.Warn("failed to list games", slog.String("error", err.Error()))
		return games
	}
	gjson.ParseBytes(raw).ForEach(func(_, item gjson.Result) bool {
		if game, err := catalog.Normalize([]byte(item.Raw)); err == nil {
			games = append(games, *game)
		}
		return true
	})
	return games
}

// AuthorName resolves a review's author for display.
func (st *State) AuthorName(r model.Review) string {
	if name, ok := st.Authors[r.UserID]; ok && name != "" {
		return name
	}
	if r.Username != "" {
		return r.Username
	}
	return fmt.Sprintf(unknownAuthorLabel, r.UserID)
}

// CanDelete reports whether the current user owns r.
func (st *State) CanDelete(r model.Review) bool {
	return st.CurrentUser != nil && st.CurrentUser.ID == r.UserID
}

// Screenshots returns the screenshots shown on the page.
func (st *State) Screenshots() []string {
	if st.Game == nil {
		return nil
	}
	if len(st.Game.Screenshots) > MaxScreenshots {
		return st.Game.Screenshots[:MaxScreenshots]
	}
	return st.Game.Screenshots
}

// ShowStatus reports whether the watchlist badge is visible.
func (st *State) ShowStatus() bool {
	return st.Game != nil && st.Game.UserStatus != nil && *st.Game.UserStatus != model.StatusNotPlayed
}

// StatusClass is the badge colour: "played" for JOGADO, "pending" otherwise.
func (st *State) StatusClass() string {
	if st.Game != nil && st.Game.UserStatus != nil && *st.Game.UserStatus == model.StatusPlayed {
		return "played"
	}
	return "pending"
}

// MetacriticClass buckets the score as "good", "average" or "bad".
func MetacriticClass(score int) string {
	switch {
	case score >= goodMetacritic:
		return "good"
	case score >= averageMetacritic:
		return "average"
	default:
		return "bad"
	}
}
