package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/letterplay/internal/apperror"
	"github.com/sakif/letterplay/internal/model"
	"github.com/sakif/letterplay/internal/repository"
)

// In-memory fakes of the repository interfaces. Each keeps copies so a test
// cannot mutate stored state through a returned pointer. Set the *Err fields
// to simulate database failures.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- users ----

type fakeUserRepo struct {
	users     map[int64]*model.User
	nextID    int64
	upsertErr error
	listErr   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, user.Username) {
			return apperror.ConflictMessage("username taken")
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, u := range f.users {
		if u.GitHubID != nil && *u.GitHubID == *user.GitHubID {
			*user = *u
			return nil
		}
	}
	return f.CreateUser(ctx, user)
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	result := *u
	return &result, nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) ListUsers(context.Context) ([]model.UserSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.UserSummary{}
	for _, u := range f.users {
		out = append(out, model.UserSummary{ID: u.ID, Username: u.Username})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- games ----

type fakeGameRepo struct {
	games  map[int64]*model.CatalogGame
	nextID int64
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[int64]*model.CatalogGame), nextID: 1}
}

// add stores a game directly and returns its ID.
func (f *fakeGameRepo) add(title string) int64 {
	g, _ := f.CreateGame(context.Background(), repository.GameInput{Titulo: title})
	return g.ID
}

func (f *fakeGameRepo) CreateGame(_ context.Context, in repository.GameInput) (*model.CatalogGame, error) {
	g := &model.CatalogGame{
		ID:             f.nextID,
		Titulo:         in.Titulo,
		Descricao:      in.Descricao,
		CapaURL:        in.CapaURL,
		NotaMetacritic: in.NotaMetacritic,
		DataLancamento: in.DataLancamento,
		Screenshots:    append([]string{}, in.Screenshots...),
		Generos:        []model.Genre{},
	}
	for i, name := range in.Generos {
		g.Generos = append(g.Generos, model.Genre{ID: int64(i + 1), NomeGenero: name})
	}
	if in.Desenvolvedora != "" {
		g.Desenvolvedora = &model.Company{ID: 1, Nome: in.Desenvolvedora}
	}
	if in.Publicadora != "" {
		g.Publicadora = &model.Company{ID: 2, Nome: in.Publicadora}
	}
	f.nextID++
	f.games[g.ID] = g
	result := *g
	return &result, nil
}

func (f *fakeGameRepo) GetGame(_ context.Context, id int64) (*model.CatalogGame, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, apperror.NotFound("game", strconv.FormatInt(id, 10))
	}
	result := *g
	return &result, nil
}

func (f *fakeGameRepo) ListGames(_ context.Context, opts repository.ListOptions) ([]model.CatalogGame, error) {
	out := []model.CatalogGame{}
	for _, g := range f.games {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Titulo < out[j].Titulo })
	if opts.Offset >= len(out) {
		return []model.CatalogGame{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

// ---- reviews ----

type fakeReviewRepo struct {
	reviews   map[int64]*model.Review
	nextID    int64
	createErr error
	ranking   []model.RankedGame
	// raced, when set, is stored by the next CreateReview call, which then
	// fails the way the UNIQUE (id_user, id_jogo) constraint does.
	raced *model.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[int64]*model.Review), nextID: 1}
}

func (f *fakeReviewRepo) CreateReview(_ context.Context, r *model.Review) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.raced != nil {
		f.raced.ID = f.nextID
		f.nextID++
		f.reviews[f.raced.ID] = f.raced
		f.raced = nil
		return apperror.Conflict("review", fmt.Sprintf("user %d game %d", r.UserID, r.GameID))
	}
	r.ID = f.nextID
	f.nextID++
	stored := *r
	f.reviews[r.ID] = &stored
	return nil
}

func (f *fakeReviewRepo) UpdateReview(_ context.Context, r *model.Review) error {
	stored, ok := f.reviews[r.ID]
	if !ok {
		return apperror.NotFound("review", strconv.FormatInt(r.ID, 10))
	}
	stored.Nota = r.Nota
	stored.Comentario = r.Comentario
	return nil
}

func (f *fakeReviewRepo) GetReviewByID(_ context.Context, id int64) (*model.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, apperror.NotFound("review", strconv.FormatInt(id, 10))
	}
	result := *r
	return &result, nil
}

func (f *fakeReviewRepo) GetReviewByUserAndGame(_ context.Context, userID, gameID int64) (*model.Review, error) {
	for _, r := range f.reviews {
		if r.UserID == userID && r.GameID == gameID {
			result := *r
			return &result, nil
		}
	}
	return nil, nil
}

func (f *fakeReviewRepo) filter(keep func(*model.Review) bool) []model.Review {
	out := []model.Review{}
	for _, r := range f.reviews {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeReviewRepo) ListReviewsByGame(_ context.Context, gameID int64) ([]model.Review, error) {
	return f.filter(func(r *model.Review) bool { return r.GameID == gameID }), nil
}

func (f *fakeReviewRepo) ListReviewsByUser(_ context.Context, userID int64) ([]model.Review, error) {
	return f.filter(func(r *model.Review) bool { return r.UserID == userID }), nil
}

func (f *fakeReviewRepo) DeleteReview(_ context.Context, id int64) error {
	if _, ok := f.reviews[id]; !ok {
		return apperror.NotFound("review", strconv.FormatInt(id, 10))
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) TopRatedGames(_ context.Context, limit int) ([]model.RankedGame, error) {
	if len(f.ranking) > limit {
		return f.ranking[:limit], nil
	}
	return f.ranking, nil
}

// ---- watchlist ----

type watchKey struct{ user, game int64 }

type fakeWatchlistRepo struct {
	entries map[watchKey]*repository.WatchlistEntry
	setErr  error
}

func newFakeWatchlistRepo() *fakeWatchlistRepo {
	return &fakeWatchlistRepo{entries: make(map[watchKey]*repository.WatchlistEntry)}
}

func (f *fakeWatchlistRepo) entry(userID, gameID int64) *repository.WatchlistEntry {
	k := watchKey{userID, gameID}
	e, ok := f.entries[k]
	if !ok {
		e = &repository.WatchlistEntry{UserID: userID, GameID: gameID, Status: model.StatusNotPlayed}
		f.entries[k] = e
	}
	return e
}

func (f *fakeWatchlistRepo) GetEntry(_ context.Context, userID, gameID int64) (*repository.WatchlistEntry, error) {
	e, ok := f.entries[watchKey{userID, gameID}]
	if !ok {
		return nil, nil
	}
	result := *e
	return &result, nil
}

func (f *fakeWatchlistRepo) SetFavorite(_ context.Context, userID, gameID int64, favorite bool) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.entry(userID, gameID).Favorite = favorite
	return nil
}

func (f *fakeWatchlistRepo) SetStatus(_ context.Context, userID, gameID int64, status string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.entry(userID, gameID).Status = status
	return nil
}

func (f *fakeWatchlistRepo) ListFavorites(_ context.Context, userID int64) ([]model.CatalogGame, error) {
	out := []model.CatalogGame{}
	for k, e := range f.entries {
		if k.user == userID && e.Favorite {
			out = append(out, model.CatalogGame{ID: k.game, IsFavorite: true})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
