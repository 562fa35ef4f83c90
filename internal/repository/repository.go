// Package repository declares the storage interfaces the service layer depends on.
// The sqlite sub-package provides the only production implementation.
package repository

import (
	"context"

	"github.com/sakif/letterplay/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// GameInput is the data needed to store a catalog game. Developer, publisher and
// genres are matched by name and created on first use.
type GameInput struct {
	Titulo         string
	Descricao      string
	CapaURL        string
	NotaMetacritic *int
	DataLancamento string
	Screenshots    []string
	Generos        []string
	Desenvolvedora string
	Publicadora    string
}

type GameRepository interface {
	CreateGame(ctx context.Context, in GameInput) (*model.CatalogGame, error)
	GetGame(ctx context.Context, id int64) (*model.CatalogGame, error)
	ListGames(ctx context.Context, opts ListOptions) ([]model.CatalogGame, error)
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *model.Review) error
	UpdateReview(ctx context.Context, review *model.Review) error
	GetReviewByID(ctx context.Context, id int64) (*model.Review, error)
	GetReviewByUserAndGame(ctx context.Context, userID, gameID int64) (*model.Review, error)
	ListReviewsByGame(ctx context.Context, gameID int64) ([]model.Review, error)
	ListReviewsByUser(ctx context.Context, userID int64) ([]model.Review, error)
	DeleteReview(ctx context.Context, id int64) error
	TopRatedGames(ctx context.Context, limit int) ([]model.RankedGame, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	UpsertGitHubUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.UserSummary, error)
}

// WatchlistEntry is a user's relationship with one game.
type WatchlistEntry struct {
	UserID   int64
	GameID   int64
	Status   string
	Favorite bool
}

type WatchlistRepository interface {
	GetEntry(ctx context.Context, userID, gameID int64) (*WatchlistEntry, error)
	SetFavorite(ctx context.Context, userID, gameID int64, favorite bool) error
	SetStatus(ctx context.Context, userID, gameID int64, status string) error
	ListFavorites(ctx context.Context, userID int64) ([]model.CatalogGame, error)
}
