package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/letterplay/internal/apperror"
	"github.com/sakif/letterplay/internal/model"
	"github.com/sakif/letterplay/internal/repository"
)

const (
	MaxTitleLength   = 200
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// GameService serves the catalog in its legacy Portuguese shape.
type GameService struct {
	games     repository.GameRepository
	watchlist repository.WatchlistRepository
	logger    *slog.Logger
}

func NewGameService(games repository.GameRepository, watchlist repository.WatchlistRepository, logger *slog.Logger) *GameService {
	return &GameService{
		games:     games,
		watchlist: watchlist,
		logger:    logger,
	}
}

// GetForUser returns the {jogo, status_jogo} envelope. For anonymous callers
// (userID 0) the status is null and is_favorite is false.
func (s *GameService) GetForUser(ctx context.Context, gameID, userID int64) (*model.CatalogEnvelope, error) {
	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	env := &model.CatalogEnvelope{Jogo: *game}
	if userID == 0 {
		return env, nil
	}

	entry, err := s.watchlist.GetEntry(ctx, userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("reading watchlist for game %d: %w", gameID, err)
	}
	if entry != nil {
		status := entry.Status
		env.StatusJogo = &status
		env.Jogo.IsFavorite = entry.Favorite
	}
	return env, nil
}

func (s *GameService) List(ctx context.Context, limit, offset int) ([]model.CatalogGame, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	games, err := s.games.ListGames(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return games, nil
}

// Create adds a game to the catalog.
func (s *GameService) Create(ctx context.Context, in repository.GameInput) (*model.CatalogGame, error) {
	in.Titulo = strings.TrimSpace(in.Titulo)
	if in.Titulo == "" {
		return nil, apperror.ValidationFailed("titulo", "titulo is required")
	}
	if len(in.Titulo) > MaxTitleLength {
		return nil, apperror.ValidationFailed("titulo",
			fmt.Sprintf("titulo must be %d characters or less", MaxTitleLength))
	}
	if in.NotaMetacritic != nil && (*in.NotaMetacritic < 0 || *in.NotaMetacritic > 100) {
		return nil, apperror.ValidationFailed("nota_metacritic", "nota_metacritic must be between 0 and 100")
	}

	game, err := s.games.CreateGame(ctx, in)
	if err != nil {
		s.logger.Error("failed to create game",
			slog.String("titulo", in.Titulo),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating game: %w", err)
	}

	s.logger.Info("game created", slog.Int64("gameID", game.ID), slog.String("titulo", game.Titulo))
	return game, nil
}
