package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/asaskevich/govalidator"

	"github.com/sakif/letterplay/internal/apperror"
	"github.com/sakif/letterplay/internal/model"
	"github.com/sakif/letterplay/internal/repository"
)

// WatchlistService manages favorites and play status. Both live on the same
// watchlist row, created on first use.
type WatchlistService struct {
	watchlist repository.WatchlistRepository
	games     repository.GameRepository
	logger    *slog.Logger
}

func NewWatchlistService(watchlist repository.WatchlistRepository, games repository.GameRepository, logger *slog.Logger) *WatchlistService {
	return &WatchlistService{
		watchlist: watchlist,
		games:     games,
		logger:    logger,
	}
}

// AddFavorite marks the game as a favorite. Adding a game that already is one
// is a Conflict; the game page turns that into its "already added" alert.
func (s *WatchlistService) AddFavorite(ctx context.Context, userID, gameID int64) error {
	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return err
	}

	entry, err := s.watchlist.GetEntry(ctx, userID, gameID)
	if err != nil {
		return fmt.Errorf("reading watchlist: %w", err)
	}
	if entry != nil && entry.Favorite {
		return apperror.Conflict("favorite", strconv.FormatInt(gameID, 10))
	}

	if err := s.watchlist.SetFavorite(ctx, userID, gameID, true); err != nil {
		return fmt.Errorf("adding favorite: %w", err)
	}
	s.logger.Info("favorite added", slog.Int64("gameID", gameID), slog.Int64("userID", userID))
	return nil
}

// RemoveFavorite is NotFound when the game is not a favorite.
func (s *WatchlistService) RemoveFavorite(ctx context.Context, userID, gameID int64) error {
	entry, err := s.watchlist.GetEntry(ctx, userID, gameID)
	if err != nil {
		return fmt.Errorf("reading watchlist: %w", err)
	}
	if entry == nil || !entry.Favorite {
		return apperror.NotFound("favorite", strconv.FormatInt(gameID, 10))
	}

	if err := s.watchlist.SetFavorite(ctx, userID, gameID, false); err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	s.logger.Info("favorite removed", slog.Int64("gameID", gameID), slog.Int64("userID", userID))
	return nil
}

func (s *WatchlistService) SetStatus(ctx context.Context, userID, gameID int64, status string) error {
	if !govalidator.IsIn(status, model.StatusPlayed, model.StatusPlaying, model.StatusNotPlayed, model.StatusAbandoned) {
		return apperror.ValidationFailed("status", fmt.Sprintf("unknown status %q", status))
	}
	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return err
	}

	if err := s.watchlist.SetStatus(ctx, userID, gameID, status); err != nil {
		return fmt.Errorf("setting status: %w", err)
	}
	s.logger.Info("status updated",
		slog.Int64("gameID", gameID),
		slog.Int64("userID", userID),
		slog.String("status", status),
	)
	return nil
}

func (s *WatchlistService) ListFavorites(ctx context.Context, userID int64) ([]model.CatalogGame, error) {
	games, err := s.watchlist.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	return games, nil
}
