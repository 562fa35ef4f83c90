package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/letterplay/internal/apperror"
	"github.com/sakif/letterplay/internal/model"
)

func newTestWatchlistService() (*WatchlistService, *fakeWatchlistRepo, *fakeGameRepo) {
	watchlist := newFakeWatchlistRepo()
	games := newFakeGameRepo()
	return NewWatchlistService(watchlist, games, discardLogger()), watchlist, games
}

func TestFavorite_AddRemoveRoundTrip(t *testing.T) {
	svc, watchlist, games := newTestWatchlistService()
	gameID := games.add("Zelda")
	ctx := context.Background()

	if err := svc.AddFavorite(ctx, 1, gameID); err != nil {
		t.Fatalf("AddFavorite() error = %v", err)
	}
	favorites, _ := svc.ListFavorites(ctx, 1)
	if len(favorites) != 1 || favorites[0].ID != gameID {
		t.Fatalf("ListFavorites() = %+v, want the game", favorites)
	}

	if err := svc.RemoveFavorite(ctx, 1, gameID); err != nil {
		t.Fatalf("RemoveFavorite() error = %v", err)
	}
	entry, _ := watchlist.GetEntry(ctx, 1, gameID)
	if entry == nil || entry.Favorite {
		t.Errorf("entry after remove = %+v, want a non-favorite row", entry)
	}
}

func TestAddFavorite_TwiceIsConflict(t *testing.T) {
	svc, _, games := newTestWatchlistService()
	gameID := games.add("Zelda")

	if err := svc.AddFavorite(context.Background(), 1, gameID); err != nil {
		t.Fatalf("setup: %v", err)
	}
	err := svc.AddFavorite(context.Background(), 1, gameID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("AddFavorite() error = %v, want ErrConflict", err)
	}
}

func TestAddFavorite_UnknownGame(t *testing.T) {
	svc, _, _ := newTestWatchlistService()

	err := svc.AddFavorite(context.Background(), 1, 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddFavorite() error = %v, want ErrNotFound", err)
	}
}

func TestRemoveFavorite_NotAFavorite(t *testing.T) {
	svc, _, games := newTestWatchlistService()
	gameID := games.add("Zelda")
	svc.SetStatus(context.Background(), 1, gameID, model.StatusPlaying)

	err := svc.RemoveFavorite(context.Background(), 1, gameID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("RemoveFavorite() error = %v, want ErrNotFound", err)
	}
}

func TestAddFavorite_RepositoryError(t *testing.T) {
	svc, watchlist, games := newTestWatchlistService()
	gameID := games.add("Zelda")
	watchlist.setErr = errors.New("locked")

	err := svc.AddFavorite(context.Background(), 1, gameID)
	if err == nil || errors.Is(err, apperror.ErrConflict) {
		t.Errorf("AddFavorite() error = %v, want the repository error", err)
	}
}

func TestSetStatus(t *testing.T) {
	tests := []struct {
		status  string
		wantErr bool
	}{
		{model.StatusPlayed, false},
		{model.StatusPlaying, false},
		{model.StatusNotPlayed, false},
		{model.StatusAbandoned, false},
		{"ZERADO", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			svc, watchlist, games := newTestWatchlistService()
			gameID := games.add("Zelda")

			err := svc.SetStatus(context.Background(), 1, gameID, tt.status)

			if tt.wantErr {
				if !errors.Is(err, apperror.ErrValidation) {
					t.Errorf("SetStatus() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetStatus() error = %v", err)
			}
			entry, _ := watchlist.GetEntry(context.Background(), 1, gameID)
			if entry.Status != tt.status {
				t.Errorf("Status = %q, want %q", entry.Status, tt.status)
			}
		})
	}
}
