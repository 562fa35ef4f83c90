package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/letterplay/internal/model"
	"github.com/sakif/letterplay/internal/repository"
)

var _ repository.WatchlistRepository = (*DB)(nil)

// GetEntry returns (nil, nil) when the user has no watchlist row for the game.
func (db *DB) GetEntry(ctx context.Context, userID, gameID int64) (*repository.WatchlistEntry, error) {
	var (
		e        repository.WatchlistEntry
		favorite int
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id_user, id_jogo, status, favorito FROM watchlist WHERE id_user = ? AND id_jogo = ?`,
		userID, gameID,
	).Scan(&e.UserID, &e.GameID, &e.Status, &favorite)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting watchlist entry user %d game %d: %w", userID, gameID, err)
	}
	e.Favorite = favorite != 0
	return &e, nil
}

// SetFavorite creates the watchlist row on first use and flips its favorite flag.
func (db *DB) SetFavorite(ctx context.Context, userID, gameID int64, favorite bool) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO watchlist (id_user, id_jogo, favorito, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id_user, id_jogo) DO UPDATE SET favorito = excluded.favorito, updated_at = excluded.updated_at`,
		userID, gameID, boolToInt(favorite), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting favorite user %d game %d: %w", userID, gameID, err)
	}
	return nil
}

// SetStatus creates the watchlist row on first use and updates its status.
func (db *DB) SetStatus(ctx context.Context, userID, gameID int64, status string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO watchlist (id_user, id_jogo, status, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id_user, id_jogo) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		userID, gameID, status, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting status user %d game %d: %w", userID, gameID, err)
	}
	return nil
}

// ListFavorites returns the user's favorite games, most recently favorited first.
func (db *DB) ListFavorites(ctx context.Context, userID int64) ([]model.CatalogGame, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+gameColumns+gameJoins+`
		 JOIN watchlist w ON w.id_jogo = j.id_jogo
		 WHERE w.id_user = ? AND w.favorito = 1
		 ORDER BY w.updated_at DESC, j.id_jogo`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites for user %d: %w", userID, err)
	}
	games, err := collectGames(rows)
	if err != nil {
		return nil, err
	}

	for i := range games {
		games[i].IsFavorite = true
		if err := db.loadGameDetails(ctx, &games[i]); err != nil {
			return nil, err
		}
	}
	return games, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
