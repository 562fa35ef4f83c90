package gamepage

import (
	"encoding/json"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sakif/letterplay/internal/catalog"
	"github.com/sakif/letterplay/internal/model"
)

// Cache keeps the last good copy of each game page so a reload still renders
// when the upstream is down. Entries are stored serialized, the same way the
// browser kept them, and are re-read through the catalog adapter.
type Cache struct {
	entries *lru.Cache[int64, []byte]
	logger  *slog.Logger
}

func NewCache(size int, logger *slog.Logger) (*Cache, error) {
	entries, err := lru.New[int64, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("creating page cache: %w", err)
	}
	return &Cache{entries: entries, logger: logger}, nil
}

// Put stores the canonical form of game.
func (c *Cache) Put(game *model.Game) {
	if game == nil || game.ID == 0 {
		return
	}
	raw, err := json.Marshal(game)
	if err != nil {
		c.logger.Warn("failed to cache game", slog.Int64("id", game.ID), slog.String("error", err.Error()))
		return
	}
	c.entries.Add(game.ID, raw)
}

// Get returns the cached game. A malformed entry is dropped and reported as
// a miss.
func (c *Cache) Get(id int64) (*model.Game, bool) {
	raw, ok := c.entries.Get(id)
	if !ok {
		return nil, false
	}
	game, err := catalog.Normalize(raw)
	if err != nil {
		c.entries.Remove(id)
		return nil, false
	}
	return game, true
}

// SetFavorite rewrites the favorite flag of a cached game, if present.
func (c *Cache) SetFavorite(id int64, favorite bool) {
	game, ok := c.Get(id)
	if !ok {
		return
	}
	game.IsFavorite = favorite
	c.Put(game)
}

func (c *Cache) Len() int {
	return c.entries.Len()
}
