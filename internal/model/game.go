// Package model defines the data structures used throughout the application.
package model

// Game is the canonical game view-model produced by the catalog adapter.
//
// The JSON tags are the canonical wire names. The page cache stores this exact
// shape, and feeding it back through the adapter yields the same value.
type Game struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Summary     string   `json:"summary"`
	Rating      int      `json:"rating"`     // 0–100
	Metacritic  *int     `json:"metacritic"` // nil when unknown
	CoverURL    string   `json:"cover_url"`
	Screenshots []string `json:"screenshots"`
	Genres      []string `json:"genres"`
	Developer   string   `json:"developer"`
	Publisher   string   `json:"publisher"`
	UserStatus  *string  `json:"user_status"`
	IsFavorite  bool     `json:"is_favorite"`
	ReleaseDate string   `json:"release_date"`
}

// Watchlist statuses as stored by the backend.
const (
	StatusPlayed     = "JOGADO"
	StatusPlaying    = "JOGANDO"
	StatusNotPlayed  = "AINDA NAO JOGADO"
	StatusAbandoned  = "ABANDONADO"
	DefaultGameState = StatusNotPlayed
)

// Company is a developer or publisher in the legacy catalog schema.
type Company struct {
	ID   int64  `json:"id_empresa"`
	Nome string `json:"nome"`
}

// Genre is a genre row in the legacy catalog schema.
type Genre struct {
	ID         int64  `json:"id_genero"`
	NomeGenero string `json:"nome_genero"`
}

// CatalogGame is a game as stored by the backend, using the legacy
// Portuguese-named schema that the adapter understands.
type CatalogGame struct {
	ID             int64    `json:"id_jogo"`
	Titulo         string   `json:"titulo"`
	Descricao      string   `json:"descricao"`
	CapaURL        string   `json:"capa_url"`
	NotaMetacritic *int     `json:"nota_metacritic"`
	DataLancamento string   `json:"data_lancamento"`
	Screenshots    []string `json:"screenshots"`
	Generos        []Genre  `json:"generos"`
	Desenvolvedora *Company `json:"desenvolvedora"`
	Publicadora    *Company `json:"publicadora"`
	IsFavorite     bool     `json:"is_favorite"`
}

// CatalogEnvelope is the payload of GET /api/games/{id}: the game plus the
// caller's watchlist status. StatusJogo is nil for anonymous callers.
type CatalogEnvelope struct {
	Jogo       CatalogGame `json:"jogo"`
	StatusJogo *string     `json:"status_jogo"`
}

// RankedGame is one row of the review ranking.
type RankedGame struct {
	ID             int64    `json:"id_jogo"`
	Titulo         string   `json:"titulo"`
	CapaURL        string   `json:"capa_url"`
	Generos        []Genre  `json:"generos"`
	Media          float64  `json:"media"`
	TotalReviews   int      `json:"total_reviews"`
	Descricao      string   `json:"descricao"`
	Desenvolvedora *Company `json:"desenvolvedora"`
	Publicadora    *Company `json:"publicadora"`
}
