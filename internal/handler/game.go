package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/letterplay/internal/auth"
	"github.com/sakif/letterplay/internal/repository"
	"github.com/sakif/letterplay/internal/service"
)

// GameHandler serves the catalog.
type GameHandler struct {
	games  *service.GameService
	logger *slog.Logger
}

func NewGameHandler(games *service.GameService, logger *slog.Logger) *GameHandler {
	return &GameHandler{games: games, logger: logger}
}

// HandleGet returns {jogo, status_jogo}. Anonymous callers get a null status.
//
// HTTP: GET /api/games/{id}
// Auth: Optional
func (h *GameHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	env, err := h.games.GetForUser(r.Context(), gameID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// HandleList returns one page of games ordered by title.
//
// HTTP: GET /api/games?limit=20&offset=0
func (h *GameHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	games, err := h.games.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

type createGameRequest struct {
	Titulo         string   `json:"titulo"`
	Descricao      string   `json:"descricao"`
	CapaURL        string   `json:"capa_url"`
	NotaMetacritic *int     `json:"nota_metacritic"`
	DataLancamento string   `json:"data_lancamento"`
	Screenshots    []string `json:"screenshots"`
	Generos        []string `json:"generos"`
	Desenvolvedora string   `json:"desenvolvedora"`
	Publicadora    string   `json:"publicadora"`
}

// HandleCreate adds a game. Companies and genres are matched by name.
//
// HTTP: POST /api/games
// Auth: Required
func (h *GameHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req createGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	game, err := h.games.Create(r.Context(), repository.GameInput{
		Titulo:         req.Titulo,
		Descricao:      req.Descricao,
		CapaURL:        req.CapaURL,
		NotaMetacritic: req.NotaMetacritic,
		DataLancamento: req.DataLancamento,
		Screenshots:    req.Screenshots,
		Generos:        req.Generos,
		Desenvolvedora: req.Desenvolvedora,
		Publicadora:    req.Publicadora,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}
