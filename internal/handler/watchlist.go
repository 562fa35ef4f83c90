package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/letterplay/internal/service"
)

// WatchlistHandler manages favorites and play statuses. Every route requires
// a session.
type WatchlistHandler struct {
	watchlist *service.WatchlistService
	logger    *slog.Logger
}

func NewWatchlistHandler(watchlist *service.WatchlistService, logger *slog.Logger) *WatchlistHandler {
	return &WatchlistHandler{watchlist: watchlist, logger: logger}
}

// HandleAddFavorite answers 409 when the game already is a favorite.
//
// HTTP: POST /api/games/{id}/favorite
func (h *WatchlistHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	gameID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.watchlist.AddFavorite(r.Context(), userID, gameID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HTTP: DELETE /api/games/{id}/favorite
func (h *WatchlistHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	gameID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.watchlist.RemoveFavorite(r.Context(), userID, gameID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleSetStatus sets JOGADO, JOGANDO, AINDA NAO JOGADO or ABANDONADO.
//
// HTTP: PUT /api/games/{id}/status
func (h *WatchlistHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	gameID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.watchlist.SetStatus(r.Context(), userID, gameID, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// HTTP: GET /api/me/favorites
func (h *WatchlistHandler) HandleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	games, err := h.watchlist.ListFavorites(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}
