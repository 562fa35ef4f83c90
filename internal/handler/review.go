package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/letterplay/internal/service"
)

// ReviewHandler exposes star reviews over JSON.
type ReviewHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

func NewReviewHandler(reviews *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

type reviewRequest struct {
	Nota       int    `json:"nota"`
	Comentario string `json:"comentario"`
}

// HandleCreate stores the caller's review of a game, replacing an earlier one.
//
// HTTP: POST /api/games/{id}/reviews
// REQUEST BODY: {"nota": 4, "comentario": "..."}
// Auth: Required
func (h *ReviewHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	gameID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	review, err := h.reviews.Create(r.Context(), userID, gameID, req.Nota, req.Comentario)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// HandleListByGame returns {items, media_nota}.
//
// HTTP: GET /api/games/{id}/reviews
func (h *ReviewHandler) HandleListByGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.reviews.ListByGame(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleDelete removes one of the caller's reviews.
//
// HTTP: DELETE /api/games/{id}/reviews/{reviewID}
// Auth: Required
func (h *ReviewHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	reviewID, err := pathID(r, "reviewID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.reviews.Delete(r.Context(), userID, reviewID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMine returns the caller's reviews with game titles.
//
// HTTP: GET /api/me/reviews
// Auth: Required
func (h *ReviewHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	reviews, err := h.reviews.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// HandleRanking returns the best rated games.
//
// HTTP: GET /api/reviews/ranking
func (h *ReviewHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.reviews.Ranking(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}
