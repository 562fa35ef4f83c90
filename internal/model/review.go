package model

import "time"

// Review is a user's star review of a game. A user has at most one review per
// game; posting again overwrites it.
type Review struct {
	ID         int64     `json:"id_avaliacao"`
	Nota       int       `json:"nota"` // 1–5
	Comentario string    `json:"comentario"`
	GameID     int64     `json:"id_jogo"`
	UserID     int64     `json:"id_user"`
	Username   string    `json:"username,omitempty"`
	GameTitle  string    `json:"titulo,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReviewList is the payload of GET /api/games/{id}/reviews.
type ReviewList struct {
	Items     []Review `json:"items"`
	MediaNota float64  `json:"media_nota"`
}
