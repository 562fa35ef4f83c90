package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/sakif/letterplay/internal/model"
)

// ---- reviews ----

type reviewRequest struct {
	Nota       int    `json:"nota"`
	Comentario string `json:"comentario"`
}

// AddReview posts the caller's review. Posting twice overwrites the first one.
func (c *Client) AddReview(ctx context.Context, gameID int64, nota int, comentario string) (*model.Review, error) {
	var review model.Review
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/games/%d/reviews", gameID),
		reviewRequest{Nota: nota, Comentario: comentario}, &review)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *Client) ListReviews(ctx context.Context, gameID int64) (*model.ReviewList, error) {
	var list model.ReviewList
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/games/%d/reviews", gameID), nil, &list); err != nil {
		return nil, err
	}
	if list.Items == nil {
		list.Items = []model.Review{}
	}
	return &list, nil
}

func (c *Client) DeleteReview(ctx context.Context, gameID, reviewID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/games/%d/reviews/%d", gameID, reviewID), nil, nil)
}

// ---- favorites ----

// AddFavorite fails with a 409 *APIError when the game already is a favorite.
func (c *Client) AddFavorite(ctx context.Context, gameID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/games/%d/favorite", gameID), nil, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, gameID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/games/%d/favorite", gameID), nil, nil)
}

// ---- users and games ----

// ListUsers accepts either a bare JSON array or an {"items": [...]} envelope.
func (c *Client) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/api/users", nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, errUsersFormat
	}

	list := gjson.ParseBytes(raw)
	if list.IsObject() {
		list = list.Get("items")
	}
	users := []model.UserSummary{}
	switch {
	case list.IsArray():
		if err := json.Unmarshal([]byte(list.Raw), &users); err != nil {
			return nil, fmt.Errorf("client: decoding users: %w", err)
		}
	case list.Exists():
		return nil, errUsersFormat
	}
	return users, nil
}

var errUsersFormat = errors.New("client: users response has an unknown format")

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context) (*model.UserSummary, error) {
	var user model.UserSummary
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListGames returns the raw JSON array of catalog games.
func (c *Client) ListGames(ctx context.Context, limit, offset int) ([]byte, error) {
	return c.doRaw(ctx, http.MethodGet, fmt.Sprintf("/api/games?limit=%d&offset=%d", limit, offset), nil)
}

// GetGame returns the raw {jogo, status_jogo} document. It is left undecoded
// so the catalog adapter sees every field the backend sent.
func (c *Client) GetGame(ctx context.Context, gameID int64) ([]byte, error) {
	return c.doRaw(ctx, http.MethodGet, fmt.Sprintf("/api/games/%d", gameID), nil)
}
