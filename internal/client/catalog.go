package client

import (
	"context"
	"fmt"
	"net/http"
)

// CatalogClient reads games from an external IGDB-style catalog that serves
// GET {base}/games/{id}. It sends no credentials.
type CatalogClient struct {
	api *Client
}

func NewCatalogClient(baseURL string, httpClient *http.Client) *CatalogClient {
	return &CatalogClient{api: New(baseURL, httpClient)}
}

// GetGame returns the upstream document untouched.
func (c *CatalogClient) GetGame(ctx context.Context, gameID int64) ([]byte, error) {
	return c.api.doRaw(ctx, http.MethodGet, fmt.Sprintf("/games/%d", gameID), nil)
}
