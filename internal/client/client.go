// Package client calls the LetterPlay REST API on behalf of the game page.
//
// The page never reads the database directly. It goes through this client,
// forwarding the visitor's session token, so the API can run in the same
// process or on another host.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Code    string // "not_found", "conflict", ...
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// *APIError (for example a network failure).
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks to one API base URL. The zero token means anonymous.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns an anonymous client. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// WithToken returns a copy that sends "Authorization: Bearer <token>".
// The receiver is not modified, so one Client can serve concurrent requests
// for different users.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// do sends one request. body is JSON-encoded when non-nil; out is decoded
// from the response when non-nil and the response has a body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decoding %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encoding %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("client: building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: reading %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, raw)
	}
	return raw, nil
}

// decodeError understands this API's {"error","message"} body and the
// {"detail": ...} body of the older backend.
func decodeError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status}
	if !gjson.ValidBytes(raw) {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}
	doc := gjson.ParseBytes(raw)
	apiErr.Code = doc.Get("error").String()
	apiErr.Message = doc.Get("message").String()
	if apiErr.Message == "" {
		apiErr.Message = doc.Get("detail").String()
	}
	return apiErr
}
