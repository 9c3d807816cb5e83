// Package api is the HTTP/JSON boundary to the game server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultServer is the address the server listens on out of the box.
const DefaultServer = "http://localhost:8080"

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, body)
}

// Client talks to the game server.
type Client struct {
	base   *url.URL
	client *http.Client
	log    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}
	c := &Client{
		base: base,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// resolve joins a server path (absolute like "/agents/x" or relative like
// "games") onto the base URL.
func (c *Client) resolve(p string) (string, error) {
	ref, err := url.Parse(p)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", p, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// Do sends a request with an optional JSON body and returns the raw JSON
// response.
func (c *Client) Do(ctx context.Context, method, p string, body any) (json.RawMessage, error) {
	target, err := c.resolve(p)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, p, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, p, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, p, err)
	}

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", p),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Method: method, Path: p, Status: resp.StatusCode, Body: string(data)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s %s: response is not JSON: %q", method, p, truncate(string(data), 200))
	}
	return json.RawMessage(data), nil
}

func (c *Client) call(ctx context.Context, method, p string, body, out any) error {
	raw, err := c.Do(ctx, method, p, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, p, err)
	}
	return nil
}

// Games lists the open games.
func (c *Client) Games(ctx context.Context) ([]GameSnapshot, error) {
	var resp GamesResponse
	if err := c.call(ctx, http.MethodGet, "/games", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Games, nil
}

// CreateGame starts a new game.
func (c *Client) CreateGame(ctx context.Context) (*GameResponse, error) {
	var resp GameResponse
	if err := c.call(ctx, http.MethodPost, "/games", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Game fetches a game by id.
func (c *Client) Game(ctx context.Context, gameID string) (*GameResponse, error) {
	p, err := gamePath(gameID)
	if err != nil {
		return nil, err
	}
	var resp GameResponse
	if err := c.call(ctx, http.MethodGet, p, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// JoinGame seats a new agent of the given role in a game. The returned Href
// is the agent's reference-handle.
func (c *Client) JoinGame(ctx context.Context, gameID, role string) (*GameResponse, error) {
	if _, err := uuid.Parse(gameID); err != nil {
		return nil, fmt.Errorf("game id %q: %w", gameID, err)
	}
	var resp GameResponse
	if err := c.call(ctx, http.MethodPost, "/agents", agentRequest{Type: role, GameID: gameID}, &resp); err != nil {
		return nil, err
	}
	if resp.Href == "" {
		return nil, fmt.Errorf("join game %s: response has no agent href", gameID)
	}
	return &resp, nil
}

// Agent fetches the game as seen by the agent at href.
func (c *Client) Agent(ctx context.Context, href string) (*GameSnapshot, error) {
	var resp GameResponse
	if err := c.call(ctx, http.MethodGet, href, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Game, nil
}

// Play submits a Primary-oriented move for the agent at href.
func (c *Client) Play(ctx context.Context, href, move string) (*GameSnapshot, error) {
	var resp GameResponse
	if err := c.call(ctx, http.MethodPut, href, playRequest{Move: move}, &resp); err != nil {
		return nil, err
	}
	return &resp.Game, nil
}

// Plays lists the moves available in a game.
func (c *Client) Plays(ctx context.Context, gameID string) (*PlaysResponse, error) {
	p, err := gamePath(gameID)
	if err != nil {
		return nil, err
	}
	var resp PlaysResponse
	if err := c.call(ctx, http.MethodGet, path.Join(p, "plays"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func gamePath(gameID string) (string, error) {
	id, err := uuid.Parse(gameID)
	if err != nil {
		return "", fmt.Errorf("game id %q: %w", gameID, err)
	}
	return path.Join("/games", id.String()), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
