// HTTP and WebSocket client for the canvas API.
package placeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Pixel is the wire-level state of one canvas cell as the server reports
// it. It mirrors the server's JSON shape so external importers can decode,
// construct, and compare cells without reaching into the server's packages.
type Pixel struct {
	ID       string `json:"id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Color    string `json:"color"`
	PlacedBy string `json:"placedBy"`
	PlacedAt int64  `json:"placedAt"`

	// User is the placer's profile, present on single-cell lookups.
	User *Placer `json:"user,omitempty"`
}

// Placer identifies the user whose placement is visible on a cell.
type Placer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// coordKey builds the canonical "{x}_{y}" cell key.
func coordKey(x, y int) string { return fmt.Sprintf("%d_%d", x, y) }

// APIError is a non-cooldown rejection decoded from the server's error
// envelope.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// CooldownError is a placement rejected because the user's cooldown has
// not elapsed. Retry no sooner than RetryAfter.
type CooldownError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *CooldownError) Error() string { return e.Message }

// errorEnvelope mirrors the server's JSON error body.
type errorEnvelope struct {
	RequestID    string `json:"request_id"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	RetryAfterMs int64  `json:"retry_after_ms"`
}

// Placement is the outgoing placement payload.
type Placement struct {
	ID       string `json:"id,omitempty"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Color    string `json:"color"`
	PlacedBy string `json:"placedBy,omitempty"`
	PlacedAt int64  `json:"placedAt,omitempty"`
}

// GridPage is the snapshot endpoint's response body.
type GridPage struct {
	Pixels []Pixel `json:"pixels"`
	Count  int            `json:"count"`
}

// CooldownStatus is the cooldown endpoint's response body.
type CooldownStatus struct {
	RemainingMs int64 `json:"remaining_ms"`
	Eligible    bool  `json:"eligible"`
}

// Frame is one message on the live stream.
type Frame struct {
	Type   string         `json:"type"`
	Pixels []Pixel `json:"pixels,omitempty"`
	Pixel  *Pixel  `json:"pixel,omitempty"`
}

// Client talks to one canvas server. The zero value is not usable; call
// New.
type Client struct {
	baseURL string
	http    *http.Client

	// SessionToken, when set, is sent as the session cookie on every
	// request and as a cookie header on the WebSocket handshake.
	SessionToken string
}

// New constructs a Client for baseURL (e.g. "http://localhost:8080/api/v1").
// httpClient may be nil, in which case a client with a 10s timeout is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.SessionToken != "" {
		req.AddCookie(&http.Cookie{Name: "place_session", Value: c.SessionToken})
	}
	return req, nil
}

// decodeError turns a non-2xx response into a typed error.
func decodeError(resp *http.Response) error {
	var env errorEnvelope
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env)
	if env.Code == "cooldown_active" {
		return &CooldownError{
			RetryAfter: time.Duration(env.RetryAfterMs) * time.Millisecond,
			Message:    env.Message,
		}
	}
	if env.Message == "" {
		env.Message = resp.Status
	}
	return &APIError{
		Status:    resp.StatusCode,
		Code:      env.Code,
		Message:   env.Message,
		RequestID: env.RequestID,
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Place submits one placement and returns the committed pixel. Cooldown
// rejections come back as *CooldownError, other rejections as *APIError.
func (c *Client) Place(ctx context.Context, p Placement) (*Pixel, error) {
	buf, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/pixels", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	var pixel Pixel
	if err := c.do(req, &pixel); err != nil {
		return nil, err
	}
	return &pixel, nil
}

// Grid fetches the full canvas snapshot.
func (c *Client) Grid(ctx context.Context) (*GridPage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/pixels", nil)
	if err != nil {
		return nil, err
	}
	var page GridPage
	if err := c.do(req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Pixel fetches one cell.
func (c *Client) Pixel(ctx context.Context, x, y int) (*Pixel, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/pixels/%d/%d", x, y), nil)
	if err != nil {
		return nil, err
	}
	var pixel Pixel
	if err := c.do(req, &pixel); err != nil {
		return nil, err
	}
	return &pixel, nil
}

// Cooldown fetches the caller's remaining placement wait.
func (c *Client) Cooldown(ctx context.Context) (*CooldownStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/cooldown", nil)
	if err != nil {
		return nil, err
	}
	var status CooldownStatus
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// PlaceOptimistic writes the speculative value into cache, submits the
// placement, and settles the overlay from the outcome. Any error (typed
// rejection, transport failure, context timeout) reverts the cell.
func (c *Client) PlaceOptimistic(ctx context.Context, cache *GridCache, p Placement) (*Pixel, error) {
	id := cache.Place(Pixel{
		ID:       p.ID,
		X:        p.X,
		Y:        p.Y,
		Color:    p.Color,
		PlacedBy: p.PlacedBy,
		PlacedAt: p.PlacedAt,
	})

	pixel, err := c.Place(ctx, p)
	if err != nil {
		cache.Reject(id)
		return nil, err
	}
	cache.Confirm(id, *pixel)
	return pixel, nil
}

// Subscribe dials the live stream and feeds cache until ctx is canceled
// or the connection drops. The initial snapshot frame resets the cache;
// each pixel frame is applied as an authoritative update. onFrame, when
// non-nil, observes every decoded frame after it is applied.
func (c *Client) Subscribe(ctx context.Context, cache *GridCache, onFrame func(Frame)) error {
	wsURL, err := c.websocketURL("/ws")
	if err != nil {
		return err
	}

	header := http.Header{}
	if c.SessionToken != "" {
		header.Set("Cookie", "place_session="+c.SessionToken)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return err
	}
	defer conn.Close()

	// Unblock the read loop when the context ends. The done channel lets
	// the watcher exit when the connection ends first, so a server-side
	// close does not strand it for the lifetime of the context.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		switch frame.Type {
		case "snapshot":
			cache.Reset(frame.Pixels)
		case "pixel":
			if frame.Pixel != nil {
				cache.ApplyUpdate(*frame.Pixel)
			}
		}
		if onFrame != nil {
			onFrame(frame)
		}
	}
}

// websocketURL rewrites the base URL's scheme for the WebSocket handshake.
func (c *Client) websocketURL(path string) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}
