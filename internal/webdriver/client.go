// Package webdriver is a small client for the W3C WebDriver protocol. It
// covers what page timing needs: creating and deleting sessions, setting
// timeouts, navigating and executing scripts.
package webdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxResponseBytes = 16 << 20

// Capabilities are the alwaysMatch capabilities sent on session creation.
type Capabilities map[string]any

// Client talks to one WebDriver endpoint (geckodriver, chromedriver, a
// Selenium grid).
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the endpoint at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session is a live browser session.
type Session struct {
	ID           string
	Capabilities map[string]any

	client *Client
}

// NewSession starts a browser with the given capabilities.
func (c *Client) NewSession(ctx context.Context, caps Capabilities) (*Session, error) {
	body := map[string]any{
		"capabilities": map[string]any{"alwaysMatch": caps},
	}

	var resp struct {
		SessionID    string         `json:"sessionId"`
		Capabilities map[string]any `json:"capabilities"`
	}
	if err := c.do(ctx, http.MethodPost, "/session", body, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, fmt.Errorf("webdriver: new session response has no sessionId")
	}

	return &Session{ID: resp.SessionID, Capabilities: resp.Capabilities, client: c}, nil
}

// BrowserName returns the browserName capability the driver reported.
func (s *Session) BrowserName() string {
	name, _ := s.Capabilities["browserName"].(string)
	return name
}

// BrowserVersion returns the browserVersion capability the driver reported.
func (s *Session) BrowserVersion() string {
	if v, ok := s.Capabilities["browserVersion"].(string); ok {
		return v
	}
	// Drivers speaking the legacy protocol report "version".
	v, _ := s.Capabilities["version"].(string)
	return v
}

// Timeouts are the session timeouts. Zero values are left unchanged.
type Timeouts struct {
	Script   time.Duration
	PageLoad time.Duration
	Implicit time.Duration
}

// SetTimeouts configures the session timeouts.
func (s *Session) SetTimeouts(ctx context.Context, t Timeouts) error {
	body := map[string]int64{}
	if t.Script > 0 {
		body["script"] = t.Script.Milliseconds()
	}
	if t.PageLoad > 0 {
		body["pageLoad"] = t.PageLoad.Milliseconds()
	}
	if t.Implicit > 0 {
		body["implicit"] = t.Implicit.Milliseconds()
	}
	return s.client.do(ctx, http.MethodPost, s.path("/timeouts"), body, nil)
}

// Navigate loads url and waits as the session's page load strategy dictates.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.client.do(ctx, http.MethodPost, s.path("/url"), map[string]string{"url": url}, nil)
}

// ExecuteScript runs a synchronous script and decodes its return value into
// out. out may be nil.
func (s *Session) ExecuteScript(ctx context.Context, script string, args []any, out any) error {
	if args == nil {
		args = []any{}
	}
	body := map[string]any{"script": script, "args": args}
	return s.client.do(ctx, http.MethodPost, s.path("/execute/sync"), body, out)
}

// Delete ends the session and closes the browser.
func (s *Session) Delete(ctx context.Context) error {
	return s.client.do(ctx, http.MethodDelete, s.path(""), nil, nil)
}

func (s *Session) path(suffix string) string {
	return "/session/" + s.ID + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("webdriver: encoding %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("webdriver: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webdriver: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("webdriver: reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	var envelope struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("webdriver: decoding %s %s response: %w", method, path, err)
	}
	if len(envelope.Value) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Value, out); err != nil {
		return fmt.Errorf("webdriver: decoding %s %s value: %w", method, path, err)
	}
	return nil
}
