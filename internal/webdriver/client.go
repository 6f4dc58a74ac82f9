// Package webdriver is a minimal W3C WebDriver client: it creates and
// ends remote sessions against a Selenium endpoint. Anything beyond
// session negotiation is out of scope; callers drive the browser with
// whatever client they like once the endpoint is known ready.
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

// Capabilities is a W3C capability set. It must contain "browserName".
type Capabilities map[string]any

// BrowserName returns the browser family named by the capability set.
func (c Capabilities) BrowserName() string {
	name, _ := c["browserName"].(string)
	return name
}

// Client is a live WebDriver session handle.
type Client struct {
	httpClient *http.Client
	baseURL    string
	sessionID  string
}

// newSessionRequest is the W3C new-session payload.
type newSessionRequest struct {
	Capabilities struct {
		AlwaysMatch Capabilities `json:"alwaysMatch"`
	} `json:"capabilities"`
}

// wireResponse is the W3C response envelope.
type wireResponse struct {
	Value struct {
		SessionID string `json:"sessionId"`
		Error     string `json:"error"`
		Message   string `json:"message"`
	} `json:"value"`
}

// New negotiates a session against endpoint (e.g. "http://localhost:32768/wd/hub").
// Transport-level failures (refused, reset, timeout) are returned as
// *ConnError so callers can retry them; protocol failures are permanent.
func New(ctx context.Context, endpoint string, caps Capabilities) (*Client, error) {
	var req newSessionRequest
	req.Capabilities.AlwaysMatch = caps

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding capabilities: %w", err)
	}

	baseURL := strings.TrimRight(endpoint, "/")
	httpClient := &http.Client{Timeout: 10 * time.Second}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/session", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, &ConnError{Endpoint: baseURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnError{Endpoint: baseURL, Err: err}
	}

	var wire wireResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("decoding session response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || wire.Value.SessionID == "" {
		if wire.Value.Error != "" {
			return nil, fmt.Errorf("creating session: %s: %s", wire.Value.Error, wire.Value.Message)
		}
		return nil, fmt.Errorf("creating session: unexpected status %d", resp.StatusCode)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		sessionID:  wire.Value.SessionID,
	}, nil
}

// SessionID returns the remote session identity.
func (c *Client) SessionID() string {
	return c.sessionID
}

// URL returns the endpoint the session was created against.
func (c *Client) URL() string {
	return c.baseURL
}

// Quit ends the remote session.
func (c *Client) Quit(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/session/"+c.sessionID, nil)
	if err != nil {
		return fmt.Errorf("building quit request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnError{Endpoint: c.baseURL, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ending session: unexpected status %d", resp.StatusCode)
	}
	return nil
}
