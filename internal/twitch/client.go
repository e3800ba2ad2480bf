// Package twitch wraps the Helix and OAuth endpoints the daemon needs:
// app-token acquisition, broadcaster resolution, redemption refunds, and
// EventSub subscription management.
package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dyluth/warden/internal/retry"
)

const (
	// DefaultHelixURL is the Helix API base.
	DefaultHelixURL = "https://api.twitch.tv/helix"

	// DefaultAuthURL is the OAuth token endpoint base.
	DefaultAuthURL = "https://id.twitch.tv"

	// tokenExpirySlack refreshes the app token this long before Twitch
	// says it expires.
	tokenExpirySlack = 5 * time.Minute
)

// Client is a minimal Helix client authenticated with an app access token
// obtained via the client-credentials grant. Safe for concurrent use.
type Client struct {
	httpClient   *http.Client
	helixURL     string
	authURL      string
	clientID     string
	clientSecret string
	policy       retry.Policy

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHelixURL overrides the Helix base URL (tests).
func WithHelixURL(u string) Option {
	return func(c *Client) { c.helixURL = u }
}

// WithAuthURL overrides the OAuth base URL (tests).
func WithAuthURL(u string) Option {
	return func(c *Client) { c.authURL = u }
}

// WithPolicy overrides the retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// NewClient creates a Client for the given application credentials.
func NewClient(httpClient *http.Client, clientID, clientSecret string, opts ...Option) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("client id and secret are required")
	}

	c := &Client{
		httpClient:   httpClient,
		helixURL:     DefaultHelixURL,
		authURL:      DefaultAuthURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		policy:       retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// appToken returns a valid app access token, fetching a fresh one when the
// cached token is missing or near expiry.
func (c *Client) appToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token request returned status %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}

	c.token = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - tokenExpirySlack)
	return c.token, nil
}

// invalidateToken drops the cached token so the next call fetches a fresh one.
func (c *Client) invalidateToken() {
	c.tokenMu.Lock()
	c.token = ""
	c.tokenMu.Unlock()
}

// newHelixRequest builds an authenticated Helix request.
func (c *Client) newHelixRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	token, err := c.appToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.helixURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build helix request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Client-Id", c.clientID)
	return req, nil
}

// ResolveBroadcaster looks up the broadcaster id for a channel login.
// A channel that does not exist is a hard error; the daemon cannot start
// without it.
func (c *Client) ResolveBroadcaster(ctx context.Context, login string) (string, error) {
	req, err := c.newHelixRequest(ctx, http.MethodGet, "/users?login="+url.QueryEscape(login), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("user lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user lookup returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data []struct {
			ID    string `json:"id"`
			Login string `json:"login"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode user lookup response: %w", err)
	}
	if len(payload.Data) == 0 {
		return "", fmt.Errorf("channel %q not found", login)
	}
	return payload.Data[0].ID, nil
}
