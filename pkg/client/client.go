// Package client is a Go client for the ProjectShelf API. It keeps the session
// tokens, attaches them to every call, and on a 401 refreshes the pair once
// and replays the request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout = 10 * time.Second

	loginPath   = "/auth/login"
	refreshPath = "/auth/refresh"
	logoutPath  = "/auth/logout"
)

// ErrSessionExpired is returned when the refresh token was rejected and the
// caller has to log in again.
var ErrSessionExpired = errors.New("session expired, login required")

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its cookie jar, if any, is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenStore sets where session tokens are kept.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) {
		if store != nil {
			c.tokens = store
		}
	}
}

// WithLoginRequired registers a hook run once per failed refresh.
func WithLoginRequired(fn func()) Option {
	return func(c *Client) {
		c.onLoginRequired = fn
	}
}

// WithTimeout overrides the default 10s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// Client talks to the API on behalf of one session.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	tokens          TokenStore
	onLoginRequired func()
	refreshes       singleflight.Group
}

// New builds a Client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	c := &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Jar:     jar,
		},
		tokens: NewMemoryTokenStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TokenStore exposes the store backing this client.
func (c *Client) TokenStore() TokenStore {
	return c.tokens
}

// Do sends a JSON request and decodes the response into out when out is not nil.
// A 401 triggers at most one refresh followed by a single replay.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	resp, sentAccess, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized && refreshable(path) {
		drain(resp)
		if err := c.refresh(ctx, sentAccess); err != nil {
			return err
		}
		resp, _, err = c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, string, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, "", fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	var access string
	if tokens, ok := c.tokens.Tokens(); ok && tokens.AccessToken != "" {
		access = tokens.AccessToken
		req.Header.Set("Authorization", "Bearer "+access)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	return resp, access, nil
}

// refresh rotates the token pair. Concurrent callers share one refresh call,
// and a caller whose token was already rotated by someone else skips it.
func (c *Client) refresh(ctx context.Context, staleAccess string) error {
	_, err, _ := c.refreshes.Do("refresh", func() (any, error) {
		if current, ok := c.tokens.Tokens(); ok && current.AccessToken != "" && current.AccessToken != staleAccess {
			return nil, nil
		}
		if err := c.rotate(ctx); err != nil {
			c.tokens.Clear()
			if c.onLoginRequired != nil {
				c.onLoginRequired()
			}
			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
		return nil, nil
	})
	return err
}

func (c *Client) rotate(ctx context.Context) error {
	var body any
	if tokens, ok := c.tokens.Tokens(); ok && tokens.RefreshToken != "" {
		body = map[string]string{"refreshToken": tokens.RefreshToken}
	}
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}
	resp, _, err := c.send(ctx, http.MethodPost, refreshPath, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var tokens Tokens
	if err := decodeResponse(resp, &tokens); err != nil {
		return err
	}
	if tokens.AccessToken == "" {
		return errors.New("refresh response carried no access token")
	}
	c.tokens.SetTokens(tokens)
	return nil
}

// Login authenticates and stores the issued pair.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.Do(ctx, http.MethodPost, loginPath, map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return LoginResult{}, err
	}
	c.tokens.SetTokens(Tokens{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken})
	return out, nil
}

// Signup creates an account. It does not log in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (User, error) {
	var out User
	if err := c.Do(ctx, http.MethodPost, "/users", req, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// Logout clears the server cookies and the local store.
func (c *Client) Logout(ctx context.Context) error {
	defer c.tokens.Clear()
	return c.Do(ctx, http.MethodPost, logoutPath, nil, nil)
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

func (c *Client) ListPortfolios(ctx context.Context) ([]Portfolio, error) {
	var out []Portfolio
	if err := c.Do(ctx, http.MethodGet, "/portfolios", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPortfolio(ctx context.Context, id string) (Portfolio, error) {
	var out Portfolio
	if err := c.Do(ctx, http.MethodGet, portfolioPath(id), nil, &out); err != nil {
		return Portfolio{}, err
	}
	return out, nil
}

func (c *Client) CreatePortfolio(ctx context.Context, in PortfolioInput) (Portfolio, error) {
	var out Portfolio
	if err := c.Do(ctx, http.MethodPost, "/portfolios", in, &out); err != nil {
		return Portfolio{}, err
	}
	return out, nil
}

func (c *Client) UpdatePortfolio(ctx context.Context, id string, patch PortfolioPatch) (Portfolio, error) {
	var out Portfolio
	if err := c.Do(ctx, http.MethodPatch, portfolioPath(id), patch, &out); err != nil {
		return Portfolio{}, err
	}
	return out, nil
}

func (c *Client) DeletePortfolio(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, portfolioPath(id), nil, nil)
}

func portfolioPath(id string) string {
	return "/portfolios/" + url.PathEscape(id)
}

// refreshable excludes the calls whose 401 means bad credentials rather than an expired session.
func refreshable(path string) bool {
	return path != loginPath && path != refreshPath
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return payload, nil
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
