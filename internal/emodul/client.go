package emodul

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the production eMODUL API endpoint.
const DefaultBaseURL = "https://emodul.eu/api/v1/"

// DefaultTimeout is applied per request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// maxErrorBodySize limits how much of a failed response body is captured
// into the error message.
const maxErrorBodySize = 4 << 10 // 4KB

// Logger is the minimal logging interface the client needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds client construction options.
type Config struct {
	// BaseURL of the eMODUL API. Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout applied to each individual request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient to use for requests. Defaults to a plain http.Client;
	// the per-request timeout is enforced via context regardless.
	HTTPClient *http.Client
}

// Client is the eMODUL API client and per-module state cache.
//
// A Client starts unauthenticated; Authenticate establishes the session,
// or NewWithSession restores a previously stored one. All other operations
// fail with AuthError until a session exists.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - RefreshModule calls serialise against each other (client-wide guard);
//     GetModuleZones/GetModuleTiles do not, and may interleave. Merges are
//     idempotent per id, so interleaving cannot corrupt the cache.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client

	// sessionMu guards the authentication state.
	sessionMu     sync.RWMutex
	userID        string
	token         string
	authenticated bool

	// refreshMu serialises whole-module refreshes across all modules, so
	// two near-simultaneous poll triggers never issue duplicate fetches.
	refreshMu sync.Mutex

	// cacheMu guards modules and every moduleState reachable from it.
	cacheMu sync.Mutex
	modules map[string]*moduleState

	logger   Logger
	loggerMu sync.RWMutex
}

// New creates an unauthenticated client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/",
		timeout:    timeout,
		httpClient: httpClient,
		modules:    make(map[string]*moduleState),
	}
}

// NewWithSession creates a client with a previously established session.
// No validation happens here; an expired token surfaces as AuthError on
// the first request that uses it.
func NewWithSession(cfg Config, userID, token string) *Client {
	c := New(cfg)
	c.userID = userID
	c.token = token
	c.authenticated = true
	return c
}

// SetLogger sets an optional logger for request tracing.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

func (c *Client) debugf(msg string, args ...any) {
	if l := c.getLogger(); l != nil {
		l.Debug(msg, args...)
	}
}

// IsAuthenticated reports whether the client holds a session token.
func (c *Client) IsAuthenticated() bool {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.authenticated && c.token != ""
}

// UserID returns the authenticated user id, or the empty string when
// unauthenticated.
func (c *Client) UserID() string {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.userID
}

// Token returns the current bearer token, or the empty string when
// unauthenticated. Exposed so callers can persist the session.
func (c *Client) Token() string {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.token
}

// Authenticate logs in with the given credentials.
//
// On success the session is stored and all subsequent requests carry the
// bearer token. On failure the session stays unauthenticated and an
// AuthError is returned. This is the only path that establishes
// credentials; there is no implicit retry.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	c.debugf("authenticating", "username", username)

	var resp authResponse
	err := c.do(ctx, http.MethodPost, "authentication", authRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return &AuthError{Status: StatusUnauthorized, Message: fmt.Sprintf("authentication failed: %v", err)}
	}

	if !resp.Authenticated {
		return &AuthError{Status: StatusUnauthorized, Message: "authentication rejected"}
	}

	c.sessionMu.Lock()
	c.userID = strconv.FormatInt(resp.UserID, 10)
	c.token = resp.Token
	c.authenticated = true
	c.sessionMu.Unlock()

	c.debugf("authentication successful", "user_id", c.UserID())
	return nil
}

// get performs an authenticated GET request, decoding the response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if !c.IsAuthenticated() {
		return &AuthError{Status: StatusUnauthorized, Message: "not authenticated"}
	}
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// post performs an authenticated POST request, decoding the response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if !c.IsAuthenticated() {
		return &AuthError{Status: StatusUnauthorized, Message: "not authenticated"}
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

// do executes a single request/response cycle. It applies, uniformly for
// every call: the per-request timeout, the bearer header when a session
// exists, status-code mapping and JSON decoding. It does not perform the
// authentication pre-check; get and post do, Authenticate is exempt.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + strings.TrimLeft(path, "/")

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Status: StatusClientError, Message: fmt.Sprintf("encoding request body: %v", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, reqBody)
	if err != nil {
		return &APIError{Status: StatusClientError, Message: fmt.Sprintf("building request: %v", err)}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.sessionMu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.sessionMu.RUnlock()

	c.debugf("api request", "method", method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded {
			return &APIError{Status: StatusTimeout, Message: "request timeout"}
		}
		return &APIError{Status: StatusClientError, Message: fmt.Sprintf("http client error: %v", err)}
	}
	defer resp.Body.Close() //nolint:errcheck // read-side close

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize)) //nolint:errcheck // best-effort capture
		msg := strings.TrimSpace(string(data))
		// A 401 means the token is no longer valid: session-fatal, not
		// transient.
		if resp.StatusCode == http.StatusUnauthorized {
			return &AuthError{Status: resp.StatusCode, Message: msg}
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: StatusClientError, Message: fmt.Sprintf("invalid JSON response: %v", err)}
	}

	return nil
}
