// Package api is the REST client for the Auto-Author backend. It implements
// the interfaces the editor core consumes: content persistence
// (saver.ContentWriter), session status and actions (session.API), and the
// liveness probe (connectivity.Pinger).
//
// Transient failures — connection errors and 5xx responses — are retried
// with a capped Fibonacci backoff on the idempotent calls (content PUT,
// status GET, ping). Session actions are never retried: a refresh or logout
// must not silently run twice.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/autoauthor/autoauthor/internal/common"
	"github.com/autoauthor/autoauthor/internal/editor/session"
)

const (
	DefaultTimeout = 15 * time.Second

	retryBase     = 250 * time.Millisecond
	retryAttempts = 2 // retries after the first attempt
)

type Client struct {
	base string
	http *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient builds a client for the backend at baseURL. A zero timeout
// falls back to DefaultTimeout; the timeout bounds every call so a hung
// request cannot hold the save pipeline's in-flight guard forever.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}, nil
}

// SetToken installs the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	reqBody, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	var out struct {
		Token string `json:"token"`
	}
	err = c.do(ctx, http.MethodPost, "/api/v1/auth/login", reqBody, &out)
	if err != nil {
		return "", err
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

// SaveContent persists one content fragment. Implements saver.ContentWriter.
func (c *Client) SaveContent(ctx context.Context, key, body string) error {
	reqBody, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return err
	}
	path := "/api/v1/content/" + url.PathEscape(key)
	return c.doRetry(ctx, http.MethodPut, path, reqBody, nil)
}

// FetchContent loads the stored fragment for key, returning
// common.ErrorNotFound when none exists.
func (c *Client) FetchContent(ctx context.Context, key string) (string, error) {
	var out struct {
		Body string `json:"body"`
	}
	path := "/api/v1/content/" + url.PathEscape(key)
	if err := c.doRetry(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.Body, nil
}

// FetchSessionStatus implements session.API. A 404 means no active session
// and yields (nil, nil).
func (c *Client) FetchSessionStatus(ctx context.Context) (*session.Status, error) {
	var st session.Status
	err := c.doRetry(ctx, http.MethodGet, "/api/v1/session/status", nil, &st)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

func (c *Client) RefreshSession(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/session/refresh", nil, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/session/logout", nil, nil)
}

func (c *Client) LogoutAll(ctx context.Context, keepCurrent bool) error {
	reqBody, err := json.Marshal(map[string]bool{"keep_current": keepCurrent})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/v1/session/logout-all", reqBody, nil)
}

// Ping implements connectivity.Pinger.
func (c *Client) Ping(ctx context.Context) error {
	return c.doRetry(ctx, http.MethodGet, "/health", nil, nil)
}

// doRetry wraps do with the transient-failure retry policy. Only errors
// already classified as ErrUnavailable are retried.
func (c *Client) doRetry(ctx context.Context, method, path string, body []byte, out any) error {
	backoff := retry.WithMaxRetries(retryAttempts, retry.NewFibonacci(retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, method, path, body, out)
		if err != nil && errors.Is(err, ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set(common.AuthorizationHeader, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// statusError maps HTTP failures to the shared sentinels so callers can
// branch with errors.Is. The server's error message is attached only when
// it is a short single-line string.
func statusError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload)

	var base error
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		base = common.ErrorUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		base = common.ErrorNotFound
	case resp.StatusCode >= 500:
		base = ErrUnavailable
	default:
		base = fmt.Errorf("unexpected status %s", resp.Status)
	}

	if msg := payload.Error; msg != "" && len(msg) <= 120 && !strings.ContainsAny(msg, "\n\r") {
		return fmt.Errorf("%w: %s", base, msg)
	}
	return base
}
