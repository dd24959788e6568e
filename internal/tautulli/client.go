package tautulli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultMaxRetries     = 5
	defaultRetryBaseDelay = time.Second

	// maxErrorBodySize bounds how much of an error response body is read back
	// for diagnostics.
	maxErrorBodySize = 64 * 1024
)

// HTTPDoer describes the HTTP client used by the Tautulli client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to a single Tautulli server. Safe for concurrent use.
type Client struct {
	baseURL        string
	apiKey         string
	doer           HTTPDoer
	maxRetries     int
	retryBaseDelay time.Duration
}

// New constructs a client for the given base URL (without the /api/v2
// suffix) and API key. timeout bounds each HTTP request.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:        baseURL,
		apiKey:         apiKey,
		doer:           &http.Client{Timeout: timeout},
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
	}
}

// NewWithDoer constructs a client using a caller-supplied HTTP doer.
func NewWithDoer(baseURL, apiKey string, doer HTTPDoer) *Client {
	return &Client{
		baseURL:        baseURL,
		apiKey:         apiKey,
		doer:           doer,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
	}
}

// Ping verifies connectivity and credentials using Tautulli's arnold command.
func (c *Client) Ping(ctx context.Context) error {
	_, err := call[json.RawMessage](ctx, c, "arnold", nil)
	if err != nil {
		return fmt.Errorf("ping tautulli: %w", err)
	}
	return nil
}

type envelope[T any] struct {
	Response struct {
		Result  string  `json:"result"`
		Message *string `json:"message"`
		Data    T       `json:"data"`
	} `json:"response"`
}

// call performs one API command and unwraps the shared response envelope.
func call[T any](ctx context.Context, c *Client, cmd string, params url.Values) (T, error) {
	var zero T

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	params.Set("cmd", cmd)
	reqURL := fmt.Sprintf("%s/api/v2?%s", c.baseURL, params.Encode())

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return zero, fmt.Errorf("%s request: %w", cmd, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return zero, fmt.Errorf("%s request failed with status %d: %s", cmd, resp.StatusCode, string(body))
	}

	var wrapped envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&wrapped); err != nil {
		return zero, fmt.Errorf("decode %s response: %w", cmd, err)
	}
	if wrapped.Response.Result != "success" {
		msg := "unknown error"
		if wrapped.Response.Message != nil {
			msg = *wrapped.Response.Message
		}
		return zero, fmt.Errorf("%s request failed: %s", cmd, msg)
	}
	return wrapped.Response.Data, nil
}

// doRequestWithRateLimit performs a GET with exponential backoff on HTTP 429.
// Backoff starts at retryBaseDelay and doubles per attempt; a Retry-After
// header overrides the computed delay. Waits are context-cancellable.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.doer.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http request: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, parseErr := strconv.Atoi(retryAfter); parseErr == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
