// Package analytics is the HTTP client for the Wise Investor analytics API.
// Every call is authenticated with a bearer token and most paths are scoped
// to an organization id.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sethvargo/go-retry"
)

// Config holds the analytics client configuration
type Config struct {
	BaseURL    string        // API root, e.g. https://api.example.org
	Token      string        // Bearer token (may be set later via WithToken)
	Timeout    time.Duration // Per-request timeout (default: 30 seconds)
	MaxRetries uint64        // GET retries on 5xx and network errors (default: 0)
	RetryBase  time.Duration // Initial retry backoff (default: 200ms)
	UserAgent  string
	HTTPClient *http.Client // Overrides Timeout when set
}

// Client talks to the analytics API. A Client is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	maxRetries uint64
	retryBase  time.Duration
	http       *http.Client
}

// New creates a new analytics client
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("BaseURL is required")
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", u.Scheme)
	}

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryBase == 0 {
		config.RetryBase = 200 * time.Millisecond
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.Token,
		userAgent:  config.UserAgent,
		maxRetries: config.MaxRetries,
		retryBase:  config.RetryBase,
		http:       httpClient,
	}, nil
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasToken reports whether a bearer token is configured.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// GetJSON issues a GET and decodes the response into out.
// GETs are retried according to MaxRetries.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	op := func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
	}
	if c.maxRetries == 0 {
		return op(ctx)
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if err != nil && retryable(ctx, err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// PostJSON marshals in, POSTs it, and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, in, out)
}

// PutJSON marshals in, PUTs it, and decodes the response into out.
func (c *Client) PutJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, nil, in, out)
}

// Delete issues a DELETE and decodes any response body into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, out)
}

// Forward sends body byte-for-byte and returns the raw response body.
// An empty response body yields a nil RawMessage.
func (c *Client) Forward(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	contentType := ""
	if body != nil {
		reader = bytes.NewReader(body)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, nil, reader, contentType, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var data []byte
	if in != nil {
		var err error
		if data, err = json.Marshal(in); err != nil {
			return fmt.Errorf("%s %s: encode request: %w", method, path, err)
		}
	}
	return c.doRaw(ctx, method, path, query, data, out)
}

// doRaw sends body as-is and decodes the response into out. A nil body
// sends no payload.
func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		reader = bytes.NewReader(body)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, query, reader, contentType, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// do sends an authenticated request. Non-2xx responses are closed and
// returned as *APIError; the caller owns the body of a successful response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType, accept string) (*http.Response, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: build request: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Request-ID", ulid.Make().String())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newAPIError(method, path, resp)
	}
	return resp, nil
}

// retryable reports whether a failed GET should be tried again: server
// errors and transport failures, but never a cancelled context.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
