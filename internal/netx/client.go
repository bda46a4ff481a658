// Package netx provides the single HTTP transport used by the catalog client.
//
// A Client is configured once with the API base URL. Every request carries
// JSON content headers, a fresh X-Request-ID and, when the TokenSource has an
// access token, an "Authorization: Bearer <token>" header. The header is
// omitted entirely when no token is present.
//
// The Client performs no retries and does not interpret status codes: a
// non-2xx response is returned as a Response, and only failures to reach the
// server at all are reported as errors.
package netx

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
	"time"

	"github.com/dmitrijs2005/catalogkeeper/internal/logging"
	"github.com/google/uuid"
)

const (
	AuthorizationHeader = "Authorization"
	RequestIDHeader     = "X-Request-ID"
	ContentTypeJSON     = "application/json"

	bearerPrefix = "Bearer "

	// DefaultMaxResponseBytes bounds how much of a response body is read.
	DefaultMaxResponseBytes = 10 << 20
)

var ErrResponseTooLarge = errors.New("response body too large")

// TokenSource yields the current access token. Implementations must be safe
// for concurrent use; the Client calls it once per request.
type TokenSource interface {
	AccessToken() (string, bool)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type Client struct {
	base    *url.URL
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
	headers http.Header
	maxBody int64
}

type Option func(*Client)

// WithHTTPClient uses a copy of hc as the underlying *http.Client. Its
// transport is shared; later options never modify hc itself.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.http = &cp
		}
	}
}

// WithTimeout sets a per-request timeout on the underlying *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		cp := *c.http
		cp.Timeout = d
		c.http = &cp
	}
}

// WithMaxResponseBytes caps the size of a response body. Larger bodies fail
// with ErrResponseTooLarge.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = logging.OrNop(l) }
}

// NewClient builds a Client for baseURL. tokens may be nil, in which case no
// request is ever authenticated.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	c := &Client{
		base:    u,
		http:    &http.Client{},
		tokens:  tokens,
		log:     logging.NewNopLogger(),
		maxBody: DefaultMaxResponseBytes,
		headers: http.Header{
			"Content-Type": []string{ContentTypeJSON},
			"Accept":       []string{ContentTypeJSON},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// HasCredential reports whether the next request would carry a bearer token.
func (c *Client) HasCredential() bool {
	_, ok := c.accessToken()
	return ok
}

func (c *Client) accessToken() (string, bool) {
	if c.tokens == nil {
		return "", false
	}
	token, ok := c.tokens.AccessToken()
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// URL resolves path against the base URL.
func (c *Client) URL(path string) string {
	return c.base.JoinPath(path).String()
}

// Do sends a request with body encoded as JSON (nil for no body) and reads the
// whole response. The returned error is non-nil only when no response was
// received.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	for k, v := range c.headers {
		req.Header[k] = append([]string(nil), v...)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	if token, ok := c.accessToken(); ok {
		req.Header.Set(AuthorizationHeader, bearerPrefix+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%s %s: %w (limit %d bytes)", method, path, ErrResponseTooLarge, c.maxBody)
	}

	c.log.Debug(ctx, "request done",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		RequestID:  requestID,
	}, nil
}
