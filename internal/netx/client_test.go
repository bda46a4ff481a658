package netx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token string
	ok    bool
	calls int
}

func (s *staticTokens) AccessToken() (string, bool) {
	s.calls++
	return s.token, s.ok
}

type snapshot struct {
	method string
	path   string
	header http.Header
	body   []byte
}

type captured struct {
	mu sync.Mutex
	snapshot
}

func newCaptureServer(t *testing.T, status int, reply string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.mu.Lock()
		defer got.mu.Unlock()
		got.method = r.Method
		got.path = r.URL.Path
		got.header = r.Header.Clone()
		got.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(ts.Close)
	return ts, got
}

func (c *captured) view() snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

func TestClient_AttachesBearerWhenTokenPresent(t *testing.T) {
	ts, got := newCaptureServer(t, http.StatusOK, `{}`)
	tokens := &staticTokens{token: "abc", ok: true}

	c, err := NewClient(ts.URL, tokens)
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), http.MethodGet, "/products", nil)
	require.NoError(t, err)
	require.True(t, resp.OK())

	assert.Equal(t, "Bearer abc", got.view().header.Get(AuthorizationHeader))
	assert.Equal(t, ContentTypeJSON, got.view().header.Get("Content-Type"))
	assert.Equal(t, "/products", got.view().path)
	assert.Equal(t, 1, tokens.calls)

	_, err = uuid.Parse(got.view().header.Get(RequestIDHeader))
	assert.NoError(t, err)
	assert.Equal(t, resp.RequestID, got.view().header.Get(RequestIDHeader))
}

func TestClient_OmitsAuthorizationWithoutToken(t *testing.T) {
	tests := []struct {
		name   string
		tokens TokenSource
	}{
		{name: "nil source", tokens: nil},
		{name: "absent", tokens: &staticTokens{}},
		{name: "empty but reported present", tokens: &staticTokens{token: "  ", ok: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, got := newCaptureServer(t, http.StatusOK, `{}`)
			c, err := NewClient(ts.URL, tt.tokens)
			require.NoError(t, err)

			require.False(t, c.HasCredential())
			_, err = c.Do(context.Background(), http.MethodGet, "/auth/me", nil)
			require.NoError(t, err)

			_, present := got.view().header[AuthorizationHeader]
			assert.False(t, present, "Authorization header must be omitted")
		})
	}
}

func TestClient_ReadsTokenOnEveryRequest(t *testing.T) {
	ts, got := newCaptureServer(t, http.StatusOK, `{}`)
	tokens := &staticTokens{}
	c, err := NewClient(ts.URL, tokens)
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodGet, "/products", nil)
	require.NoError(t, err)
	assert.Empty(t, got.view().header.Get(AuthorizationHeader))

	tokens.token, tokens.ok = "fresh", true
	_, err = c.Do(context.Background(), http.MethodGet, "/products", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", got.view().header.Get(AuthorizationHeader))
}

func TestClient_EncodesJSONBodyAndKeepsNon2xx(t *testing.T) {
	ts, got := newCaptureServer(t, http.StatusBadRequest, `{"message":"bad"}`)
	c, err := NewClient(ts.URL+"/api", nil)
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), http.MethodPost, "/auth/login", map[string]string{"username": "emilys"})
	require.NoError(t, err, "non-2xx is not a transport error")
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, http.MethodPost, got.view().method)
	assert.Equal(t, "/api/auth/login", got.view().path)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(got.view().body, &sent))
	assert.Equal(t, "emilys", sent["username"])

	var reply struct{ Message string }
	require.NoError(t, resp.Decode(&reply))
	assert.Equal(t, "bad", reply.Message)
}

func TestClient_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c, err := NewClient(url, nil, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodGet, "/products", nil)
	require.Error(t, err)
}

func TestNewClient_RejectsInvalidBaseURL(t *testing.T) {
	for _, in := range []string{"", "not a url", "/relative/only", "://"} {
		_, err := NewClient(in, nil)
		assert.Error(t, err, in)
	}
}

func TestClient_ResponseSizeIsCapped(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, nil, WithMaxResponseBytes(64))
	require.NoError(t, err)
	resp, err := c.Do(context.Background(), http.MethodGet, "/products", nil)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 64)

	c, err = NewClient(ts.URL, nil, WithMaxResponseBytes(63))
	require.NoError(t, err)
	_, err = c.Do(context.Background(), http.MethodGet, "/products", nil)
	require.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestWithTimeout_LeavesCallerClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: 7 * time.Second}

	c, err := NewClient("https://api.example", nil, WithHTTPClient(shared), WithTimeout(time.Second))
	require.NoError(t, err)

	assert.Equal(t, 7*time.Second, shared.Timeout)
	assert.Equal(t, time.Second, c.http.Timeout)
	assert.NotSame(t, shared, c.http)
	assert.Zero(t, http.DefaultClient.Timeout)
}
