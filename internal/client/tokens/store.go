// Package tokens keeps the process-wide authentication state: the access and
// refresh tokens issued at login.
//
// Each token lives in memory and in the client-local metadata store under a
// fixed key ("access-token", "refresh-token"). Memory is seeded from storage
// when the Store is opened, and every write goes to storage first: a failed
// write returns an error and leaves memory untouched, so the two never
// diverge. Reads are lock-free; writes are serialized and the last writer wins.
//
// Values are persisted as JSON strings ("\"abc\""), and unquoted on load so
// that a raw token never carries quote characters into a request header.
package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/catalogkeeper/internal/client/models"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/catalogkeeper/internal/logging"
)

const (
	AccessTokenKey  = "access-token"
	RefreshTokenKey = "refresh-token"
)

type Store struct {
	repo metadata.Repository
	log  logging.Logger

	mu      sync.Mutex
	access  *Token
	refresh *Token
}

// Token is one persisted credential slot.
type Token struct {
	key   string
	store *Store
	value atomic.Pointer[string]
}

// Open creates a Store backed by repo and loads the persisted tokens.
// Missing keys simply leave the corresponding token absent.
func Open(ctx context.Context, repo metadata.Repository, log logging.Logger) (*Store, error) {
	s := &Store{repo: repo, log: logging.OrNop(log)}
	s.access = &Token{key: AccessTokenKey, store: s}
	s.refresh = &Token{key: RefreshTokenKey, store: s}

	for _, t := range []*Token{s.access, s.refresh} {
		raw, err := repo.Get(ctx, t.key)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", t.key, err)
		}
		t.publish(decode(raw))
	}

	s.log.Debug(ctx, "token store loaded", "has_access_token", s.access.present(), "has_refresh_token", s.refresh.present())
	return s, nil
}

func (s *Store) Access() *Token  { return s.access }
func (s *Store) Refresh() *Token { return s.refresh }

// AccessToken makes the Store a token source for the HTTP client.
func (s *Store) AccessToken() (string, bool) {
	return s.access.Read()
}

// Current returns both tokens; absent ones are empty strings.
func (s *Store) Current() models.AuthToken {
	a, _ := s.access.Read()
	r, _ := s.refresh.Read()
	return models.AuthToken{AccessToken: a, RefreshToken: r}
}

// Set replaces both tokens in one transaction. An empty field removes the
// corresponding token.
func (s *Store) Set(ctx context.Context, tok models.AuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.Update(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := persist(ctx, r, AccessTokenKey, tok.AccessToken); err != nil {
			return err
		}
		return persist(ctx, r, RefreshTokenKey, tok.RefreshToken)
	})
	if err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}

	s.access.publish(tok.AccessToken)
	s.refresh.publish(tok.RefreshToken)
	return nil
}

// Clear removes both tokens.
func (s *Store) Clear(ctx context.Context) error {
	return s.Set(ctx, models.AuthToken{})
}

// Read returns the current value. It never blocks.
func (t *Token) Read() (string, bool) {
	v := t.value.Load()
	if v == nil {
		return "", false
	}
	return *v, true
}

// Write persists v and then makes it visible to readers. Writing "" is the
// same as Clear.
func (t *Token) Write(ctx context.Context, v string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if err := persist(ctx, t.store.repo, t.key, v); err != nil {
		return fmt.Errorf("save %s: %w", t.key, err)
	}
	t.publish(v)
	return nil
}

func (t *Token) Clear(ctx context.Context) error {
	return t.Write(ctx, "")
}

func (t *Token) present() bool {
	_, ok := t.Read()
	return ok
}

func (t *Token) publish(v string) {
	if v == "" {
		t.value.Store(nil)
		return
	}
	t.value.Store(&v)
}

func persist(ctx context.Context, r metadata.Repository, key, v string) error {
	if v == "" {
		return r.Delete(ctx, key)
	}
	return r.Set(ctx, key, encode(v))
}

func encode(v string) []byte {
	b, _ := json.Marshal(v)
	return b
}

// decode accepts both JSON-quoted values and bare strings written by older
// clients, stripping one pair of surrounding quotes either way.
func decode(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	s := strings.TrimPrefix(string(raw), `"`)
	return strings.TrimSuffix(s, `"`)
}
