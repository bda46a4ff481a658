// Package services wires the gateway, token store, query cache and mutation
// orchestrator into the operations a UI calls: log in, check the session,
// list and edit products.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/catalogkeeper/internal/client/client"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/models"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/mutation"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/notify"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/query"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/tokens"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/validation"
	"github.com/dmitrijs2005/catalogkeeper/internal/logging"
)

const LoginNotificationID = "login-toast"

func CurrentUserKey() query.Key { return query.NewKey("current-user") }

type LoginMutation = mutation.Mutation[validation.LoginInput, *models.LoginResponse]

// AuthService owns the session: login, logout and the current user.
type AuthService struct {
	gw    client.Client
	store *tokens.Store
	cache *query.Cache
	log   logging.Logger
	now   func() time.Time

	login   *LoginMutation
	session *query.Query[models.CurrentUser]

	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

func NewAuthService(gw client.Client, store *tokens.Store, cache *query.Cache, n notify.Notifier, log logging.Logger) *AuthService {
	s := &AuthService{
		gw:        gw,
		store:     store,
		cache:     cache,
		log:       logging.OrNop(log),
		now:       time.Now,
		listeners: make(map[int]func()),
	}

	s.login = mutation.New(mutation.Config[validation.LoginInput, *models.LoginResponse]{
		Name:           "login",
		NotificationID: LoginNotificationID,
		Pending:        notify.Message{Title: "Logging in...", Description: "Please wait while we log you in."},
		Success:        notify.Message{Title: "Login successful!", Description: "You are now logged in."},
		ClassifyError:  loginErrorMessage,
		Validate:       func(in validation.LoginInput) error { return in.Validate() },
		Run: func(ctx context.Context, in validation.LoginInput) (*models.LoginResponse, error) {
			return s.gw.Login(ctx, in.Request())
		},
		OnSuccess: func(ctx context.Context, _ validation.LoginInput, out *models.LoginResponse) error {
			if err := s.store.Set(ctx, out.Token()); err != nil {
				return err
			}
			s.cache.InvalidateAll()
			s.authChanged()
			return nil
		},
		Notifier: n,
		Logger:   s.log,
	})

	s.session = query.NewQuery(cache, CurrentUserKey(), func(ctx context.Context) (models.CurrentUser, error) {
		return s.CurrentUser(ctx), nil
	})
	return s
}

func loginErrorMessage(err error) notify.Message {
	if errors.Is(err, client.ErrUnauthorized) {
		return notify.Message{Title: "Invalid credentials!", Description: "Please check your email and password."}
	}
	return notify.Message{Title: "Login failed!", Description: "Something went wrong during login. Please try again."}
}

// LoginMutation validates credentials, exchanges them for tokens, stores the
// tokens and refreshes everything cached under the previous identity.
func (s *AuthService) LoginMutation() *LoginMutation { return s.login }

// Session is the cached current-user query.
func (s *AuthService) Session() *query.Query[models.CurrentUser] { return s.session }

// CurrentUser asks the API who is logged in. An access token whose expiry has
// passed is treated as no token, without a request.
func (s *AuthService) CurrentUser(ctx context.Context) models.CurrentUser {
	raw, ok := s.store.AccessToken()
	if !ok {
		return models.Unauthenticated()
	}
	if claims, err := tokens.Inspect(raw); err == nil && claims.Expired(s.now()) {
		s.log.Debug(ctx, "access token expired", "expired_at", claims.ExpiresAt)
		return models.Unauthenticated()
	}
	return s.gw.CurrentUser(ctx)
}

// LoggedIn reports whether a usable access token is stored. It does not
// contact the API.
func (s *AuthService) LoggedIn() bool {
	raw, ok := s.store.AccessToken()
	if !ok {
		return false
	}
	claims, err := tokens.Inspect(raw)
	return err != nil || !claims.Expired(s.now())
}

// Logout forgets both tokens and every cached response.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.cache.Clear()
	s.log.Info(ctx, "logged out")
	s.authChanged()
	return nil
}

// OnAuthChanged registers fn to run after every login and logout.
func (s *AuthService) OnAuthChanged(fn func()) (remove func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *AuthService) authChanged() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
