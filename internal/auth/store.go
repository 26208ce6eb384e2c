package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"agentic/internal/api"
)

// TokenStore persists the bearer token between runs. The package-level
// keyring functions are the production implementation; tests substitute
// an in-memory one.
type TokenStore interface {
	Token() (string, error)
	SetToken(value string) error
	DeleteToken() error
}

// Keyring is the system-keyring TokenStore.
type Keyring struct{}

func (Keyring) Token() (string, error)  { return Token() }
func (Keyring) SetToken(v string) error { return SetToken(v) }
func (Keyring) DeleteToken() error      { return DeleteToken() }

type backend interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
	Profile(ctx context.Context) (api.User, error)
}

// Store is the authentication state container. It is hydrated once at
// startup and torn down on logout; nothing else mutates it.
type Store struct {
	backend backend
	tokens  TokenStore
	log     *zap.Logger

	user          *api.User
	authenticated bool
}

func NewStore(client *api.Client, tokens TokenStore, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: client, tokens: tokens, log: log}
}

// Hydrate restores the session from the persisted token. A missing token
// leaves the store unauthenticated; a rejected token is discarded so the
// next run starts clean.
func (s *Store) Hydrate(ctx context.Context) error {
	if _, err := s.tokens.Token(); err != nil {
		if errors.Is(err, ErrNoToken) {
			return nil
		}
		return err
	}

	user, err := s.backend.Profile(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.log.Info("stored token rejected, clearing")
			s.teardown()
			return nil
		}
		return err
	}

	s.user = &user
	s.authenticated = true
	return nil
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	result, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.tokens.SetToken(result.Token); err != nil {
		return err
	}
	user := result.User
	s.user = &user
	s.authenticated = true
	s.log.Info("logged in", zap.String("email", user.Email))
	return nil
}

// Logout clears the persisted token and all in-memory state.
func (s *Store) Logout() {
	s.teardown()
	s.log.Info("logged out")
}

func (s *Store) teardown() {
	if err := s.tokens.DeleteToken(); err != nil && !errors.Is(err, ErrNoToken) {
		s.log.Warn("delete token failed", zap.Error(err))
	}
	s.user = nil
	s.authenticated = false
}

func (s *Store) Authenticated() bool { return s.authenticated }

func (s *Store) User() *api.User { return s.user }
