package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"agentic/internal/api"
)

// memoryTokens is an in-memory TokenStore so tests never touch the system
// keyring.
type memoryTokens struct {
	token string
}

func (m *memoryTokens) Token() (string, error) {
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *memoryTokens) SetToken(v string) error {
	m.token = v
	return nil
}

func (m *memoryTokens) DeleteToken() error {
	if m.token == "" {
		return ErrNoToken
	}
	m.token = ""
	return nil
}

func newTestStore(t *testing.T, tokens *memoryTokens, handler http.HandlerFunc) *Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := api.NewClient(server.URL, api.WithTokenSource(func() string {
		token, err := tokens.Token()
		if err != nil {
			return ""
		}
		return token
	}))
	return NewStore(client, tokens, nil)
}

func TestHydrateWithoutToken(t *testing.T) {
	tokens := &memoryTokens{}
	store := newTestStore(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made without a token")
	})

	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	if store.Authenticated() {
		t.Error("expected unauthenticated state")
	}
}

func TestHydrateWithValidToken(t *testing.T) {
	tokens := &memoryTokens{token: "tok-1"}
	store := newTestStore(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user": {"id": "u1", "name": "Ada", "email": "ada@example.com"}}`))
	})

	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	if !store.Authenticated() {
		t.Fatal("expected authenticated state")
	}
	if store.User().Name != "Ada" {
		t.Errorf("User = %+v", store.User())
	}
}

func TestHydrateDiscardsRejectedToken(t *testing.T) {
	tokens := &memoryTokens{token: "stale"}
	store := newTestStore(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "token expired"}`))
	})

	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("a rejected token is not a hydrate error: %v", err)
	}
	if store.Authenticated() {
		t.Error("expected unauthenticated state")
	}
	if tokens.token != "" {
		t.Error("stale token should have been deleted")
	}
}

func TestLoginStoresToken(t *testing.T) {
	tokens := &memoryTokens{}
	store := newTestStore(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token": "tok-new", "user": {"id": "u1", "name": "Ada", "email": "ada@example.com"}}`))
	})

	if err := store.Login(context.Background(), "ada@example.com", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if tokens.token != "tok-new" {
		t.Errorf("token = %q, want tok-new", tokens.token)
	}
	if !store.Authenticated() || store.User().Email != "ada@example.com" {
		t.Errorf("state = %v / %+v", store.Authenticated(), store.User())
	}
}

func TestLoginFailureLeavesStateClean(t *testing.T) {
	tokens := &memoryTokens{}
	store := newTestStore(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "bad credentials"}`))
	})

	if err := store.Login(context.Background(), "ada@example.com", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}
	if store.Authenticated() || tokens.token != "" {
		t.Error("failed login must not leave auth state behind")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	tokens := &memoryTokens{token: "tok-1"}
	store := newTestStore(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user": {"id": "u1", "name": "Ada", "email": "ada@example.com"}}`))
	})
	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	store.Logout()

	if store.Authenticated() || store.User() != nil {
		t.Error("expected clean state after logout")
	}
	if tokens.token != "" {
		t.Error("token should be deleted on logout")
	}
}
