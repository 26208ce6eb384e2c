package cli

import (
	"context"
	"net/http"
	"testing"
)

func TestDeleteAccountClearsAuthState(t *testing.T) {
	var deleted bool
	app, tokens := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/auth/profile":
			w.Write([]byte(`{"user": {"id": "u1", "name": "Ada", "email": "ada@example.com"}}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/auth/account":
			deleted = true
			w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.Write([]byte(`{}`))
		}
	})

	if err := DeleteAccount(context.Background(), app, true); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if !deleted {
		t.Error("expected the account deletion request")
	}
	if tokens.token != "" {
		t.Error("token should be cleared after the account is gone")
	}
	if app.Auth.Authenticated() {
		t.Error("expected unauthenticated state")
	}
}

func TestDeleteAccountRequiresLogin(t *testing.T) {
	app, tokens := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made without a token")
	})
	tokens.token = ""

	if err := DeleteAccount(context.Background(), app, true); err == nil {
		t.Fatal("expected an error without a login")
	}
}
