package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agentic/config"
	"agentic/internal/api"
	"agentic/internal/auth"
)

// memTokens keeps the bearer token in memory so tests never touch the
// system keyring.
type memTokens struct {
	token string
}

func (m *memTokens) Token() (string, error) {
	if m.token == "" {
		return "", auth.ErrNoToken
	}
	return m.token, nil
}

func (m *memTokens) SetToken(v string) error {
	m.token = v
	return nil
}

func (m *memTokens) DeleteToken() error {
	if m.token == "" {
		return auth.ErrNoToken
	}
	m.token = ""
	return nil
}

func newTestApp(t *testing.T, handler http.HandlerFunc) (*App, *memTokens) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := &memTokens{token: "tok-1"}
	client := api.NewClient(server.URL, api.WithTokenSource(func() string {
		token, err := tokens.Token()
		if err != nil {
			return ""
		}
		return token
	}))
	return &App{
		Settings: &config.Settings{BackendURL: server.URL, Theme: "dark"},
		Client:   client,
		Auth:     auth.NewStore(client, tokens, nil),
	}, tokens
}

const atlasRecord = `{"id": "a1", "name": "Atlas", "provider": "openai", "model": "gpt-4o", "systemPrompt": "You are helpful."}`

func editHandler(t *testing.T, patchBody *map[string]any, keyCalls *[]string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/agents":
			w.Write([]byte("[" + atlasRecord + "]"))
		case r.Method == http.MethodGet && r.URL.Path == "/agents/a1":
			w.Write([]byte(atlasRecord))
		case r.Method == http.MethodPatch && r.URL.Path == "/agents/a1":
			if err := json.NewDecoder(r.Body).Decode(patchBody); err != nil {
				t.Errorf("bad patch body: %v", err)
			}
			w.Write([]byte(`{}`))
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/keys/"):
			*keyCalls = append(*keyCalls, "delete:"+strings.TrimPrefix(r.URL.Path, "/keys/"))
			w.Write([]byte(`{}`))
		case r.Method == http.MethodPost && r.URL.Path == "/keys":
			var payload map[string]string
			json.NewDecoder(r.Body).Decode(&payload)
			*keyCalls = append(*keyCalls, "store:"+payload["provider"])
			w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.Write([]byte(`{}`))
		}
	}
}

func TestEditAgentRejectsModelOutsideProvider(t *testing.T) {
	var patchBody map[string]any
	var keyCalls []string
	app, _ := newTestApp(t, editHandler(t, &patchBody, &keyCalls))

	err := EditAgent(context.Background(), app, "Atlas", EditOptions{Model: "claude-3-opus-20240229"})
	if err == nil || !strings.Contains(err.Error(), "not available") {
		t.Fatalf("expected a catalog rejection, got %v", err)
	}
	if patchBody != nil {
		t.Error("no update should be sent for an invalid provider/model pair")
	}
	if len(keyCalls) != 0 {
		t.Errorf("no key traffic expected, got %v", keyCalls)
	}
}

func TestEditAgentPatchesChangedFields(t *testing.T) {
	var patchBody map[string]any
	var keyCalls []string
	app, _ := newTestApp(t, editHandler(t, &patchBody, &keyCalls))

	if err := EditAgent(context.Background(), app, "Atlas", EditOptions{SystemPrompt: "Be brief."}); err != nil {
		t.Fatalf("EditAgent failed: %v", err)
	}
	if patchBody["systemPrompt"] != "Be brief." || patchBody["prompt"] != "Be brief." {
		t.Errorf("prompt variants missing from patch: %v", patchBody)
	}
	// Untouched fields keep their current values.
	if patchBody["model"] != "gpt-4o" || patchBody["name"] != "Atlas" {
		t.Errorf("unchanged fields should carry over: %v", patchBody)
	}
	if len(keyCalls) != 0 {
		t.Errorf("same-provider edit without a key must not touch keys, got %v", keyCalls)
	}
}

func TestEditAgentProviderSwitchRotatesKeyAndModel(t *testing.T) {
	var patchBody map[string]any
	var keyCalls []string
	app, _ := newTestApp(t, editHandler(t, &patchBody, &keyCalls))

	err := EditAgent(context.Background(), app, "Atlas", EditOptions{Provider: "anthropic", APIKey: "sk-ant"})
	if err != nil {
		t.Fatalf("EditAgent failed: %v", err)
	}

	// The old model belongs to the old provider; the switch falls back to
	// the new provider's default.
	if patchBody["model"] != "claude-3-5-sonnet-latest" {
		t.Errorf("model = %v, want the anthropic default", patchBody["model"])
	}
	want := []string{"delete:openai", "delete:anthropic", "store:anthropic"}
	if len(keyCalls) != len(want) {
		t.Fatalf("keyCalls = %v, want %v", keyCalls, want)
	}
	for i := range want {
		if keyCalls[i] != want[i] {
			t.Fatalf("keyCalls = %v, want %v", keyCalls, want)
		}
	}
}
