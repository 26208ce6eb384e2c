package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, WithTokenSource(func() string { return "tok-123" }))
}

func TestBearerHeaderAttached(t *testing.T) {
	var got string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	if _, err := client.GetAgent(context.Background(), "a1"); err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if got != "Bearer tok-123" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestNoHeaderWithoutToken(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.GetAgent(context.Background(), "a1"); err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected no Authorization header, got %q", got)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
	}

	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"error": "nope"}`))
		})
		_, err := client.GetAgent(context.Background(), "a1")
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: errors.Is(%v, %v) = false", tc.status, err, tc.want)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "nope" {
			t.Errorf("status %d: expected server message, got %v", tc.status, err)
		}
	}
}

func TestServerMessagePrefersError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "primary", "message": "secondary"}`))
	})
	_, err := client.GetAgent(context.Background(), "a1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "primary" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "primary")
	}
}

func TestListSessionsShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"wrapped", `{"sessions": [{"id": "a"}, {"id": "b"}]}`, 2},
		{"bare array", `[{"id": "a"}]`, 1},
		{"unexpected shape", `{"data": 7}`, 0},
	}

	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tc.body))
		})
		sessions, err := client.ListSessions(context.Background(), "agent-1")
		if err != nil {
			t.Fatalf("%s: ListSessions failed: %v", tc.name, err)
		}
		if len(sessions) != tc.want {
			t.Errorf("%s: got %d sessions, want %d", tc.name, len(sessions), tc.want)
		}
	}
}

func TestSessionMessagesKeyFallback(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"history", `{"history": [{"role": "user", "content": "from history"}]}`, "from history"},
		{"messages", `{"messages": [{"role": "user", "content": "from messages"}]}`, "from messages"},
		{"history wins", `{"history": [{"role": "user", "content": "h"}], "messages": [{"role": "user", "content": "m"}]}`, "h"},
	}

	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tc.body))
		})
		messages, err := client.SessionMessages(context.Background(), "s1")
		if err != nil {
			t.Fatalf("%s: SessionMessages failed: %v", tc.name, err)
		}
		if len(messages) != 1 || messages[0].Content != tc.want {
			t.Errorf("%s: messages = %+v", tc.name, messages)
		}
	}

	// Neither key present: empty transcript, not an error.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	messages, err := client.SessionMessages(context.Background(), "s1")
	if err != nil || len(messages) != 0 {
		t.Errorf("empty body: messages = %+v, err = %v", messages, err)
	}
}

func TestSendChatNullSessionID(t *testing.T) {
	var payload map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte(`{"response": "hi", "sessionId": "s-new"}`))
	})

	resp, err := client.SendChat(context.Background(), "agent-1", "", "hello")
	if err != nil {
		t.Fatalf("SendChat failed: %v", err)
	}

	if value, present := payload["sessionId"]; !present || value != nil {
		t.Errorf("sessionId = %v, want explicit null", value)
	}
	if resp.SessionID != "s-new" {
		t.Errorf("SessionID = %q", resp.SessionID)
	}
}

func TestSendChatNumericSessionID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "hi", "sessionId": 12345}`))
	})

	resp, err := client.SendChat(context.Background(), "agent-1", "", "hello")
	if err != nil {
		t.Fatalf("SendChat failed: %v", err)
	}
	if resp.SessionID != "12345" {
		t.Errorf("SessionID = %q, want 12345", resp.SessionID)
	}
}

func TestSendChatExistingSession(t *testing.T) {
	var payload map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte(`{"response": "hi"}`))
	})

	if _, err := client.SendChat(context.Background(), "agent-1", "s1", "hello"); err != nil {
		t.Fatalf("SendChat failed: %v", err)
	}
	if payload["sessionId"] != "s1" {
		t.Errorf("sessionId = %v, want s1", payload["sessionId"])
	}
}

func TestReplaceKeySwallowsDeleteFailure(t *testing.T) {
	var methods []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{}`))
	})

	if err := client.ReplaceKey(context.Background(), "openai", "sk-1"); err != nil {
		t.Fatalf("ReplaceKey failed: %v", err)
	}
	if len(methods) != 2 || methods[0] != http.MethodDelete || methods[1] != http.MethodPost {
		t.Errorf("methods = %v, want delete then post", methods)
	}
}

func TestRecordID(t *testing.T) {
	cases := []struct {
		record map[string]any
		want   string
	}{
		{map[string]any{"id": "abc"}, "abc"},
		{map[string]any{"id": float64(7)}, "7"},
		{map[string]any{"_id": "def"}, "def"},
		{map[string]any{"_id": map[string]any{"$oid": "beef"}}, "beef"},
		{map[string]any{"id": "", "_id": "def"}, "def"},
		{map[string]any{"_id": ""}, ""},
		{map[string]any{"_id": map[string]any{"$oid": ""}}, ""},
		{nil, ""},
		{map[string]any{}, ""},
	}
	for _, tc := range cases {
		if got := RecordID(tc.record); got != tc.want {
			t.Errorf("RecordID(%v) = %q, want %q", tc.record, got, tc.want)
		}
	}
}

func TestProfileShapes(t *testing.T) {
	wrapped := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user": {"id": "u1", "name": "Ada", "email": "ada@example.com"}}`))
	})
	user, err := wrapped.Profile(context.Background())
	if err != nil || user.Name != "Ada" {
		t.Errorf("wrapped profile = %+v, err = %v", user, err)
	}

	bare := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "u1", "name": "Ada", "email": "ada@example.com"}`))
	})
	user, err = bare.Profile(context.Background())
	if err != nil || user.Email != "ada@example.com" {
		t.Errorf("bare profile = %+v, err = %v", user, err)
	}
}

func TestUserMessage(t *testing.T) {
	err := &APIError{Status: 400, Message: "bad key"}
	if got := UserMessage(err, "fallback"); got != "bad key" {
		t.Errorf("UserMessage = %q, want server message", got)
	}
	if got := UserMessage(errors.New("dial tcp: refused"), "fallback"); got != "dial tcp: refused" {
		t.Errorf("UserMessage = %q, want the error text", got)
	}
	if got := UserMessage(nil, "fallback"); got != "fallback" {
		t.Errorf("UserMessage = %q, want fallback", got)
	}
}
