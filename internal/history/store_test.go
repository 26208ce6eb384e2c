package history

import (
	"path/filepath"
	"testing"
	"time"

	"agentic/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutMessagesReplacesTranscript(t *testing.T) {
	store := openTestStore(t)

	first := []session.ChatMessage{
		{Role: "user", Content: "hello", Status: session.StatusConfirmed},
		{Role: "assistant", Content: "hi there", Status: session.StatusConfirmed},
	}
	if err := store.PutMessages("s1", first); err != nil {
		t.Fatalf("PutMessages failed: %v", err)
	}

	// A second put fully replaces the first.
	second := []session.ChatMessage{
		{Role: "user", Content: "only this", IsError: false, Status: session.StatusConfirmed},
	}
	if err := store.PutMessages("s1", second); err != nil {
		t.Fatalf("second PutMessages failed: %v", err)
	}

	got, err := store.Messages("s1")
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(got) != 1 || got[0].Content != "only this" {
		t.Errorf("Messages = %+v", got)
	}
}

func TestMessagesPreservesOrderAndFlags(t *testing.T) {
	store := openTestStore(t)

	messages := []session.ChatMessage{
		{Role: "user", Content: "try this", Status: session.StatusFailed},
		{Role: "assistant", Content: "something broke", IsError: true, Status: session.StatusFailed},
	}
	if err := store.PutMessages("s1", messages); err != nil {
		t.Fatalf("PutMessages failed: %v", err)
	}

	got, err := store.Messages("s1")
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if got[0].Role != "user" || got[1].Role != "assistant" {
		t.Errorf("order lost: %+v", got)
	}
	if !got[1].IsError || got[1].Status != session.StatusFailed {
		t.Errorf("flags lost: %+v", got[1])
	}
}

func TestSessionsNewestFirst(t *testing.T) {
	store := openTestStore(t)

	sessions := []session.Session{
		{ID: "old", Title: "Old chat", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "new", Title: "New chat", CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	if err := store.PutSessions("agent-1", sessions); err != nil {
		t.Fatalf("PutSessions failed: %v", err)
	}

	got, err := store.Sessions("agent-1")
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Errorf("Sessions = %+v, want newest first", got)
	}
}

func TestPutSessionsScopedToAgent(t *testing.T) {
	store := openTestStore(t)

	if err := store.PutSessions("agent-1", []session.Session{{ID: "a"}}); err != nil {
		t.Fatalf("PutSessions failed: %v", err)
	}
	if err := store.PutSessions("agent-2", []session.Session{{ID: "b"}}); err != nil {
		t.Fatalf("PutSessions failed: %v", err)
	}

	// Replacing agent-1's list leaves agent-2 alone.
	if err := store.PutSessions("agent-1", nil); err != nil {
		t.Fatalf("PutSessions failed: %v", err)
	}
	got, err := store.Sessions("agent-2")
	if err != nil || len(got) != 1 {
		t.Errorf("agent-2 sessions = %+v, err = %v", got, err)
	}
}

func TestDeleteSessionRemovesTranscript(t *testing.T) {
	store := openTestStore(t)

	if err := store.PutSessions("agent-1", []session.Session{{ID: "s1"}}); err != nil {
		t.Fatalf("PutSessions failed: %v", err)
	}
	if err := store.PutMessages("s1", []session.ChatMessage{{Role: "user", Content: "x"}}); err != nil {
		t.Fatalf("PutMessages failed: %v", err)
	}

	if err := store.DeleteSession("s1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	messages, err := store.Messages("s1")
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected no messages, got %d", len(messages))
	}
	sessions, err := store.Sessions("agent-1")
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}
}
