package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agentic/internal/api"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrEmptyTitle   = errors.New("title cannot be empty")
	ErrSendInFlight = errors.New("a send is already in flight")
)

// ChatMessage is one transcript entry as held by the controller. LocalID
// is a client-side correlation id; the backend never sees it.
type ChatMessage struct {
	LocalID string
	Role    string
	Content string
	IsError bool
	Status  Status
}

func newMessage(role, content string, status Status) ChatMessage {
	return ChatMessage{LocalID: uuid.NewString(), Role: role, Content: content, Status: status}
}

// Backend is the slice of the API client the controller drives.
type Backend interface {
	ListSessions(ctx context.Context, agentID string) ([]map[string]any, error)
	SessionMessages(ctx context.Context, sessionID string) ([]api.Message, error)
	SendChat(ctx context.Context, agentID, sessionID, message string) (api.ChatResponse, error)
	RenameSession(ctx context.Context, sessionID, title string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// Cache is an optional local store mirroring the backend's session list
// and transcripts, used as a fallback when a fetch fails.
type Cache interface {
	PutMessages(sessionID string, messages []ChatMessage) error
	Messages(sessionID string) ([]ChatMessage, error)
	PutSessions(agentID string, sessions []Session) error
	Sessions(agentID string) ([]Session, error)
	DeleteSession(sessionID string) error
}

// Controller owns the active-session lifecycle for one agent view. The UI
// serializes operations, but it keeps rendering while one runs in a
// background goroutine, so all list/transcript state sits behind a mutex.
// The mutex is never held across a network call.
type Controller struct {
	backend   Backend
	cache     Cache
	log       *zap.Logger
	agentID   string
	agentName string

	mu       sync.Mutex // guards sessions, activeID, messages, sending
	sessions []Session
	activeID string
	messages []ChatMessage
	sending  bool

	// renameDone closes the loop for the async title notification; tests
	// use it, production ignores it.
	renameDone chan struct{}
}

type ControllerOption func(*Controller)

func WithCache(cache Cache) ControllerOption {
	return func(c *Controller) { c.cache = cache }
}

func WithLogger(log *zap.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

func NewController(backend Backend, agentID, agentName string, opts ...ControllerOption) *Controller {
	c := &Controller{
		backend:   backend,
		log:       zap.NewNop(),
		agentID:   agentID,
		agentName: agentName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init loads the session list and opens a fresh chat. A failed list fetch
// degrades to an empty sidebar; the greeting and new-chat state are set
// unconditionally so the user can always start typing.
func (c *Controller) Init(ctx context.Context) error {
	err := c.refreshSessions(ctx)
	c.StartNewChat()
	return err
}

func (c *Controller) refreshSessions(ctx context.Context) error {
	raw, err := c.backend.ListSessions(ctx, c.agentID)
	if err != nil {
		c.log.Warn("list sessions failed", zap.Error(err))
		if c.cache != nil {
			if cached, cacheErr := c.cache.Sessions(c.agentID); cacheErr == nil && len(cached) > 0 {
				c.mu.Lock()
				c.sessions = cached
				c.mu.Unlock()
			}
		}
		return err
	}

	normalized := Normalize(raw)
	c.mu.Lock()
	c.sessions = normalized
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.PutSessions(c.agentID, normalized); err != nil {
			c.log.Warn("cache sessions failed", zap.Error(err))
		}
	}
	return nil
}

// StartNewChat resets to the no-active-session placeholder. The real
// session is only created server-side on the first message. Never fails.
func (c *Controller) StartNewChat() {
	name := c.agentName
	if name == "" {
		name = "your agent"
	}
	greeting := newMessage("assistant", fmt.Sprintf("Hello! I'm %s. How can I help you today?", name), StatusConfirmed)

	c.mu.Lock()
	c.activeID = ""
	c.messages = []ChatMessage{greeting}
	c.mu.Unlock()
}

// SwitchTo makes id the active session and loads its transcript. Switching
// to the already-active session with messages loaded is a no-op. A failed
// fetch falls back to the local cache, then to an empty transcript; the
// active-id assignment is kept either way.
func (c *Controller) SwitchTo(ctx context.Context, id string) {
	c.mu.Lock()
	if id == c.activeID && len(c.messages) > 0 {
		c.mu.Unlock()
		return
	}
	c.messages = nil
	c.activeID = id
	c.mu.Unlock()

	history, err := c.backend.SessionMessages(ctx, id)
	if err != nil {
		c.log.Warn("fetch session history failed", zap.String("session", id), zap.Error(err))
		loaded := []ChatMessage{}
		if c.cache != nil {
			if cached, cacheErr := c.cache.Messages(id); cacheErr == nil && len(cached) > 0 {
				loaded = cached
			}
		}
		c.mu.Lock()
		c.messages = loaded
		c.mu.Unlock()
		return
	}

	loaded := make([]ChatMessage, 0, len(history))
	for _, m := range history {
		loaded = append(loaded, newMessage(m.Role, m.Content, StatusConfirmed))
	}
	c.mu.Lock()
	c.messages = loaded
	c.mu.Unlock()
	c.cacheTranscript()
}

// SendMessage appends the user turn optimistically, sends it, and appends
// the assistant reply. When no session was active, the server-created
// session id is adopted and the registry re-fetched. Failures land in the
// transcript as an error-flagged assistant message; the optimistic user
// turn is never rolled back.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	userMsg := newMessage("user", text, StatusPending)
	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	c.sending = true
	c.messages = append(c.messages, userMsg)
	target := c.activeID
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	resp, err := c.backend.SendChat(ctx, c.agentID, target, text)
	if err != nil {
		failure := newMessage("assistant",
			fmt.Sprintf("### ⚠️ Execution Error\n\n%s\n\n*Please check your tool configurations or API keys.*", api.UserMessage(err, "Sorry, I encountered an error. Please try again.")),
			StatusFailed)
		failure.IsError = true
		c.mu.Lock()
		c.setMessageStatusLocked(userMsg.LocalID, StatusFailed)
		c.messages = append(c.messages, failure)
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	c.setMessageStatusLocked(userMsg.LocalID, StatusConfirmed)
	c.messages = append(c.messages, newMessage("assistant", resp.Response, StatusConfirmed))
	wasNew := c.activeID == ""
	if wasNew && resp.SessionID != "" {
		target = resp.SessionID
		c.activeID = target
	} else {
		target = c.activeID
	}
	c.mu.Unlock()

	if wasNew && resp.SessionID != "" {
		// A brand-new session now exists server-side that the registry
		// doesn't know about; the re-fetched list is authoritative.
		if err := c.refreshSessions(ctx); err != nil {
			c.mu.Lock()
			c.sessions = append([]Session{{ID: target, Title: DefaultTitle, Status: StatusPending}}, c.sessions...)
			c.mu.Unlock()
		}
	}

	c.maybeRetitle(wasNew, target, text)
	c.cacheTranscript()
	return nil
}

// maybeRetitle replaces a placeholder title with one inferred from the
// first message. The local update is immediate; the server PATCH runs in
// the background and is not waited on.
func (c *Controller) maybeRetitle(wasNew bool, targetID, firstMessage string) {
	if targetID == "" {
		return
	}

	c.mu.Lock()
	current, found := c.findLocked(targetID)
	if !wasNew && (!found || !IsGenericTitle(current.Title)) {
		c.mu.Unlock()
		return
	}

	newTitle := InferTitle(firstMessage)
	c.setTitleLocked(targetID, newTitle)

	done := make(chan struct{})
	c.renameDone = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		if err := c.backend.RenameSession(context.Background(), targetID, newTitle); err != nil {
			c.log.Warn("title sync failed", zap.String("session", targetID), zap.Error(err))
		}
	}()
}

// Rename sets a session's title on the server and locally.
func (c *Controller) Rename(ctx context.Context, id, title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if err := c.backend.RenameSession(ctx, id, title); err != nil {
		return err
	}
	c.mu.Lock()
	c.setTitleLocked(id, title)
	c.mu.Unlock()
	return nil
}

// Delete removes a session. When the active session is deleted, the most
// recent remaining one is selected, or a fresh chat when none remain.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.backend.DeleteSession(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	remaining := make([]Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		if s.ID != id {
			remaining = append(remaining, s)
		}
	}
	c.sessions = remaining
	wasActive := c.activeID == id
	next := ""
	if wasActive && len(remaining) > 0 {
		next = remaining[0].ID
		c.activeID = ""
	}
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.DeleteSession(id); err != nil {
			c.log.Warn("cache delete failed", zap.String("session", id), zap.Error(err))
		}
	}

	if wasActive {
		if next != "" {
			c.SwitchTo(ctx, next)
		} else {
			c.StartNewChat()
		}
	}
	return nil
}

// Search filters sessions by a case-insensitive title match.
func (c *Controller) Search(term string) []Session {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.Sessions()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Session
	for _, s := range c.sessions {
		if strings.Contains(strings.ToLower(s.Title), term) {
			out = append(out, s)
		}
	}
	return out
}

func (c *Controller) Sessions() []Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}

func (c *Controller) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

func (c *Controller) AgentName() string { return c.agentName }

func (c *Controller) findLocked(id string) (Session, bool) {
	for _, s := range c.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return Session{}, false
}

func (c *Controller) setTitleLocked(id, title string) {
	for i := range c.sessions {
		if c.sessions[i].ID == id {
			c.sessions[i].Title = title
		}
	}
}

func (c *Controller) setMessageStatusLocked(localID string, status Status) {
	for i := range c.messages {
		if c.messages[i].LocalID == localID {
			c.messages[i].Status = status
		}
	}
}

func (c *Controller) cacheTranscript() {
	if c.cache == nil {
		return
	}
	c.mu.Lock()
	id := c.activeID
	transcript := make([]ChatMessage, len(c.messages))
	copy(transcript, c.messages)
	c.mu.Unlock()

	if id == "" {
		return
	}
	if err := c.cache.PutMessages(id, transcript); err != nil {
		c.log.Warn("cache transcript failed", zap.String("session", id), zap.Error(err))
	}
}
