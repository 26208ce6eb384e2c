package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Message is one turn of a session transcript as the backend returns it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the result of sending a message. SessionID is set when
// the backend created a session for the exchange (first send with a nil
// session reference).
type ChatResponse struct {
	Response  string
	SessionID string
}

// ListSessions returns the raw session records for an agent. The backend
// returns either {"sessions": [...]} or a bare array; both are accepted,
// anything else yields an empty list.
func (c *Client) ListSessions(ctx context.Context, agentID string) ([]map[string]any, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/chat/sessions/"+agentID, nil)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Sessions []map[string]any `json:"sessions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Sessions != nil {
		return wrapped.Sessions, nil
	}

	var bare []map[string]any
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	return []map[string]any{}, nil
}

// SessionMessages fetches a session's transcript. The backend keys it under
// "history" or "messages"; checked in that order, empty fallback.
func (c *Client) SessionMessages(ctx context.Context, sessionID string) ([]Message, error) {
	var body struct {
		History  []Message `json:"history"`
		Messages []Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/chat/sessions/"+sessionID+"/messages", nil, &body); err != nil {
		return nil, err
	}
	if body.History != nil {
		return body.History, nil
	}
	if body.Messages != nil {
		return body.Messages, nil
	}
	return []Message{}, nil
}

// SendChat sends one user message. sessionID == "" is transmitted as null,
// which tells the backend to create a session for this exchange.
func (c *Client) SendChat(ctx context.Context, agentID, sessionID, message string) (ChatResponse, error) {
	payload := map[string]any{
		"agentId":   agentID,
		"sessionId": nil,
		"message":   message,
	}
	if sessionID != "" {
		payload["sessionId"] = sessionID
	}

	var body map[string]any
	if err := c.do(ctx, http.MethodPost, "/chat", payload, &body); err != nil {
		return ChatResponse{}, err
	}

	out := ChatResponse{}
	if text, ok := body["response"].(string); ok {
		out.Response = text
	}
	// The session id has been observed as both a string and a number.
	switch id := body["sessionId"].(type) {
	case string:
		out.SessionID = id
	case float64:
		out.SessionID = fmt.Sprintf("%.0f", id)
	}
	return out, nil
}

func (c *Client) RenameSession(ctx context.Context, sessionID, title string) error {
	return c.do(ctx, http.MethodPatch, "/chat/sessions/"+sessionID, map[string]string{"title": title}, nil)
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/chat/sessions/"+sessionID, nil, nil)
}
