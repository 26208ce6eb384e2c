package api

import (
	"context"
	"fmt"
	"net/http"
)

// GetAgent returns the raw agent record. Field names vary between backend
// versions (name/agentName/agent_name and friends), so projection into a
// canonical shape is left to the caller.
func (c *Client) GetAgent(ctx context.Context, id string) (map[string]any, error) {
	var record map[string]any
	if err := c.do(ctx, http.MethodGet, "/agents/"+id, nil, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateAgent patches an agent with the given fields.
func (c *Client) UpdateAgent(ctx context.Context, id string, fields map[string]any) error {
	return c.do(ctx, http.MethodPatch, "/agents/"+id, fields, nil)
}

// CreateAgent creates an agent and returns the record plus its id.
func (c *Client) CreateAgent(ctx context.Context, fields map[string]any) (map[string]any, string, error) {
	var record map[string]any
	if err := c.do(ctx, http.MethodPost, "/agents", fields, &record); err != nil {
		return nil, "", err
	}
	id := RecordID(record)
	if id == "" {
		return record, "", fmt.Errorf("agent created but no id in response")
	}
	return record, id, nil
}

func (c *Client) ListAgents(ctx context.Context) ([]map[string]any, error) {
	var records []map[string]any
	if err := c.do(ctx, http.MethodGet, "/agents", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) DeleteAgent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/agents/"+id, nil, nil)
}

// ListDeletedAgents returns agents sitting in the backend trash.
func (c *Client) ListDeletedAgents(ctx context.Context) ([]map[string]any, error) {
	var records []map[string]any
	if err := c.do(ctx, http.MethodGet, "/agents/deleted", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) RestoreAgent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/agents/"+id+"/restore", nil, nil)
}

// RecordID extracts a record's identifier. Backends have returned ids as
// "id" (string or number), "_id", and Mongo-style {"_id": {"$oid": ...}};
// checked in that order, empty values fall through. Returns "" when none
// is present. Session normalization and agent projection both build on it.
func RecordID(record map[string]any) string {
	switch id := record["id"].(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return fmt.Sprintf("%.0f", id)
	}
	switch id := record["_id"].(type) {
	case string:
		if id != "" {
			return id
		}
	case map[string]any:
		if oid, ok := id["$oid"].(string); ok && oid != "" {
			return oid
		}
	}
	return ""
}
