package api

import (
	"context"
	"net/http"
)

const (
	ToolTypeBuiltIn = "BUILT_IN"
	ToolTypeCustom  = "CUSTOM"
)

// Tool is a capability attached to an agent, built-in or custom.
type Tool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ToolType    string `json:"toolType"`
	Code        string `json:"code"`
}

func (c *Client) AttachBuiltInTool(ctx context.Context, agentID, name string) error {
	payload := map[string]any{
		"agentId":  agentID,
		"toolType": ToolTypeBuiltIn,
		"name":     name,
	}
	return c.do(ctx, http.MethodPost, "/tools", payload, nil)
}

func (c *Client) CreateCustomTool(ctx context.Context, agentID, name, description, code string) error {
	payload := map[string]any{
		"agentId":     agentID,
		"toolType":    ToolTypeCustom,
		"name":        name,
		"description": description,
		"code":        code,
	}
	return c.do(ctx, http.MethodPost, "/tools", payload, nil)
}

func (c *Client) UpdateCustomTool(ctx context.Context, toolID, name, description, code string) error {
	payload := map[string]any{
		"name":        name,
		"description": description,
		"code":        code,
	}
	return c.do(ctx, http.MethodPatch, "/tools/"+toolID, payload, nil)
}

func (c *Client) RemoveTool(ctx context.Context, toolID string) error {
	return c.do(ctx, http.MethodDelete, "/tools/"+toolID, nil, nil)
}

// TestTool runs tool code against a sample input in the backend sandbox.
// The output is opaque; it is surfaced verbatim, success or failure.
func (c *Client) TestTool(ctx context.Context, code string, input map[string]any) (string, error) {
	if input == nil {
		input = map[string]any{}
	}
	payload := map[string]any{
		"code":  code,
		"input": input,
	}
	raw, err := c.doRaw(ctx, http.MethodPost, "/tools/test", payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
