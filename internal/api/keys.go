package api

import (
	"context"
	"net/http"
)

func (c *Client) StoreKey(ctx context.Context, provider, key string) error {
	payload := map[string]string{
		"provider": provider,
		"key":      key,
	}
	return c.do(ctx, http.MethodPost, "/keys", payload, nil)
}

func (c *Client) DeleteKey(ctx context.Context, provider string) error {
	return c.do(ctx, http.MethodDelete, "/keys/"+provider, nil, nil)
}

// ReplaceKey removes any stored credential for provider and stores the new
// one. The delete is best-effort: a key that was never stored is not an
// error condition.
func (c *Client) ReplaceKey(ctx context.Context, provider, key string) error {
	_ = c.DeleteKey(ctx, provider)
	return c.StoreKey(ctx, provider, key)
}
