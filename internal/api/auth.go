package api

import (
	"context"
	"encoding/json"
	"net/http"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", payload, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// Profile fetches the authenticated user. The record arrives either under
// a "user" key or as the bare object.
func (c *Client) Profile(ctx context.Context) (User, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/auth/profile", nil)
	if err != nil {
		return User{}, err
	}

	var wrapped struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return *wrapped.User, nil
	}

	var bare User
	if err := json.Unmarshal(raw, &bare); err != nil {
		return User{}, err
	}
	return bare, nil
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/auth/account", nil, nil)
}
