// Package auth holds the client's authentication state: the bearer token
// in the system keyring and the hydrated user profile in memory.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "agentic"
	tokenName   = "AGENTIC_API_TOKEN"
)

// ErrNoToken indicates no bearer token is stored.
var ErrNoToken = errors.New("no stored token")

// Token retrieves the bearer token from the system keyring.
func Token() (string, error) {
	token, err := keyring.Get(serviceName, tokenName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

func SetToken(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if err := keyring.Set(serviceName, tokenName, trimmed); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func DeleteToken() error {
	if err := keyring.Delete(serviceName, tokenName); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNoToken
		}
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// HasToken reports whether a bearer token is stored.
func HasToken() (bool, error) {
	_, err := Token()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNoToken) {
		return false, nil
	}
	return false, err
}
