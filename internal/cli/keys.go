package cli

import (
	"context"
	"fmt"
	"strings"
)

// SetKey replaces the stored credential for a provider on the backend. The
// value never touches local storage; an empty value is prompted for without
// echo.
func SetKey(ctx context.Context, app *App, provider, value string) error {
	provider = strings.TrimSpace(strings.ToLower(provider))
	if provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}

	value, err := ensureSecretInput(value, fmt.Sprintf("API key for %s: ", provider))
	if err != nil {
		return err
	}

	if err := app.Client.ReplaceKey(ctx, provider, value); err != nil {
		return err
	}
	fmt.Printf("Stored %s key on the backend\n", provider)
	return nil
}

// DeleteKey removes a provider credential from the backend.
func DeleteKey(ctx context.Context, app *App, provider string) error {
	provider = strings.TrimSpace(strings.ToLower(provider))
	if provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}
	if err := app.Client.DeleteKey(ctx, provider); err != nil {
		return err
	}
	fmt.Printf("Removed %s key from the backend\n", provider)
	return nil
}
