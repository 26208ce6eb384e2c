package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"agentic/internal/auth"
)

// Login authenticates against the backend and stores the bearer token in
// the system keyring. An empty password is prompted for without echo.
func Login(ctx context.Context, app *App, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	password, err := ensureSecretInput(password, fmt.Sprintf("Password for %s: ", email))
	if err != nil {
		return err
	}

	if err := app.Auth.Login(ctx, email, password); err != nil {
		return err
	}

	user := app.Auth.User()
	if user != nil && user.Name != "" {
		fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Email)
	} else {
		fmt.Printf("Logged in as %s\n", email)
	}
	return nil
}

// Logout discards the stored token and in-memory session state. Checked
// up front so a run with nothing stored says so instead of pretending.
func Logout(app *App) error {
	has, err := auth.HasToken()
	if err != nil {
		return err
	}
	if !has {
		fmt.Println("Not logged in")
		return nil
	}
	app.Auth.Logout()
	fmt.Println("Logged out")
	return nil
}

// Whoami prints the authenticated user's profile.
func Whoami(ctx context.Context, app *App) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}
	user := app.Auth.User()
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	return nil
}

// DeleteAccount permanently removes the logged-in user's account on the
// backend, then clears local auth state.
func DeleteAccount(ctx context.Context, app *App, force bool) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}

	user := app.Auth.User()
	if !force && !confirm(fmt.Sprintf("Permanently delete the account %s and all its agents? This cannot be undone.", user.Email)) {
		fmt.Println("Cancelled")
		return nil
	}

	if err := app.Client.DeleteAccount(ctx); err != nil {
		return err
	}
	app.Auth.Logout()
	fmt.Println("Account deleted")
	return nil
}

func ensureSecretInput(raw, prompt string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		return trimmed, nil
	}

	fmt.Fprint(os.Stdout, prompt)
	bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stdout)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}

	trimmed = strings.TrimSpace(string(bytes))
	if trimmed == "" {
		return "", fmt.Errorf("value cannot be empty")
	}

	return trimmed, nil
}
