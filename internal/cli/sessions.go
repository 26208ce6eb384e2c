package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"agentic/internal/session"
	"agentic/internal/timeutil"
)

// ListSessions prints an agent's chat sessions, newest first.
func ListSessions(ctx context.Context, app *App, agentRef string) error {
	agent, err := app.ResolveAgent(ctx, agentRef)
	if err != nil {
		return err
	}

	raw, err := app.Client.ListSessions(ctx, agent.ID)
	if err != nil {
		return err
	}
	sessions := session.Normalize(raw)
	if len(sessions) == 0 {
		fmt.Println("No chats yet")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tCREATED\tID")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Title, timeutil.FormatRelativeTime(s.CreatedAt, now), s.ID)
	}
	return w.Flush()
}

// RenameSession sets a session's title.
func RenameSession(ctx context.Context, app *App, sessionID, title string) error {
	if title == "" {
		return session.ErrEmptyTitle
	}
	if err := app.Client.RenameSession(ctx, sessionID, title); err != nil {
		return err
	}
	fmt.Printf("Renamed session to %q\n", title)
	return nil
}

// DeleteSession removes a chat session.
func DeleteSession(ctx context.Context, app *App, sessionID string, force bool) error {
	if !force && !confirm("Delete this chat? Its history cannot be recovered.") {
		fmt.Println("Cancelled")
		return nil
	}
	if err := app.Client.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	fmt.Println("Deleted session")
	return nil
}
