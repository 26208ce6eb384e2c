package cli

import (
	"context"
	"fmt"

	"agentic/config"
	"agentic/internal/history"
	"agentic/internal/session"
	"agentic/internal/tui"
)

// RunChat opens the interactive chat view for an agent. The local sqlite
// cache is best-effort: when it can't be opened the view runs without a
// fallback store.
func RunChat(ctx context.Context, app *App, agentRef string) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}

	agent, err := app.ResolveAgent(ctx, agentRef)
	if err != nil {
		return err
	}

	opts := []session.ControllerOption{session.WithLogger(app.Log)}
	if dbPath, err := config.GetDatabasePath(); err == nil {
		if cache, err := history.Open(dbPath); err == nil {
			defer cache.Close()
			opts = append(opts, session.WithCache(cache))
		} else {
			app.Log.Warn("chat cache unavailable: " + err.Error())
		}
	}

	ctrl := session.NewController(app.Client, agent.ID, agent.Name, opts...)
	if err := ctrl.Init(ctx); err != nil {
		// Degraded start: the sidebar may be stale or empty but the user
		// can still chat.
		fmt.Println("Warning: could not load chat history; starting fresh")
	}

	return tui.Start(ctx, ctrl, app.Settings)
}
