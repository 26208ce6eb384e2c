// Package cli implements the non-interactive subcommands: thin wrappers
// over the API client that print results for humans.
package cli

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"agentic/config"
	"agentic/internal/agentcfg"
	"agentic/internal/api"
	"agentic/internal/auth"
	"agentic/internal/logging"
)

// App bundles the pieces every subcommand needs: settings, logger, the API
// client, and the auth store. Built once per invocation.
type App struct {
	Settings *config.Settings
	Client   *api.Client
	Auth     *auth.Store
	Log      *zap.Logger
}

func NewApp() (*App, error) {
	if err := config.EnsureConfigExists(); err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}

	log := logging.New()

	client := api.NewClient(settings.BackendURL,
		api.WithLogger(log),
		api.WithTokenSource(func() string {
			token, err := auth.Token()
			if err != nil {
				return ""
			}
			return token
		}),
	)

	return &App{
		Settings: settings,
		Client:   client,
		Auth:     auth.NewStore(client, auth.Keyring{}, log),
		Log:      log,
	}, nil
}

// RequireAuth hydrates the auth store and fails when no valid session is
// available.
func (a *App) RequireAuth(ctx context.Context) error {
	if err := a.Auth.Hydrate(ctx); err != nil {
		return err
	}
	if !a.Auth.Authenticated() {
		return fmt.Errorf("not logged in; run 'agentic login' first")
	}
	return nil
}

// ResolveAgent maps a name or id to an agent id. An empty ref falls back to
// the configured default agent, then to the only agent when there is
// exactly one.
func (a *App) ResolveAgent(ctx context.Context, ref string) (agentcfg.Agent, error) {
	records, err := a.Client.ListAgents(ctx)
	if err != nil {
		return agentcfg.Agent{}, err
	}

	agents := make([]agentcfg.Agent, 0, len(records))
	for _, record := range records {
		agents = append(agents, agentcfg.Project(record))
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = a.Settings.DefaultAgent
	}
	if ref == "" {
		if len(agents) == 1 {
			return agents[0], nil
		}
		return agentcfg.Agent{}, fmt.Errorf("no agent specified; use --agent or set default_agent in config.yaml")
	}

	for _, agent := range agents {
		if agent.ID == ref || strings.EqualFold(agent.Name, ref) {
			return agent, nil
		}
	}
	return agentcfg.Agent{}, fmt.Errorf("no agent named %q", ref)
}
