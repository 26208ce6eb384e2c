package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"agentic/config"
	"agentic/internal/agentcfg"
	"agentic/internal/catalog"
)

// ListAgents prints the agent roster as a table.
func ListAgents(ctx context.Context, app *App) error {
	records, err := app.Client.ListAgents(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No agents yet. Run 'agentic create' to make one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPROVIDER\tMODEL\tTOOLS\tID")
	for _, record := range records {
		agent := agentcfg.Project(record)
		marker := ""
		if agent.Name == app.Settings.DefaultAgent || agent.ID == app.Settings.DefaultAgent {
			marker = " *"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%d\t%s\n",
			agent.Name, marker,
			catalog.ProviderName(agent.Provider),
			agent.Model,
			len(agent.Tools),
			agent.ID)
	}
	return w.Flush()
}

// ShowAgent prints one agent's full configuration.
func ShowAgent(ctx context.Context, app *App, ref string) error {
	agent, err := app.ResolveAgent(ctx, ref)
	if err != nil {
		return err
	}

	fmt.Printf("Name:        %s\n", agent.Name)
	if agent.Description != "" {
		fmt.Printf("Description: %s\n", agent.Description)
	}
	fmt.Printf("Provider:    %s\n", catalog.ProviderName(agent.Provider))
	fmt.Printf("Model:       %s\n", agent.Model)
	if agent.SystemPrompt != "" {
		fmt.Printf("Prompt:      %s\n", agent.SystemPrompt)
	}
	if len(agent.Tools) > 0 {
		fmt.Println("Tools:")
		for _, tool := range agent.Tools {
			fmt.Printf("  %s (%s)  %s\n", tool.Name, strings.ToLower(tool.ToolType), tool.ID)
		}
	}
	if len(agent.Documents) > 0 {
		fmt.Println("Documents:")
		for _, doc := range agent.Documents {
			fmt.Printf("  %s  %s\n", doc.Filename, doc.ID)
		}
	}
	return nil
}

// EditOptions carries the fields 'agent edit' can change. Empty fields
// keep the agent's current value.
type EditOptions struct {
	Name         string
	Description  string
	Provider     string
	Model        string
	SystemPrompt string
	APIKey       string
}

// EditAgent updates an agent's settings through the configuration store.
// A provider switch picks the new provider's default model unless one was
// given, and prompts for the provider's API key when none was passed.
func EditAgent(ctx context.Context, app *App, ref string, opts EditOptions) error {
	agent, err := app.ResolveAgent(ctx, ref)
	if err != nil {
		return err
	}

	store := agentcfg.NewStore(app.Client, app.Log)
	if err := store.Load(ctx, agent.ID); err != nil {
		return err
	}

	draft := store.NewDraft()
	if opts.Name != "" {
		draft.Name = opts.Name
	}
	if opts.Description != "" {
		draft.Description = opts.Description
	}
	if opts.Provider != "" {
		draft.Provider = catalog.Provider(opts.Provider)
	}
	if opts.Model != "" {
		draft.Model = opts.Model
	}
	if opts.SystemPrompt != "" {
		draft.SystemPrompt = opts.SystemPrompt
	}
	draft.APIKey = opts.APIKey

	providerChanged := draft.Provider != store.Agent().Provider
	if providerChanged && opts.Model == "" {
		draft.Model = catalog.DefaultModel(draft.Provider)
	}
	if !catalog.ValidModel(draft.Provider, draft.Model) {
		return fmt.Errorf("model %q is not available for %s", draft.Model, catalog.ProviderName(draft.Provider))
	}
	if providerChanged && strings.TrimSpace(draft.APIKey) == "" {
		key, err := ensureSecretInput("", fmt.Sprintf("%s API key: ", catalog.ProviderName(draft.Provider)))
		if err != nil {
			return err
		}
		draft.APIKey = key
	}

	if err := store.Save(ctx, draft); err != nil {
		return err
	}
	fmt.Printf("Updated agent %q\n", store.Agent().Name)
	return nil
}

// DeleteAgent moves an agent to the backend trash after confirmation.
func DeleteAgent(ctx context.Context, app *App, ref string, force bool) error {
	agent, err := app.ResolveAgent(ctx, ref)
	if err != nil {
		return err
	}

	if !force && !confirm(fmt.Sprintf("Delete agent %q? It can be restored with 'agentic agent restore'.", agent.Name)) {
		fmt.Println("Cancelled")
		return nil
	}

	if err := app.Client.DeleteAgent(ctx, agent.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted agent %q\n", agent.Name)
	return nil
}

// ListTrash prints agents sitting in the backend trash.
func ListTrash(ctx context.Context, app *App) error {
	records, err := app.Client.ListDeletedAgents(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("Trash is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODEL\tID")
	for _, record := range records {
		agent := agentcfg.Project(record)
		fmt.Fprintf(w, "%s\t%s\t%s\n", agent.Name, agent.Model, agent.ID)
	}
	return w.Flush()
}

// RestoreAgent brings an agent back from the trash.
func RestoreAgent(ctx context.Context, app *App, ref string) error {
	records, err := app.Client.ListDeletedAgents(ctx)
	if err != nil {
		return err
	}
	for _, record := range records {
		agent := agentcfg.Project(record)
		if agent.ID == ref || strings.EqualFold(agent.Name, ref) {
			if err := app.Client.RestoreAgent(ctx, agent.ID); err != nil {
				return err
			}
			fmt.Printf("Restored agent %q\n", agent.Name)
			return nil
		}
	}
	return fmt.Errorf("no deleted agent named %q", ref)
}

// SetDefaultAgent records the agent the chat view opens with.
func SetDefaultAgent(ctx context.Context, app *App, ref string) error {
	agent, err := app.ResolveAgent(ctx, ref)
	if err != nil {
		return err
	}
	app.Settings.DefaultAgent = agent.Name
	if err := config.SaveSettings(app.Settings); err != nil {
		return err
	}
	fmt.Printf("Default agent is now %q\n", agent.Name)
	return nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
