package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"agentic/internal/agentcfg"
	"agentic/internal/api"
	"agentic/internal/catalog"
)

// ActivateTool attaches a built-in tool to an agent, collecting the tool's
// API key when the catalog says it needs one and none was given.
func ActivateTool(ctx context.Context, app *App, agentRef, toolName, key string) error {
	tool, ok := catalog.LookupBuiltIn(toolName)
	if !ok {
		return fmt.Errorf("unknown tool %q; available: %s", toolName, builtInNames())
	}

	agent, err := app.ResolveAgent(ctx, agentRef)
	if err != nil {
		return err
	}

	store := agentcfg.NewStore(app.Client, app.Log)
	if err := store.Load(ctx, agent.ID); err != nil {
		return err
	}
	provisioner := agentcfg.NewProvisioner(app.Client, store, app.Log)

	result, err := provisioner.ActivateBuiltIn(ctx, toolName, key)
	if err != nil {
		return err
	}
	if result.NeedsKey {
		key, err = ensureSecretInput("", fmt.Sprintf("API key for %s: ", tool.KeyProvider))
		if err != nil {
			return err
		}
		result, err = provisioner.ActivateBuiltIn(ctx, toolName, key)
		if err != nil {
			return err
		}
	}

	switch {
	case result.AlreadyActive && result.KeyUpdated:
		fmt.Printf("%s was already active; key updated\n", tool.Label)
	case result.AlreadyActive:
		fmt.Printf("%s is already active\n", tool.Label)
	default:
		fmt.Printf("Activated %s\n", tool.Label)
	}
	return nil
}

// RemoveTool detaches a tool from an agent by name or id.
func RemoveTool(ctx context.Context, app *App, agentRef, toolRef string) error {
	agent, err := app.ResolveAgent(ctx, agentRef)
	if err != nil {
		return err
	}

	for _, tool := range agent.Tools {
		if tool.ID == toolRef || strings.EqualFold(tool.Name, toolRef) {
			store := agentcfg.NewStore(app.Client, app.Log)
			if err := store.Load(ctx, agent.ID); err != nil {
				return err
			}
			provisioner := agentcfg.NewProvisioner(app.Client, store, app.Log)
			if err := provisioner.Remove(ctx, tool.ID); err != nil {
				return err
			}
			fmt.Printf("Removed tool %q\n", tool.Name)
			return nil
		}
	}
	return fmt.Errorf("agent %q has no tool %q", agent.Name, toolRef)
}

// AddCustomTool creates or updates a custom tool from a code file.
func AddCustomTool(ctx context.Context, app *App, agentRef, name, description, codePath string) error {
	agent, err := app.ResolveAgent(ctx, agentRef)
	if err != nil {
		return err
	}

	code, err := readToolCode(codePath)
	if err != nil {
		return err
	}

	store := agentcfg.NewStore(app.Client, app.Log)
	if err := store.Load(ctx, agent.ID); err != nil {
		return err
	}
	provisioner := agentcfg.NewProvisioner(app.Client, store, app.Log)

	// Same name means update in place.
	toolID := ""
	for _, tool := range store.Agent().Tools {
		if strings.EqualFold(tool.Name, name) && tool.ToolType == api.ToolTypeCustom {
			toolID = tool.ID
			break
		}
	}

	if err := provisioner.SaveCustom(ctx, toolID, name, description, code); err != nil {
		return err
	}
	if toolID != "" {
		fmt.Printf("Updated tool %q\n", name)
	} else {
		fmt.Printf("Created tool %q\n", name)
	}
	return nil
}

// TestTool runs tool code against a sample JSON input in the backend
// sandbox and prints the output verbatim.
func TestTool(ctx context.Context, app *App, codePath, inputJSON string) error {
	code, err := readToolCode(codePath)
	if err != nil {
		return err
	}

	input := map[string]any{}
	if strings.TrimSpace(inputJSON) != "" {
		if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
			return fmt.Errorf("invalid input JSON: %w", err)
		}
	}

	output, err := app.Client.TestTool(ctx, code, input)
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

func readToolCode(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read tool code: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("tool code file is empty")
	}
	return string(data), nil
}

func builtInNames() string {
	var names []string
	for _, tool := range catalog.BuiltInTools() {
		names = append(names, tool.Name)
	}
	return strings.Join(names, ", ")
}
