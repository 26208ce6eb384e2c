package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"agentic/internal/cli"
	"agentic/version"
)

func newApp() *cli.App {
	app, err := cli.NewApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return app
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:   "agentic",
	Short: "Agentic AI",
	Long:  "Chat with your Agentic AI agents from the terminal.",
	Run: func(cmd *cobra.Command, args []string) {
		agentRef, _ := cmd.Flags().GetString("agent")
		app := newApp()
		if err := cli.RunChat(context.Background(), app, agentRef); err != nil {
			fail(err)
		}
	},
}

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in and store the access token in the system keyring",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		email := ""
		if len(args) > 0 {
			email = args[0]
		}
		if email == "" {
			fmt.Print("Email: ")
			fmt.Scanln(&email)
		}
		password, _ := cmd.Flags().GetString("password")
		app := newApp()
		if err := cli.Login(context.Background(), app, email, password); err != nil {
			fail(err)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored access token",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		if err := cli.Logout(app); err != nil {
			fail(err)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		if err := cli.Whoami(context.Background(), app); err != nil {
			fail(err)
		}
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage your account",
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Permanently delete your account and everything in it",
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		app := newApp()
		if err := cli.DeleteAccount(context.Background(), app, force); err != nil {
			fail(err)
		}
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new agent with the step-by-step wizard",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		if err := cli.RunCreateWizard(context.Background(), app); err != nil {
			fail(err)
		}
	},
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage agents",
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your agents",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		mustAuth(app)
		if err := cli.ListAgents(context.Background(), app); err != nil {
			fail(err)
		}
	},
}

var agentShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show an agent's configuration",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		mustAuth(app)
		if err := cli.ShowAgent(context.Background(), app, argOrEmpty(args)); err != nil {
			fail(err)
		}
	},
}

var agentEditCmd = &cobra.Command{
	Use:   "edit [name]",
	Short: "Update an agent's settings",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.EditOptions{}
		opts.Name, _ = cmd.Flags().GetString("name")
		opts.Description, _ = cmd.Flags().GetString("description")
		opts.Provider, _ = cmd.Flags().GetString("provider")
		opts.Model, _ = cmd.Flags().GetString("model")
		opts.SystemPrompt, _ = cmd.Flags().GetString("prompt")
		opts.APIKey, _ = cmd.Flags().GetString("key")
		app := newApp()
		mustAuth(app)
		if err := cli.EditAgent(context.Background(), app, argOrEmpty(args), opts); err != nil {
			fail(err)
		}
	},
}

var agentDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Move an agent to the trash",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		app := newApp()
		mustAuth(app)
		if err := cli.DeleteAgent(context.Background(), app, args[0], force); err != nil {
			fail(err)
		}
	},
}

var agentTrashCmd = &cobra.Command{
	Use:   "trash",
	Short: "List deleted agents",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		mustAuth(app)
		if err := cli.ListTrash(context.Background(), app); err != nil {
			fail(err)
		}
	},
}

var agentRestoreCmd = &cobra.Command{
	Use:   "restore [name]",
	Short: "Restore an agent from the trash",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		mustAuth(app)
		if err := cli.RestoreAgent(context.Background(), app, args[0]); err != nil {
			fail(err)
		}
	},
}

var agentDefaultCmd = &cobra.Command{
	Use:   "default [name]",
	Short: "Set the agent the chat view opens with",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		mustAuth(app)
		if err := cli.SetDefaultAgent(context.Background(), app, args[0]); err != nil {
			fail(err)
		}
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chat sessions, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		agentRef, _ := cmd.Flags().GetString("agent")
		app := newApp()
		mustAuth(app)
		if err := cli.ListSessions(context.Background(), app, agentRef); err != nil {
			fail(err)
		}
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename [session-id] [title]",
	Short: "Rename a chat session",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		mustAuth(app)
		title := strings.Join(args[1:], " ")
		if err := cli.RenameSession(context.Background(), app, args[0], title); err != nil {
			fail(err)
		}
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete a chat session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		app := newApp()
		mustAuth(app)
		if err := cli.DeleteSession(context.Background(), app, args[0], force); err != nil {
			fail(err)
		}
	},
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage provider API keys stored on the backend",
}

var keySetCmd = &cobra.Command{
	Use:   "set [provider] [value]",
	Short: "Store or replace a provider API key",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		value := ""
		if len(args) > 1 {
			value = args[1]
		}
		app := newApp()
		mustAuth(app)
		if err := cli.SetKey(context.Background(), app, args[0], value); err != nil {
			fail(err)
		}
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete [provider]",
	Short: "Remove a provider API key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp()
		mustAuth(app)
		if err := cli.DeleteKey(context.Background(), app, args[0]); err != nil {
			fail(err)
		}
	},
}

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Manage agent tools",
}

var toolAddCmd = &cobra.Command{
	Use:   "add [tool-name]",
	Short: "Activate a built-in tool (prompts for its API key when needed)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		agentRef, _ := cmd.Flags().GetString("agent")
		key, _ := cmd.Flags().GetString("key")
		app := newApp()
		mustAuth(app)
		if err := cli.ActivateTool(context.Background(), app, agentRef, args[0], key); err != nil {
			fail(err)
		}
	},
}

var toolRemoveCmd = &cobra.Command{
	Use:   "remove [tool-name]",
	Short: "Detach a tool from an agent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		agentRef, _ := cmd.Flags().GetString("agent")
		app := newApp()
		mustAuth(app)
		if err := cli.RemoveTool(context.Background(), app, agentRef, args[0]); err != nil {
			fail(err)
		}
	},
}

var toolCustomCmd = &cobra.Command{
	Use:   "custom [name] [code-file]",
	Short: "Create or update a custom tool from a code file",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		agentRef, _ := cmd.Flags().GetString("agent")
		description, _ := cmd.Flags().GetString("description")
		app := newApp()
		mustAuth(app)
		if err := cli.AddCustomTool(context.Background(), app, agentRef, args[0], description, args[1]); err != nil {
			fail(err)
		}
	},
}

var toolTestCmd = &cobra.Command{
	Use:   "test [code-file]",
	Short: "Run tool code against a sample input in the backend sandbox",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		app := newApp()
		mustAuth(app)
		if err := cli.TestTool(context.Background(), app, args[0], input); err != nil {
			fail(err)
		}
	},
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage agent knowledge files",
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload knowledge files to an agent",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		agentRef, _ := cmd.Flags().GetString("agent")
		app := newApp()
		mustAuth(app)
		if err := cli.UploadDocuments(context.Background(), app, agentRef, args); err != nil {
			fail(err)
		}
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [filename]",
	Short: "Remove a knowledge file from an agent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		agentRef, _ := cmd.Flags().GetString("agent")
		app := newApp()
		mustAuth(app)
		if err := cli.DeleteDocument(context.Background(), app, agentRef, args[0]); err != nil {
			fail(err)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("agentic version %s\n", version.Get())
	},
}

func mustAuth(app *cli.App) {
	if err := app.RequireAuth(context.Background()); err != nil {
		fail(err)
	}
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().String("agent", "", "Agent to chat with (defaults to default_agent from config)")
	loginCmd.Flags().String("password", "", "Password (prompted without echo when omitted)")
	accountDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")
	agentEditCmd.Flags().String("name", "", "New agent name")
	agentEditCmd.Flags().String("description", "", "New description")
	agentEditCmd.Flags().String("provider", "", "New model provider (openai, gemini, anthropic, deepseek)")
	agentEditCmd.Flags().String("model", "", "New model (must belong to the provider)")
	agentEditCmd.Flags().String("prompt", "", "New system prompt")
	agentEditCmd.Flags().String("key", "", "Provider API key (prompted without echo on a provider switch)")
	agentDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")
	sessionsListCmd.Flags().String("agent", "", "Agent whose sessions to list")
	sessionsDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")
	toolAddCmd.Flags().String("agent", "", "Agent to attach the tool to")
	toolAddCmd.Flags().String("key", "", "Tool API key (prompted without echo when omitted)")
	toolRemoveCmd.Flags().String("agent", "", "Agent to detach the tool from")
	toolCustomCmd.Flags().String("agent", "", "Agent the tool belongs to")
	toolCustomCmd.Flags().StringP("description", "d", "", "What the tool does")
	toolTestCmd.Flags().String("input", "", "JSON object passed to the tool as input")
	docsUploadCmd.Flags().String("agent", "", "Agent to upload files to")
	docsDeleteCmd.Flags().String("agent", "", "Agent to remove the file from")

	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentShowCmd)
	agentCmd.AddCommand(agentEditCmd)
	agentCmd.AddCommand(agentDeleteCmd)
	agentCmd.AddCommand(agentTrashCmd)
	agentCmd.AddCommand(agentRestoreCmd)
	agentCmd.AddCommand(agentDefaultCmd)

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyDeleteCmd)

	toolCmd.AddCommand(toolAddCmd)
	toolCmd.AddCommand(toolRemoveCmd)
	toolCmd.AddCommand(toolCustomCmd)
	toolCmd.AddCommand(toolTestCmd)

	docsCmd.AddCommand(docsUploadCmd)
	docsCmd.AddCommand(docsDeleteCmd)

	accountCmd.AddCommand(accountDeleteCmd)

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
