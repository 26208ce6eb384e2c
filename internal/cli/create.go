package cli

import (
	"context"
	"errors"
	"fmt"

	"agentic/internal/wizard"
)

// RunCreateWizard walks the interactive agent-creation flow and reports the
// outcome, including partial failures after the agent itself was created.
func RunCreateWizard(ctx context.Context, app *App) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}

	w := wizard.New(app.Client, app.Log)
	result, err := wizard.RunInteractive(ctx, w)
	if err != nil {
		if errors.Is(err, wizard.ErrCancelled) {
			fmt.Println("Cancelled")
			return nil
		}
		return err
	}

	fmt.Printf("Created agent %q\n", w.Form.Name)
	if result.Partial() {
		fmt.Println("Some steps did not complete:")
		for _, failure := range result.Failures() {
			fmt.Printf("  %s: %v\n", failure.Name, failure.Err)
		}
		fmt.Println("The agent itself was created; retry these from the agent settings.")
	}
	return nil
}
