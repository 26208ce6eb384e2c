package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"

	"agentic/internal/catalog"
)

// ErrCancelled is returned when the user backs out of the wizard.
var ErrCancelled = errors.New("cancelled")

const (
	navContinue = "continue"
	navBack     = "back"
)

// RunInteractive walks the wizard's steps as huh forms and commits at the
// end. The controller owns all gating; the forms only collect input.
func RunInteractive(ctx context.Context, w *Wizard) (*CommitResult, error) {
	theme := createHuhTheme()

	for {
		nav, err := runStepForm(w, theme)
		if err != nil {
			return nil, ErrCancelled
		}

		if nav == navBack {
			w.Retreat()
			continue
		}

		if w.Step() == LastStep {
			break
		}

		if err := w.Advance(); err != nil {
			fmt.Println(errorStyle.Render(" " + err.Error()))
		}
	}

	var result *CommitResult
	var commitErr error
	spinnerStyle := lipgloss.NewStyle().MarginLeft(2).Foreground(accentColor)
	err := spinner.New().
		Title("Creating your agent...").
		Style(spinnerStyle).
		Action(func() {
			result, commitErr = w.Commit(ctx)
		}).
		Run()
	if err != nil {
		return nil, ErrCancelled
	}
	if commitErr != nil {
		return result, commitErr
	}
	return result, nil
}

func runStepForm(w *Wizard, theme *huh.Theme) (string, error) {
	nav := navContinue

	var fields []huh.Field
	switch w.Step() {
	case StepIdentity:
		fields = append(fields,
			huh.NewInput().
				Title("Agent name").
				Placeholder("Support Bot").
				Value(&w.Form.Name),
			huh.NewInput().
				Title("Description").
				Placeholder("What does this agent do?").
				Value(&w.Form.Description),
		)
	case StepModel:
		providerOpts := make([]huh.Option[string], 0, len(catalog.Providers()))
		for _, p := range catalog.Providers() {
			providerOpts = append(providerOpts, huh.NewOption(catalog.ProviderName(p), string(p)))
		}
		provider := string(w.Form.Provider)
		fields = append(fields,
			huh.NewSelect[string]().
				Title("Provider").
				Options(providerOpts...).
				Value(&provider),
		)
		// Run provider selection first so the model list matches.
		providerForm := newForm(theme, w.Step(), huh.NewGroup(fields...))
		if err := providerForm.Run(); err != nil {
			return "", err
		}
		if provider != string(w.Form.Provider) {
			w.Form.Provider = catalog.Provider(provider)
			w.Form.Model = catalog.DefaultModel(w.Form.Provider)
		}

		modelOpts := make([]huh.Option[string], 0, len(catalog.Models(w.Form.Provider)))
		for _, m := range catalog.Models(w.Form.Provider) {
			modelOpts = append(modelOpts, huh.NewOption(m.Label, m.Value))
		}
		fields = []huh.Field{
			huh.NewSelect[string]().
				Title("Model").
				Options(modelOpts...).
				Value(&w.Form.Model),
			huh.NewInput().
				Title(catalog.ProviderName(w.Form.Provider) + " API key").
				EchoMode(huh.EchoModePassword).
				Placeholder("sk-...").
				Value(&w.Form.APIKey),
		}
	case StepCapabilities:
		toolOpts := make([]huh.Option[string], 0, len(catalog.BuiltInTools()))
		for _, t := range catalog.BuiltInTools() {
			toolOpts = append(toolOpts, huh.NewOption(t.Label+" — "+t.Description, t.Name))
		}
		fields = append(fields,
			huh.NewMultiSelect[string]().
				Title("Built-in tools").
				Options(toolOpts...).
				Value(&w.Form.BuiltInTools),
		)
	case StepKnowledge:
		var paths string
		if len(w.Form.DocumentPaths) > 0 {
			paths = strings.Join(w.Form.DocumentPaths, ", ")
		}
		fields = append(fields,
			huh.NewInput().
				Title("Knowledge files").
				Description("Comma-separated paths, uploaded after creation. Leave empty to skip.").
				Value(&paths),
		)
		defer func() {
			w.Form.DocumentPaths = splitPaths(paths)
		}()
	case StepInstructions:
		fields = append(fields,
			huh.NewText().
				Title("System prompt").
				Placeholder("You are a helpful assistant that...").
				Value(&w.Form.SystemPrompt),
		)
	}

	if w.Step() > FirstStep {
		fields = append(fields,
			huh.NewSelect[string]().
				Title("").
				Options(
					huh.NewOption("Continue", navContinue),
					huh.NewOption("Back", navBack),
				).
				Value(&nav),
		)
	}

	form := newForm(theme, w.Step(), huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return "", err
	}

	// Tool key collection happens after the multiselect so only selected
	// tools prompt for credentials, then custom tools are drafted one at
	// a time.
	if w.Step() == StepCapabilities && nav == navContinue {
		if err := collectToolKeys(w, theme); err != nil {
			return "", err
		}
		if err := collectCustomTools(w, theme); err != nil {
			return "", err
		}
	}

	return nav, nil
}

func collectCustomTools(w *Wizard, theme *huh.Theme) error {
	for {
		add := false
		prompt := "Add a custom tool?"
		if len(w.Form.CustomTools) > 0 {
			prompt = fmt.Sprintf("Add another custom tool? (%d drafted)", len(w.Form.CustomTools))
		}
		confirm := newForm(theme, StepCapabilities, huh.NewGroup(
			huh.NewConfirm().Title(prompt).Value(&add),
		))
		if err := confirm.Run(); err != nil {
			return err
		}
		if !add {
			return nil
		}

		var name, description string
		code := DefaultToolCode
		editor := newForm(theme, StepCapabilities, huh.NewGroup(
			huh.NewInput().
				Title("Tool name").
				Placeholder("fetch_news").
				Value(&name),
			huh.NewInput().
				Title("Description").
				Placeholder("What does this tool do?").
				Value(&description),
			huh.NewText().
				Title("Code").
				Value(&code),
		))
		if err := editor.Run(); err != nil {
			return err
		}

		if err := w.AddCustomTool(name, description, code); err != nil {
			fmt.Println(errorStyle.Render(" " + err.Error()))
		}
	}
}

func collectToolKeys(w *Wizard, theme *huh.Theme) error {
	var fields []huh.Field
	if w.HasBuiltInTool("tavily_search") {
		fields = append(fields,
			huh.NewInput().
				Title("Tavily API key").
				EchoMode(huh.EchoModePassword).
				Value(&w.Form.TavilyAPIKey),
		)
	}
	if w.HasBuiltInTool("weather") {
		fields = append(fields,
			huh.NewInput().
				Title("Weather API key").
				EchoMode(huh.EchoModePassword).
				Value(&w.Form.WeatherAPIKey),
		)
	}
	if len(fields) == 0 {
		return nil
	}
	return newForm(theme, StepCapabilities, huh.NewGroup(fields...)).Run()
}

func newForm(theme *huh.Theme, step Step, group *huh.Group) *huh.Form {
	fmt.Println(headerStyle.Render(fmt.Sprintf(" Step %d of %d · %s", int(step), int(LastStep), step.Title())))
	return huh.NewForm(group).
		WithTheme(theme).
		WithWidth(80).
		WithShowHelp(false).
		WithShowErrors(true)
}

func splitPaths(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

var (
	accentColor = lipgloss.Color("#ff4d00")

	headerStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#bf5d47"))
)

func createHuhTheme() *huh.Theme {
	primary := accentColor
	fg := lipgloss.Color("#dddddd")
	fgMuted := lipgloss.Color("#7f7f7f")
	fgSubtle := lipgloss.Color("#888888")
	bg := lipgloss.Color("#101012")
	errColor := lipgloss.Color("#bf5d47")
	success := lipgloss.Color("#87bf47")

	theme := huh.ThemeBase16()

	base := lipgloss.NewStyle().Foreground(fg)

	theme.Focused.Base = base.MarginLeft(1)
	theme.Focused.Title = base.Foreground(primary).Bold(true)
	theme.Focused.Description = base.Foreground(fgMuted)
	theme.Focused.ErrorIndicator = base.Foreground(errColor)
	theme.Focused.ErrorMessage = base.Foreground(errColor)

	theme.Focused.SelectSelector = base.Foreground(primary).Bold(true)
	theme.Focused.MultiSelectSelector = base.Foreground(primary).Bold(true)
	theme.Focused.SelectedOption = base.Foreground(primary).Bold(true)
	theme.Focused.SelectedPrefix = base.Foreground(success).Bold(true).SetString("✓ ")
	theme.Focused.UnselectedOption = base
	theme.Focused.UnselectedPrefix = base.Foreground(fgMuted).SetString("> ")

	theme.Focused.FocusedButton = base.Background(primary).Foreground(bg).Bold(true).Padding(0, 2)
	theme.Focused.BlurredButton = base.Foreground(fgMuted).Padding(0).MarginLeft(1)

	theme.Focused.TextInput.Cursor = base.Foreground(primary)
	theme.Focused.TextInput.Placeholder = base.Foreground(fgSubtle)
	theme.Focused.TextInput.Prompt = base.Foreground(primary)

	theme.Blurred.Base = base
	theme.Blurred.Title = base.Foreground(fgMuted)
	theme.Blurred.Description = base.Foreground(fgMuted)
	theme.Blurred.TextInput.Placeholder = base.Foreground(fgSubtle)
	theme.Blurred.TextInput.Prompt = base.Foreground(fgMuted)

	theme.Form = base

	return theme
}
