// Package wizard drives the agent-creation flow: a linear five-step form
// with per-step gates, and a commit pipeline that provisions credentials,
// creates the agent, and attaches capabilities in dependency order.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"agentic/internal/api"
	"agentic/internal/catalog"
)

type Step int

const (
	StepIdentity Step = iota + 1
	StepModel
	StepCapabilities
	StepKnowledge
	StepInstructions
)

const (
	FirstStep = StepIdentity
	LastStep  = StepInstructions
)

func (s Step) Title() string {
	switch s {
	case StepIdentity:
		return "Identity"
	case StepModel:
		return "Model"
	case StepCapabilities:
		return "Capabilities"
	case StepKnowledge:
		return "Knowledge"
	case StepInstructions:
		return "Instructions"
	}
	return fmt.Sprintf("Step %d", int(s))
}

var (
	ErrNameRequired   = errors.New("please enter a name for your agent")
	ErrModelRequired  = errors.New("please select an AI model to power your agent")
	ErrKeyRequired    = errors.New("please provide a provider API key to proceed")
	ErrToolIncomplete = errors.New("custom tools need a name and code")
)

// CustomTool is a user-authored tool drafted in the wizard.
type CustomTool struct {
	Name        string
	Description string
	Code        string
}

// DefaultToolCode seeds the custom tool editor.
const DefaultToolCode = "async function tool(input) {\n  return \"result\";\n}"

// Form accumulates the draft across steps. The *APIKey fields are
// credential material: memory only, never persisted.
type Form struct {
	Name          string
	Description   string
	Provider      catalog.Provider
	Model         string
	SystemPrompt  string
	APIKey        string
	TavilyAPIKey  string
	WeatherAPIKey string
	BuiltInTools  []string
	CustomTools   []CustomTool
	DocumentPaths []string
}

// Backend is the slice of the API client the commit pipeline drives.
type Backend interface {
	DeleteKey(ctx context.Context, provider string) error
	StoreKey(ctx context.Context, provider, key string) error
	CreateAgent(ctx context.Context, fields map[string]any) (map[string]any, string, error)
	AttachBuiltInTool(ctx context.Context, agentID, name string) error
	CreateCustomTool(ctx context.Context, agentID, name, description, code string) error
	UploadDocuments(ctx context.Context, agentID string, files []api.DocumentFile) error
}

// Wizard is the step controller.
type Wizard struct {
	backend Backend
	log     *zap.Logger
	step    Step
	Form    Form
}

func New(backend Backend, log *zap.Logger) *Wizard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Wizard{
		backend: backend,
		log:     log,
		step:    FirstStep,
		Form: Form{
			Provider: catalog.OpenAI,
			Model:    catalog.DefaultModel(catalog.OpenAI),
		},
	}
}

func (w *Wizard) Step() Step { return w.step }

// Advance moves forward one step if the current step's gate passes.
// Steps 3-5 have no gate.
func (w *Wizard) Advance() error {
	switch w.step {
	case StepIdentity:
		if strings.TrimSpace(w.Form.Name) == "" {
			return ErrNameRequired
		}
	case StepModel:
		if w.Form.Model == "" {
			return ErrModelRequired
		}
		if strings.TrimSpace(w.Form.APIKey) == "" {
			return ErrKeyRequired
		}
	}
	if w.step < LastStep {
		w.step++
	}
	return nil
}

// Retreat moves back one step; always allowed except from the first.
func (w *Wizard) Retreat() {
	if w.step > FirstStep {
		w.step--
	}
}

// ToggleBuiltInTool adds or removes a built-in tool selection.
func (w *Wizard) ToggleBuiltInTool(name string) {
	for i, t := range w.Form.BuiltInTools {
		if t == name {
			w.Form.BuiltInTools = append(w.Form.BuiltInTools[:i], w.Form.BuiltInTools[i+1:]...)
			return
		}
	}
	w.Form.BuiltInTools = append(w.Form.BuiltInTools, name)
}

func (w *Wizard) HasBuiltInTool(name string) bool {
	for _, t := range w.Form.BuiltInTools {
		if t == name {
			return true
		}
	}
	return false
}

// AddCustomTool drafts a user-authored tool for the capabilities step. A
// tool already drafted under the same name is replaced.
func (w *Wizard) AddCustomTool(name, description, code string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(code) == "" {
		return ErrToolIncomplete
	}
	tool := CustomTool{Name: name, Description: strings.TrimSpace(description), Code: code}
	for i, existing := range w.Form.CustomTools {
		if existing.Name == name {
			w.Form.CustomTools[i] = tool
			return nil
		}
	}
	w.Form.CustomTools = append(w.Form.CustomTools, tool)
	return nil
}

// StepResult is one commit pipeline step's outcome.
type StepResult struct {
	Name  string
	Err   error
	Fatal bool
}

// CommitResult aggregates the pipeline outcome. A fatal failure also comes
// back as Commit's error; non-fatal failures only appear here.
type CommitResult struct {
	AgentID string
	Steps   []StepResult
}

// Partial reports whether the agent was created but some non-fatal step
// failed (tool attachment, document upload).
func (r *CommitResult) Partial() bool {
	if r.AgentID == "" {
		return false
	}
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Failures lists the failed steps.
func (r *CommitResult) Failures() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Commit re-validates every gated field plus the system prompt, then runs
// the pipeline in dependency order: credentials, agent creation, built-in
// tools, custom tools, documents. Everything before and including agent
// creation is fatal; everything after is best-effort and aggregated into
// the result. No dependent call is attempted when agent creation fails.
func (w *Wizard) Commit(ctx context.Context) (*CommitResult, error) {
	if err := w.validateAll(); err != nil {
		return nil, err
	}

	result := &CommitResult{}
	form := w.Form

	// Credential provisioning, delete-then-insert per provider. A failure
	// here aborts: an agent without working credentials is useless.
	keys := []struct {
		provider string
		key      string
		wanted   bool
	}{
		{string(form.Provider), form.APIKey, true},
		{"tavily", form.TavilyAPIKey, w.HasBuiltInTool("tavily_search")},
		{"weather", form.WeatherAPIKey, w.HasBuiltInTool("weather")},
	}
	for _, k := range keys {
		if !k.wanted || strings.TrimSpace(k.key) == "" {
			continue
		}
		_ = w.backend.DeleteKey(ctx, k.provider)
		if err := w.backend.StoreKey(ctx, k.provider, k.key); err != nil {
			result.Steps = append(result.Steps, StepResult{Name: "store " + k.provider + " key", Err: err, Fatal: true})
			return result, err
		}
		result.Steps = append(result.Steps, StepResult{Name: "store " + k.provider + " key"})
	}

	_, agentID, err := w.backend.CreateAgent(ctx, map[string]any{
		"name":          form.Name,
		"agentName":     form.Name,
		"description":   form.Description,
		"provider":      string(form.Provider),
		"modelProvider": string(form.Provider),
		"model":         form.Model,
		"modelName":     form.Model,
		"prompt":        form.SystemPrompt,
		"systemPrompt":  form.SystemPrompt,
	})
	if err != nil {
		result.Steps = append(result.Steps, StepResult{Name: "create agent", Err: err, Fatal: true})
		return result, err
	}
	result.AgentID = agentID
	result.Steps = append(result.Steps, StepResult{Name: "create agent"})

	// Dependent attachments are best-effort per item.
	for _, toolName := range form.BuiltInTools {
		err := w.backend.AttachBuiltInTool(ctx, agentID, toolName)
		if err != nil {
			w.log.Warn("attach built-in tool failed", zap.String("tool", toolName), zap.Error(err))
		}
		result.Steps = append(result.Steps, StepResult{Name: "attach tool " + toolName, Err: err})
	}

	for _, tool := range form.CustomTools {
		err := w.backend.CreateCustomTool(ctx, agentID, tool.Name, tool.Description, tool.Code)
		if err != nil {
			w.log.Warn("create custom tool failed", zap.String("tool", tool.Name), zap.Error(err))
		}
		result.Steps = append(result.Steps, StepResult{Name: "create tool " + tool.Name, Err: err})
	}

	if len(form.DocumentPaths) > 0 {
		err := w.uploadDocuments(ctx, agentID, form.DocumentPaths)
		if err != nil {
			w.log.Warn("document upload failed", zap.Error(err))
		}
		result.Steps = append(result.Steps, StepResult{Name: "upload documents", Err: err})
	}

	// Credentials served their purpose; drop them from memory.
	w.Form.APIKey = ""
	w.Form.TavilyAPIKey = ""
	w.Form.WeatherAPIKey = ""

	return result, nil
}

func (w *Wizard) validateAll() error {
	var missing []string
	if strings.TrimSpace(w.Form.Name) == "" {
		missing = append(missing, "Agent Name")
	}
	if w.Form.Model == "" {
		missing = append(missing, "Model")
	}
	if strings.TrimSpace(w.Form.APIKey) == "" {
		missing = append(missing, "API Key")
	}
	if strings.TrimSpace(w.Form.SystemPrompt) == "" {
		missing = append(missing, "System Prompt")
	}
	if len(missing) > 0 {
		return fmt.Errorf("please fill in all required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// uploadDocuments opens the selected files and sends them as one batched
// multipart request.
func (w *Wizard) uploadDocuments(ctx context.Context, agentID string, paths []string) error {
	var files []api.DocumentFile
	var closers []func() error
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	for _, path := range paths {
		file, closeFn, err := api.OpenDocumentFile(path)
		if err != nil {
			return err
		}
		closers = append(closers, closeFn)
		files = append(files, file)
	}

	return w.backend.UploadDocuments(ctx, agentID, files)
}
