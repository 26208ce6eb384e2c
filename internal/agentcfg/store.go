// Package agentcfg holds the editable agent configuration: projecting the
// backend's loosely-named record into one canonical shape, and flushing
// edits back through the key-rotation and patch sequence the backend
// expects.
package agentcfg

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"agentic/internal/api"
	"agentic/internal/catalog"
)

// ErrAuthenticationRequired is returned when the draft switches provider
// without supplying a credential for the new one. No request is issued.
var ErrAuthenticationRequired = errors.New("authentication required: switching providers requires a new API key")

// Agent is the canonical projection of a backend agent record.
type Agent struct {
	ID           string
	Name         string
	Description  string
	Provider     catalog.Provider
	Model        string
	SystemPrompt string
	Tools        []api.Tool
	Documents    []Document
}

type Document struct {
	ID       string
	Filename string
}

// HasBuiltInTool reports whether a built-in tool with the given catalog
// name is already attached. Custom tools with the same name don't count.
func (a Agent) HasBuiltInTool(name string) bool {
	for _, t := range a.Tools {
		if t.Name == name && t.ToolType == api.ToolTypeBuiltIn {
			return true
		}
	}
	return false
}

// Draft is the client-only working copy of an agent's settings. APIKey is
// credential material: memory only, cleared after a successful save, never
// written to durable storage.
type Draft struct {
	Name         string
	Description  string
	Provider     catalog.Provider
	Model        string
	SystemPrompt string
	APIKey       string
}

// Project maps a raw agent record into the canonical shape, tolerating the
// field-name variants different backend versions have used.
func Project(record map[string]any) Agent {
	agent := Agent{
		ID:           api.RecordID(record),
		Name:         stringField(record, "name", "agentName", "agent_name"),
		Description:  stringField(record, "description"),
		SystemPrompt: stringField(record, "systemPrompt", "system_prompt", "prompt"),
	}

	provider := stringField(record, "provider", "modelProvider", "model_provider")
	if provider == "" {
		provider = string(catalog.OpenAI)
	}
	agent.Provider = catalog.Provider(provider)

	agent.Model = modelField(record)
	if agent.Model == "" {
		agent.Model = catalog.DefaultModel(agent.Provider)
	}

	if rawTools, ok := record["tools"].([]any); ok {
		for _, rt := range rawTools {
			m, ok := rt.(map[string]any)
			if !ok {
				continue
			}
			agent.Tools = append(agent.Tools, api.Tool{
				ID:          api.RecordID(m),
				Name:        stringField(m, "name"),
				Description: stringField(m, "description"),
				ToolType:    stringField(m, "toolType", "tool_type"),
				Code:        stringField(m, "code"),
			})
		}
	}

	if rawDocs, ok := record["documents"].([]any); ok {
		for _, rd := range rawDocs {
			m, ok := rd.(map[string]any)
			if !ok {
				continue
			}
			agent.Documents = append(agent.Documents, Document{
				ID:       api.RecordID(m),
				Filename: stringField(m, "filename", "fileName", "name"),
			})
		}
	}

	return agent
}

func stringField(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := record[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// modelField handles the model arriving as a plain string, an alternate
// key, or an object carrying id/name.
func modelField(record map[string]any) string {
	switch v := record["model"].(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if s := stringField(v, "id", "name"); s != "" {
			return s
		}
	}
	return stringField(record, "modelName", "model_name")
}

// Backend is the slice of the API client the store needs.
type Backend interface {
	GetAgent(ctx context.Context, id string) (map[string]any, error)
	UpdateAgent(ctx context.Context, id string, fields map[string]any) error
	DeleteKey(ctx context.Context, provider string) error
	StoreKey(ctx context.Context, provider, key string) error
}

// Store is the agent-configuration state container for one agent.
type Store struct {
	backend Backend
	log     *zap.Logger
	agent   Agent
	loaded  bool
}

func NewStore(backend Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: backend, log: log}
}

// Load fetches and projects the agent record.
func (s *Store) Load(ctx context.Context, id string) error {
	record, err := s.backend.GetAgent(ctx, id)
	if err != nil {
		return err
	}
	s.agent = Project(record)
	if s.agent.ID == "" {
		s.agent.ID = id
	}
	s.loaded = true
	return nil
}

func (s *Store) Agent() Agent { return s.agent }

func (s *Store) Loaded() bool { return s.loaded }

// NewDraft seeds a draft from the loaded agent.
func (s *Store) NewDraft() Draft {
	return Draft{
		Name:         s.agent.Name,
		Description:  s.agent.Description,
		Provider:     s.agent.Provider,
		Model:        s.agent.Model,
		SystemPrompt: s.agent.SystemPrompt,
	}
}

// Save flushes a draft. Order matters: validation first (no network on a
// provider switch without a credential), then key rotation (best-effort
// deletes, absence of a prior key is expected), then the agent patch with
// every field-name variant, then a re-fetch to confirm applied state.
func (s *Store) Save(ctx context.Context, draft Draft) error {
	previousProvider := s.agent.Provider
	providerChanged := previousProvider != draft.Provider
	key := strings.TrimSpace(draft.APIKey)

	if providerChanged && key == "" {
		return ErrAuthenticationRequired
	}

	if key != "" {
		if providerChanged {
			_ = s.backend.DeleteKey(ctx, string(previousProvider))
		}
		_ = s.backend.DeleteKey(ctx, string(draft.Provider))
		if err := s.backend.StoreKey(ctx, string(draft.Provider), key); err != nil {
			return err
		}
	}

	fields := map[string]any{
		"name":           draft.Name,
		"agent_name":     draft.Name,
		"agentName":      draft.Name,
		"description":    draft.Description,
		"model_provider": string(draft.Provider),
		"provider":       string(draft.Provider),
		"modelProvider":  string(draft.Provider),
		"model_name":     draft.Model,
		"model":          draft.Model,
		"modelName":      draft.Model,
		"system_prompt":  draft.SystemPrompt,
		"systemPrompt":   draft.SystemPrompt,
		"prompt":         draft.SystemPrompt,
	}
	if err := s.backend.UpdateAgent(ctx, s.agent.ID, fields); err != nil {
		return err
	}

	if err := s.Load(ctx, s.agent.ID); err != nil {
		s.log.Warn("re-fetch after save failed", zap.String("agent", s.agent.ID), zap.Error(err))
	}
	return nil
}
