package agentcfg

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"agentic/internal/catalog"
)

// ErrMissingToolFields rejects a custom tool without a name and description.
var ErrMissingToolFields = errors.New("a custom tool needs both a name and a description")

// ProvisionState is the per-activation state of the tool flow.
type ProvisionState int

const (
	StateIdle ProvisionState = iota
	StateAwaitingKey
	StateProvisioning
	StateActive
)

// ActivationResult reports how an activation attempt resolved.
type ActivationResult struct {
	// NeedsKey means the flow stopped to collect a credential; call
	// Activate again with the key.
	NeedsKey bool
	// AlreadyActive means the built-in tool was attached before this call;
	// no attachment request was issued (the key, if given, was rotated).
	AlreadyActive bool
	KeyUpdated    bool
}

// ToolBackend is the slice of the API client the provisioner needs.
type ToolBackend interface {
	DeleteKey(ctx context.Context, provider string) error
	StoreKey(ctx context.Context, provider, key string) error
	AttachBuiltInTool(ctx context.Context, agentID, name string) error
	CreateCustomTool(ctx context.Context, agentID, name, description, code string) error
	UpdateCustomTool(ctx context.Context, toolID, name, description, code string) error
	RemoveTool(ctx context.Context, toolID string) error
	TestTool(ctx context.Context, code string, input map[string]any) (string, error)
}

// Provisioner orchestrates tool activation for a loaded agent: conditional
// key collection, the delete-then-insert credential rotation, and
// duplicate-safe attachment.
type Provisioner struct {
	backend ToolBackend
	store   *Store
	log     *zap.Logger
	state   ProvisionState
}

func NewProvisioner(backend ToolBackend, store *Store, log *zap.Logger) *Provisioner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provisioner{backend: backend, store: store, log: log}
}

func (p *Provisioner) State() ProvisionState { return p.state }

// ActivateBuiltIn runs the activation flow for a catalog tool. Tools that
// need a credential stop at AwaitingKey on the first call when none is
// given; the caller collects the key and calls again. A tool already
// attached under the same built-in name is not attached twice — with a key
// supplied the call degrades to a pure key rotation.
func (p *Provisioner) ActivateBuiltIn(ctx context.Context, toolName, key string) (ActivationResult, error) {
	tool, ok := catalog.LookupBuiltIn(toolName)
	if !ok {
		return ActivationResult{}, errors.New("unknown tool: " + toolName)
	}

	key = strings.TrimSpace(key)
	if tool.KeyProvider != "" && key == "" && p.state != StateAwaitingKey {
		p.state = StateAwaitingKey
		return ActivationResult{NeedsKey: true}, nil
	}

	p.state = StateProvisioning
	result := ActivationResult{}

	if key != "" && tool.KeyProvider != "" {
		_ = p.backend.DeleteKey(ctx, tool.KeyProvider)
		if err := p.backend.StoreKey(ctx, tool.KeyProvider, key); err != nil {
			p.state = StateIdle
			return ActivationResult{}, err
		}
		result.KeyUpdated = true
	}

	result.AlreadyActive = p.store.Agent().HasBuiltInTool(toolName)
	if !result.AlreadyActive {
		if err := p.backend.AttachBuiltInTool(ctx, p.store.Agent().ID, toolName); err != nil {
			p.state = StateIdle
			return ActivationResult{}, err
		}
	}

	p.refresh(ctx)
	p.state = StateActive
	return result, nil
}

// Remove detaches a tool by id and refreshes the agent record.
func (p *Provisioner) Remove(ctx context.Context, toolID string) error {
	if err := p.backend.RemoveTool(ctx, toolID); err != nil {
		return err
	}
	p.refresh(ctx)
	return nil
}

// SaveCustom creates a custom tool, or updates it when toolID is set.
// Create and update share the same validation.
func (p *Provisioner) SaveCustom(ctx context.Context, toolID, name, description, code string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(description) == "" {
		return ErrMissingToolFields
	}

	var err error
	if toolID != "" {
		err = p.backend.UpdateCustomTool(ctx, toolID, name, description, code)
	} else {
		err = p.backend.CreateCustomTool(ctx, p.store.Agent().ID, name, description, code)
	}
	if err != nil {
		return err
	}

	p.refresh(ctx)
	return nil
}

// Test submits tool code and a sample input to the sandbox. The output is
// passed through verbatim, success or failure.
func (p *Provisioner) Test(ctx context.Context, code string, input map[string]any) (string, error) {
	return p.backend.TestTool(ctx, code, input)
}

func (p *Provisioner) refresh(ctx context.Context) {
	if err := p.store.Load(ctx, p.store.Agent().ID); err != nil {
		p.log.Warn("refresh agent after tool change failed", zap.Error(err))
	}
}
