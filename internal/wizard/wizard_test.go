package wizard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agentic/internal/api"
)

// fakeWizardBackend scripts the commit pipeline and records call order.
type fakeWizardBackend struct {
	calls     []string
	storeErr  map[string]error
	createErr error
	agentID   string
	attachErr map[string]error
	toolErr   error
	uploadErr error
	uploaded  []string
}

func (f *fakeWizardBackend) DeleteKey(ctx context.Context, provider string) error {
	f.calls = append(f.calls, "deleteKey:"+provider)
	return nil
}

func (f *fakeWizardBackend) StoreKey(ctx context.Context, provider, key string) error {
	f.calls = append(f.calls, "storeKey:"+provider)
	if err := f.storeErr[provider]; err != nil {
		return err
	}
	return nil
}

func (f *fakeWizardBackend) CreateAgent(ctx context.Context, fields map[string]any) (map[string]any, string, error) {
	f.calls = append(f.calls, "createAgent")
	if f.createErr != nil {
		return nil, "", f.createErr
	}
	id := f.agentID
	if id == "" {
		id = "agent-1"
	}
	return map[string]any{"id": id}, id, nil
}

func (f *fakeWizardBackend) AttachBuiltInTool(ctx context.Context, agentID, name string) error {
	f.calls = append(f.calls, "attach:"+name)
	return f.attachErr[name]
}

func (f *fakeWizardBackend) CreateCustomTool(ctx context.Context, agentID, name, description, code string) error {
	f.calls = append(f.calls, "createTool:"+name)
	return f.toolErr
}

func (f *fakeWizardBackend) UploadDocuments(ctx context.Context, agentID string, files []api.DocumentFile) error {
	f.calls = append(f.calls, "upload")
	for _, file := range files {
		f.uploaded = append(f.uploaded, file.Name)
	}
	return f.uploadErr
}

func filledWizard(backend Backend) *Wizard {
	w := New(backend, nil)
	w.Form.Name = "Atlas"
	w.Form.APIKey = "sk-123"
	w.Form.SystemPrompt = "You are helpful."
	return w
}

func TestAdvanceGates(t *testing.T) {
	w := New(&fakeWizardBackend{}, nil)

	// Step 1 requires a name.
	if err := w.Advance(); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if w.Step() != StepIdentity {
		t.Errorf("a failed gate must not advance, step = %v", w.Step())
	}

	w.Form.Name = "Atlas"
	if err := w.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if w.Step() != StepModel {
		t.Errorf("step = %v, want model", w.Step())
	}

	// Step 2 requires model and key; the default model is preselected.
	if err := w.Advance(); !errors.Is(err, ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
	w.Form.APIKey = "sk-123"
	if err := w.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	// Steps 3-5 have no gate.
	if err := w.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if err := w.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if w.Step() != StepInstructions {
		t.Errorf("step = %v, want instructions", w.Step())
	}
	// Advancing past the last step stays put.
	if err := w.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if w.Step() != StepInstructions {
		t.Errorf("step = %v, want instructions", w.Step())
	}
}

func TestRetreatNeverFails(t *testing.T) {
	w := New(&fakeWizardBackend{}, nil)
	w.Retreat()
	if w.Step() != StepIdentity {
		t.Errorf("step = %v, want first step", w.Step())
	}

	w.Form.Name = "Atlas"
	if err := w.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	w.Retreat()
	if w.Step() != StepIdentity {
		t.Errorf("step = %v, want first step", w.Step())
	}
}

func TestToggleBuiltInTool(t *testing.T) {
	w := New(&fakeWizardBackend{}, nil)
	w.ToggleBuiltInTool("calculator")
	if !w.HasBuiltInTool("calculator") {
		t.Error("expected calculator selected")
	}
	w.ToggleBuiltInTool("calculator")
	if w.HasBuiltInTool("calculator") {
		t.Error("expected calculator deselected")
	}
}

func TestCommitValidatesEverything(t *testing.T) {
	backend := &fakeWizardBackend{}
	w := New(backend, nil)
	w.Form.Name = "Atlas"

	_, err := w.Commit(context.Background())
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(err.Error(), "API Key") || !strings.Contains(err.Error(), "System Prompt") {
		t.Errorf("error should list missing fields, got %q", err.Error())
	}
	if len(backend.calls) != 0 {
		t.Errorf("no requests before validation passes, got %v", backend.calls)
	}
}

func TestCommitHappyPathOrder(t *testing.T) {
	backend := &fakeWizardBackend{}
	w := filledWizard(backend)
	w.Form.BuiltInTools = []string{"calculator"}

	result, err := w.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.AgentID != "agent-1" {
		t.Errorf("AgentID = %q", result.AgentID)
	}

	want := []string{"deleteKey:openai", "storeKey:openai", "createAgent", "attach:calculator"}
	if len(backend.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", backend.calls, want)
	}
	for i := range want {
		if backend.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", backend.calls, want)
		}
	}

	// Credentials are cleared once the pipeline is done with them.
	if w.Form.APIKey != "" || w.Form.TavilyAPIKey != "" || w.Form.WeatherAPIKey != "" {
		t.Error("expected credential fields to be cleared after commit")
	}
}

func TestCommitKeyFailureIsFatal(t *testing.T) {
	backend := &fakeWizardBackend{storeErr: map[string]error{"openai": errors.New("rejected")}}
	w := filledWizard(backend)

	result, err := w.Commit(context.Background())
	if err == nil {
		t.Fatal("expected a fatal error")
	}
	if result.AgentID != "" {
		t.Errorf("no agent should exist, got %q", result.AgentID)
	}
	for _, call := range backend.calls {
		if call == "createAgent" {
			t.Error("agent creation must not run after a key failure")
		}
	}
}

func TestCommitCreateFailureIsFatal(t *testing.T) {
	backend := &fakeWizardBackend{createErr: errors.New("500")}
	w := filledWizard(backend)
	w.Form.BuiltInTools = []string{"calculator"}
	w.Form.DocumentPaths = []string{"notes.txt"}

	result, err := w.Commit(context.Background())
	if err == nil {
		t.Fatal("expected a fatal error")
	}
	if result.AgentID != "" {
		t.Errorf("AgentID = %q, want empty", result.AgentID)
	}
	// Nothing dependent runs.
	for _, call := range backend.calls {
		if strings.HasPrefix(call, "attach:") || call == "upload" {
			t.Errorf("dependent step ran after create failed: %v", backend.calls)
		}
	}
}

func TestCommitToolFailureIsPartial(t *testing.T) {
	backend := &fakeWizardBackend{attachErr: map[string]error{"calculator": errors.New("attach failed")}}
	w := filledWizard(backend)
	w.Form.BuiltInTools = []string{"calculator", "tavily_search"}
	w.Form.TavilyAPIKey = "tvly-123"

	result, err := w.Commit(context.Background())
	if err != nil {
		t.Fatalf("non-fatal failures must not fail the commit: %v", err)
	}
	if result.AgentID == "" {
		t.Fatal("agent should have been created")
	}
	if !result.Partial() {
		t.Error("expected a partial result")
	}

	failures := result.Failures()
	if len(failures) != 1 || !strings.Contains(failures[0].Name, "calculator") {
		t.Errorf("failures = %+v", failures)
	}

	// The other tool was still attached.
	found := false
	for _, call := range backend.calls {
		if call == "attach:tavily_search" {
			found = true
		}
	}
	if !found {
		t.Error("remaining tools should still be attached")
	}
}

func TestCommitToolKeysOnlyForSelectedTools(t *testing.T) {
	backend := &fakeWizardBackend{}
	w := filledWizard(backend)
	w.Form.TavilyAPIKey = "tvly-123"
	// tavily_search is NOT selected, so its key is not provisioned.

	if _, err := w.Commit(context.Background()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	for _, call := range backend.calls {
		if call == "storeKey:tavily" {
			t.Error("tavily key must not be stored when the tool is not selected")
		}
	}
}

func TestAddCustomTool(t *testing.T) {
	w := New(&fakeWizardBackend{}, nil)

	if err := w.AddCustomTool("", "desc", "code"); !errors.Is(err, ErrToolIncomplete) {
		t.Fatalf("expected ErrToolIncomplete for a missing name, got %v", err)
	}
	if err := w.AddCustomTool("fetch_news", "desc", "  "); !errors.Is(err, ErrToolIncomplete) {
		t.Fatalf("expected ErrToolIncomplete for missing code, got %v", err)
	}
	if len(w.Form.CustomTools) != 0 {
		t.Fatalf("rejected drafts must not be kept, got %+v", w.Form.CustomTools)
	}

	if err := w.AddCustomTool("fetch_news", "headlines", "v1"); err != nil {
		t.Fatalf("AddCustomTool failed: %v", err)
	}
	if err := w.AddCustomTool("summarize", "", "v1"); err != nil {
		t.Fatalf("AddCustomTool failed: %v", err)
	}
	// Re-drafting under the same name replaces, not duplicates.
	if err := w.AddCustomTool("fetch_news", "headlines", "v2"); err != nil {
		t.Fatalf("AddCustomTool failed: %v", err)
	}
	if len(w.Form.CustomTools) != 2 {
		t.Fatalf("expected 2 drafted tools, got %+v", w.Form.CustomTools)
	}
	if w.Form.CustomTools[0].Code != "v2" {
		t.Errorf("same-name draft should replace, got code %q", w.Form.CustomTools[0].Code)
	}
}

func TestCommitCreatesDraftedCustomTools(t *testing.T) {
	backend := &fakeWizardBackend{}
	w := filledWizard(backend)
	if err := w.AddCustomTool("fetch_news", "headlines", DefaultToolCode); err != nil {
		t.Fatalf("AddCustomTool failed: %v", err)
	}

	if _, err := w.Commit(context.Background()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	found := false
	for _, call := range backend.calls {
		if call == "createTool:fetch_news" {
			found = true
		}
	}
	if !found {
		t.Errorf("drafted custom tool was never created, calls = %v", backend.calls)
	}
}

func TestCommitDocumentFailureIsPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("facts"), 0o600); err != nil {
		t.Fatal(err)
	}

	backend := &fakeWizardBackend{uploadErr: errors.New("storage full")}
	w := filledWizard(backend)
	w.Form.DocumentPaths = []string{path}

	result, err := w.Commit(context.Background())
	if err != nil {
		t.Fatalf("a failed upload must not fail the commit: %v", err)
	}
	if result.AgentID == "" {
		t.Fatal("agent should have been created")
	}
	if !result.Partial() {
		t.Error("expected a partial result")
	}
	failures := result.Failures()
	if len(failures) != 1 || !strings.Contains(failures[0].Name, "documents") {
		t.Errorf("failures = %+v", failures)
	}
	if len(backend.uploaded) != 1 || backend.uploaded[0] != "notes.txt" {
		t.Errorf("uploaded = %v, want the opened file", backend.uploaded)
	}
}

func TestCommitMissingDocumentIsPartial(t *testing.T) {
	backend := &fakeWizardBackend{}
	w := filledWizard(backend)
	w.Form.DocumentPaths = []string{filepath.Join(t.TempDir(), "gone.txt")}

	result, err := w.Commit(context.Background())
	if err != nil {
		t.Fatalf("an unreadable file must not fail the commit: %v", err)
	}
	if result.AgentID == "" {
		t.Fatal("agent should have been created")
	}
	if !result.Partial() {
		t.Error("expected a partial result")
	}
	for _, call := range backend.calls {
		if call == "upload" {
			t.Error("nothing should be sent when a file cannot be opened")
		}
	}
}
