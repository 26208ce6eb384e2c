// Package catalog is the static provider/model/tool catalog the client
// validates configuration against.
package catalog

// Provider identifies a model provider.
type Provider string

const (
	OpenAI    Provider = "openai"
	Gemini    Provider = "gemini"
	Anthropic Provider = "anthropic"
	DeepSeek  Provider = "deepseek"
)

// Model is one selectable model under a provider.
type Model struct {
	Value string
	Label string
	Desc  string
}

var providerNames = map[Provider]string{
	OpenAI:    "OpenAI",
	Gemini:    "Google Gemini",
	Anthropic: "Anthropic Claude",
	DeepSeek:  "DeepSeek",
}

var models = map[Provider][]Model{
	OpenAI: {
		{"gpt-4o", "GPT-4o (High Intelligence)", "Most advanced multimodal model"},
		{"gpt-4o-mini", "GPT-4o mini (Fast & Cheap)", "Affordable and fast"},
		{"o1", "o1 (Advanced Reasoning)", "Complex problem-solving"},
		{"o1-mini", "o1-mini (Fast Reasoning)", "Faster and affordable"},
		{"gpt-4-turbo", "GPT-4 Turbo", "Enhanced GPT-4 model"},
		{"gpt-4", "GPT-4", "Classic GPT-4"},
		{"gpt-3.5-turbo", "GPT-3.5 Turbo", "Fast and reliable"},
	},
	Gemini: {
		{"models/gemini-3-pro-preview", "Gemini 3 Pro (Preview)", "Next-gen high-intelligence"},
		{"models/gemini-3-pro-image-preview", "Gemini 3 Pro Image (Preview)", "Optimized for vision"},
		{"models/gemini-3-flash-preview", "Gemini 3 Flash (Preview)", "Fastest next-gen model"},
		{"models/gemini-2.5-pro", "Gemini 2.5 Pro", "Powerful multimodal reasoning"},
		{"models/gemini-2.5-flash", "Gemini 2.5 Flash", "High-speed performance"},
		{"models/gemini-2.5-flash-lite", "Gemini 2.5 Flash Lite", "Ultra-low latency"},
		{"models/gemini-2.5-flash-image", "Gemini 2.5 Flash Image", "Vision-optimized flash"},
		{"models/gemini-2.0-flash", "Gemini 2.0 Flash", "Fast and capable"},
		{"models/gemini-2.0-flash-lite", "Gemini 2.0 Flash Lite", "Lightweight and fast"},
		{"models/gemini-flash-latest", "Gemini Flash (Latest)", "Always newest flash"},
		{"models/gemini-flash-lite-latest", "Gemini Flash Lite (Latest)", "Newest lightweight"},
		{"models/gemini-robotics-er-1.5-preview", "Gemini Robotics ER 1.5 (Preview)", "Specialized for physical reasoning"},
		{"models/gemini-2.5-pro-preview-tts", "Gemini 2.5 Pro TTS (Preview)", "Text-to-Speech optimized"},
		{"models/gemini-2.5-flash-preview-tts", "Gemini 2.5 Flash TTS (Preview)", "Fast Speech optimized"},
	},
	Anthropic: {
		{"claude-3-5-sonnet-latest", "Claude 3.5 Sonnet (Latest)", "Best balanced model"},
		{"claude-3-5-haiku-latest", "Claude 3.5 Haiku (Speed)", "Ultra-fast inference"},
		{"claude-3-opus-20240229", "Claude 3 Opus (Complex)", "Heavy tasks"},
		{"claude-3-sonnet-20240229", "Claude 3 Sonnet", "Legacy balanced"},
		{"claude-3-haiku-20240307", "Claude 3 Haiku", "Legacy fast"},
	},
	DeepSeek: {
		{"deepseek-chat", "DeepSeek Chat", "General purpose"},
		{"deepseek-coder", "DeepSeek Coder", "Programming specialized"},
	},
}

// Providers lists the selectable providers in display order.
func Providers() []Provider {
	return []Provider{OpenAI, Gemini, Anthropic, DeepSeek}
}

// ProviderName returns the display name for a provider, falling back to
// the raw value for unknown ones.
func ProviderName(p Provider) string {
	if name, ok := providerNames[p]; ok {
		return name
	}
	return string(p)
}

// Models lists the selectable models for a provider.
func Models(p Provider) []Model {
	return models[p]
}

// DefaultModel is the first model in a provider's list, or "" for an
// unknown provider.
func DefaultModel(p Provider) string {
	if list := models[p]; len(list) > 0 {
		return list[0].Value
	}
	return ""
}

// ValidModel reports whether model belongs to provider's catalog.
func ValidModel(p Provider, model string) bool {
	for _, m := range models[p] {
		if m.Value == model {
			return true
		}
	}
	return false
}

// BuiltInTool is a fixed-catalog capability.
type BuiltInTool struct {
	Name        string
	Label       string
	Description string
	// KeyProvider names the credential slot the tool needs, "" when the
	// tool runs without one.
	KeyProvider string
}

var builtInTools = []BuiltInTool{
	{Name: "tavily_search", Label: "Web Search", Description: "Search the web with Tavily", KeyProvider: "tavily"},
	{Name: "calculator", Label: "Calculator", Description: "Evaluate math expressions"},
	{Name: "weather", Label: "Weather", Description: "Current weather lookups", KeyProvider: "weather"},
}

// BuiltInTools lists the built-in tool catalog.
func BuiltInTools() []BuiltInTool {
	return builtInTools
}

// LookupBuiltIn looks up a catalog entry by name.
func LookupBuiltIn(name string) (BuiltInTool, bool) {
	for _, t := range builtInTools {
		if t.Name == name {
			return t, true
		}
	}
	return BuiltInTool{}, false
}

// ToolKeyProvider returns the credential provider a built-in tool requires,
// or "" when it needs none.
func ToolKeyProvider(name string) string {
	t, ok := LookupBuiltIn(name)
	if !ok {
		return ""
	}
	return t.KeyProvider
}
