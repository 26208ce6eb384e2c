package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBackendURL is the hosted Agentic AI API.
const DefaultBackendURL = "https://api.agentic-ai.app/api"

// Settings is the persisted client configuration. Credentials are never
// stored here; the bearer token lives in the system keyring and provider
// keys only ever transit to the backend.
type Settings struct {
	BackendURL   string `yaml:"backend_url"`
	Theme        string `yaml:"theme"`
	DefaultAgent string `yaml:"default_agent,omitempty"`
}

func defaultSettings() *Settings {
	return &Settings{
		BackendURL: DefaultBackendURL,
		Theme:      "dark",
	}
}

func EnsureConfigExists() error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		defaultConfig := `# Agentic AI client configuration
backend_url: "` + DefaultBackendURL + `"

# "dark" or "light"
theme: "dark"
`
		if err := os.WriteFile(configFile, []byte(defaultConfig), 0644); err != nil {
			return err
		}
	}

	return nil
}

// LoadSettings reads config.yaml, creating it with defaults on first run.
func LoadSettings() (*Settings, error) {
	if err := EnsureConfigExists(); err != nil {
		return nil, err
	}

	configFile, err := GetConfigFile()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	settings := defaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if strings.TrimSpace(settings.BackendURL) == "" {
		settings.BackendURL = DefaultBackendURL
	}
	if settings.Theme != "light" {
		settings.Theme = "dark"
	}

	return settings, nil
}

// SaveSettings writes the settings back to config.yaml.
func SaveSettings(settings *Settings) error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
