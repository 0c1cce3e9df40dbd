/*
Package config handles loading, saving, and validating letter-forge
configuration.

Configuration is stored in ~/.letter-forge.json:

  {
    "templatePath": "/path/to/template.txt",
    "dataPath": "/path/to/cases.csv",
    "recordIndex": 0,
    "settings": {
      "model": "gemini-2.0-flash",
      "offline": false,
      "poolSize": 3,
      "timeoutSeconds": 120,
      "learningEnabled": true
    }
  }

The Gemini API key is never stored in the config file; it is read from the
GEMINI_API_KEY environment variable, with .env files honored via godotenv.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the root configuration structure.
type Config struct {
	// TemplatePath is the active template file.
	TemplatePath string `json:"templatePath,omitempty"`

	// DataPath is the active case dataset (CSV).
	DataPath string `json:"dataPath,omitempty"`

	// RecordIndex selects the active record within the dataset.
	RecordIndex int `json:"recordIndex"`

	// Settings contains global options.
	Settings *Settings `json:"settings,omitempty"`
}

// Settings contains global configuration options.
type Settings struct {
	// Model is the Gemini model used for generation.
	Model string `json:"model,omitempty"`

	// Offline disables the API call and uses the local renderer.
	Offline bool `json:"offline,omitempty"`

	// PoolSize is the number of concurrent workers for batch generation.
	PoolSize int `json:"poolSize,omitempty"`

	// TimeoutSeconds is the timeout for one generation call.
	TimeoutSeconds int `json:"timeoutSeconds,omitempty"`

	// LearningEnabled controls whether generation events are recorded.
	// A pointer so a settings block that omits the key keeps the default
	// (enabled) instead of silently turning learning off.
	LearningEnabled *bool `json:"learningEnabled,omitempty"`
}

// LearningActive reports whether generation events should be recorded.
// Learning is on unless the config explicitly disables it.
func (c *Config) LearningActive() bool {
	if c == nil || c.Settings == nil || c.Settings.LearningEnabled == nil {
		return true
	}
	return *c.Settings.LearningEnabled
}

// NewConfig creates a configuration with defaults.
func NewConfig() *Config {
	enabled := true
	return &Config{
		Settings: &Settings{
			Model:           "gemini-2.0-flash",
			PoolSize:        3,
			TimeoutSeconds:  120,
			LearningEnabled: &enabled,
		},
	}
}

// GetDefaultConfigPath returns the path to ~/.letter-forge.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".letter-forge.json"), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadOrDefault reads the configuration, falling back to defaults when no
// config file exists yet.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return NewConfig()
	}
	return cfg
}
